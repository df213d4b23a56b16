package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/goinvest/internal/adapter/repository/memory"
	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/metrics"
	"github.com/iho/goinvest/internal/usecase"
	"github.com/iho/goinvest/internal/usecase/mocks"
)

type counterIDs struct {
	mu sync.Mutex
	n  int
}

func (g *counterIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("ID%05d", g.n)
}

type workflowFixture struct {
	store       *memory.Store
	uc          *usecase.AmendmentUseCase
	docs        *mocks.MockDocumentGenerator
	investments *memory.InvestmentRepository
	schedules   *memory.ScheduleRepository
	outbox      *memory.OutboxRepository
	metrics     *metrics.Metrics
}

type fixtureOption func(*usecase.AmendmentUseCaseConfig)

// newWorkflowFixture seeds INV-1 with P1/S1 active and P2/S2
// prepared as the increment, plus an untouched INV-2 on P3/S3.
func newWorkflowFixture(t *testing.T, opts ...fixtureOption) *workflowFixture {
	t.Helper()
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	store := memory.NewStore()
	require.NoError(t, store.SeedInvestment(ctx, &domain.Investment{ID: "INV-1", Name: "INV-1", ActiveProjectionID: "P1"}))
	require.NoError(t, store.SeedInvestment(ctx, &domain.Investment{ID: "INV-2", Name: "INV-2", ActiveProjectionID: "P3"}))
	for _, p := range []*domain.Projection{
		{ID: "P1", Capital: decimal.NewFromInt(10000), Term: 12},
		{ID: "P2", Capital: decimal.NewFromInt(12000), Term: 12},
		{ID: "P3", Capital: decimal.NewFromInt(5000), Term: 6},
		{ID: "P4", Capital: decimal.NewFromInt(13000), Term: 12},
	} {
		require.NoError(t, store.SeedProjection(ctx, p))
	}
	for _, s := range []*domain.Schedule{
		{ID: "S1", ProjectionID: "P1", Active: true, Periods: []domain.SchedulePeriod{{Index: 1}, {Index: 2}}},
		{ID: "S2", ProjectionID: "P2", Periods: []domain.SchedulePeriod{{Index: 1}, {Index: 2}, {Index: 3}}},
		{ID: "S3", ProjectionID: "P3", Active: true},
		{ID: "S4", ProjectionID: "P4"},
	} {
		require.NoError(t, store.SeedSchedule(ctx, s))
	}

	m := metrics.New(prometheus.NewRegistry())
	f := &workflowFixture{
		store:       store,
		docs:        mocks.NewMockDocumentGenerator(ctrl),
		investments: memory.NewInvestmentRepository(store),
		schedules:   memory.NewScheduleRepository(store),
		outbox:      memory.NewOutboxRepository(store),
		metrics:     m,
	}

	cfg := usecase.AmendmentUseCaseConfig{
		TxManager:      memory.NewTxManager(store),
		InvestmentRepo: f.investments,
		ProjectionRepo: memory.NewProjectionRepository(store),
		ScheduleRepo:   f.schedules,
		AmendmentRepo:  memory.NewAmendmentRepository(store),
		OutboxRepo:     f.outbox,
		Documents:      f.docs,
		IDGen:          &counterIDs{},
		Metrics:        m,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.uc = usecase.NewAmendmentUseCase(cfg)
	return f
}

func (f *workflowFixture) create(t *testing.T, investmentID, projectionID string, period int) *domain.Amendment {
	t.Helper()
	a, err := f.uc.CreateAmendment(context.Background(), usecase.CreateAmendmentInput{
		InvestmentID:         investmentID,
		OriginalProjectionID: projectionID,
		IncrementPeriod:      period,
		IncrementAmount:      decimal.NewFromInt(2000),
		ActorID:              "alice",
	})
	require.NoError(t, err)
	return a
}

func (f *workflowFixture) readyToContinue(t *testing.T, a *domain.Amendment, projectionID, scheduleID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.uc.SetIncrement(ctx, usecase.SetIncrementInput{
		AmendmentID: a.ID, IncrementProjectionID: projectionID, IncrementScheduleID: scheduleID,
	})
	require.NoError(t, err)
	f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, a.InvestmentID, a.ID).Return(1, nil)
	_, err = f.uc.GenerateDocuments(ctx, a.ID, "")
	require.NoError(t, err)
}

func (f *workflowFixture) activeFlags(t *testing.T, ids ...string) map[string]bool {
	t.Helper()
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		s, err := f.schedules.GetByID(context.Background(), id, false)
		require.NoError(t, err)
		out[id] = s.Active
	}
	return out
}

func TestAmendmentWorkflow_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	a := f.create(t, "INV-1", "P1", 6)
	require.Equal(t, "INV-1 - AD-01", a.Name)
	require.Equal(t, domain.AmendmentStateProjected, a.State)
	require.Equal(t, "S1", a.OriginalScheduleID)
	require.False(t, a.DocumentsGenerated)
	require.False(t, a.FlowContinued)
	require.Equal(t, "alice", a.CreatedBy)

	a, err := f.uc.SetIncrement(ctx, usecase.SetIncrementInput{
		AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S2", ActorID: "bob",
	})
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateProjected, a.State)
	require.Equal(t, "P2", *a.IncrementProjectionID)
	require.Equal(t, "bob", a.UpdatedBy)

	f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(2, nil)
	a, err = f.uc.GenerateDocuments(ctx, a.ID, "bob")
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateDocumentsGenerated, a.State)
	require.True(t, a.DocumentsGenerated)

	a, err = f.uc.ContinueFlow(ctx, a.ID, "carol")
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateCompleted, a.State)
	require.True(t, a.FlowContinued)

	require.Equal(t, map[string]bool{"S1": false, "S2": true}, f.activeFlags(t, "S1", "S2"))
	inv, err := f.investments.GetByID(ctx, "INV-1")
	require.NoError(t, err)
	require.Equal(t, "P2", inv.ActiveProjectionID)
	require.Equal(t, "carol", inv.UpdatedBy)

	stored, err := f.uc.GetAmendment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateCompleted, stored.State)

	events, err := f.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	var types []string
	for _, e := range events {
		types = append(types, e.EventType)
	}
	require.Equal(t, []string{
		domain.EventTypeAmendmentCreated,
		domain.EventTypeAmendmentDocumentsGenerated,
		domain.EventTypeAmendmentCompleted,
	}, types)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AmendmentsCreated))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.DocumentsGenerated))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FlowsCompleted))

	// Same period again once the first amendment completed.
	_, err = f.uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
		InvestmentID: "INV-1", OriginalProjectionID: "P2", IncrementPeriod: 6, IncrementAmount: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrAmendmentConflict)
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestAmendmentWorkflow_DuplicatePeriod(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	f.create(t, "INV-1", "P1", 5)
	_, err := f.uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
		InvestmentID: "INV-1", OriginalProjectionID: "P1", IncrementPeriod: 5, IncrementAmount: decimal.NewFromInt(10),
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	list, err := f.uc.ListByInvestment(ctx, "INV-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.AmendmentErrors.WithLabelValues("create", "conflict")))
}

func TestAmendmentWorkflow_CreateValidation(t *testing.T) {
	f := newWorkflowFixture(t)

	tests := []struct {
		name    string
		input   usecase.CreateAmendmentInput
		wantErr error
	}{
		{
			name:    "missing investment",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-404", OriginalProjectionID: "P1", IncrementPeriod: 1, IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrInvestmentNotFound,
		},
		{
			name:    "missing projection",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-1", OriginalProjectionID: "P404", IncrementPeriod: 1, IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrProjectionNotFound,
		},
		{
			name:    "projection without active schedule",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-1", OriginalProjectionID: "P2", IncrementPeriod: 1, IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrScheduleNotFound,
		},
		{
			name:    "projection of another investment",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-1", OriginalProjectionID: "P3", IncrementPeriod: 7, IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrOriginalNotActive,
		},
		{
			name:    "empty ids",
			input:   usecase.CreateAmendmentInput{IncrementPeriod: 1, IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrMissingID,
		},
		{
			name:    "zero period",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-1", OriginalProjectionID: "P1", IncrementAmount: decimal.NewFromInt(1)},
			wantErr: domain.ErrInvalidPeriod,
		},
		{
			name:    "negative amount",
			input:   usecase.CreateAmendmentInput{InvestmentID: "INV-1", OriginalProjectionID: "P1", IncrementPeriod: 3, IncrementAmount: decimal.NewFromInt(-5)},
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.CreateAmendment(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	list, err := f.uc.ListByInvestment(context.Background(), "INV-1")
	require.NoError(t, err)
	require.Empty(t, list)
	require.NotNil(t, list)
}

func TestAmendmentWorkflow_CreateRejectsForeignProjection(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	_, err := f.uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
		InvestmentID: "INV-1", OriginalProjectionID: "P3", IncrementPeriod: 7, IncrementAmount: decimal.NewFromInt(1000),
	})
	require.ErrorIs(t, err, domain.ErrOriginalNotActive)
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)

	// Neither the period nor the AD suffix is consumed by the rejected call.
	a := f.create(t, "INV-1", "P1", 7)
	require.Equal(t, "INV-1 - AD-01", a.Name)
	require.Equal(t, "S1", a.OriginalScheduleID)

	events, err := f.outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestAmendmentWorkflow_ActorFromContext(t *testing.T) {
	f := newWorkflowFixture(t)
	ctx := domain.ContextWithActor(context.Background(), "ctx-user")

	a, err := f.uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
		InvestmentID: "INV-1", OriginalProjectionID: "P1", IncrementPeriod: 2, IncrementAmount: decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	require.Equal(t, "ctx-user", a.CreatedBy)
}

// Steps never run out of order or twice.
func TestAmendmentWorkflow_StateMonotonicity(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	a := f.create(t, "INV-1", "P1", 6)

	_, err := f.uc.ContinueFlow(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)
	require.ErrorIs(t, err, domain.ErrIncrementNotSet)

	_, err = f.uc.SetIncrement(ctx, usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S2"})
	require.NoError(t, err)

	_, err = f.uc.ContinueFlow(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrDocumentsNotGenerated)

	stored, err := f.uc.GetAmendment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateProjected, stored.State)
	require.False(t, stored.DocumentsGenerated)
	require.False(t, stored.FlowContinued)
	require.Equal(t, map[string]bool{"S1": true, "S2": false}, f.activeFlags(t, "S1", "S2"))

	f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(1, nil)
	_, err = f.uc.GenerateDocuments(ctx, a.ID, "")
	require.NoError(t, err)

	_, err = f.uc.GenerateDocuments(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	// Increment may still change after documents were generated.
	_, err = f.uc.SetIncrement(ctx, usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P4", IncrementScheduleID: "S4"})
	require.NoError(t, err)

	_, err = f.uc.ContinueFlow(ctx, a.ID, "")
	require.NoError(t, err)

	_, err = f.uc.ContinueFlow(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)

	_, err = f.uc.SetIncrement(ctx, usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S2"})
	require.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.GenerateDocuments(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrInvalidState)

	stored, err = f.uc.GetAmendment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateCompleted, stored.State)
	require.Equal(t, "P4", *stored.IncrementProjectionID)
	require.Equal(t, map[string]bool{"S1": false, "S2": false, "S4": true}, f.activeFlags(t, "S1", "S2", "S4"))
}

func TestAmendmentWorkflow_SetIncrementValidation(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	a := f.create(t, "INV-1", "P1", 6)

	tests := []struct {
		name    string
		input   usecase.SetIncrementInput
		wantErr error
	}{
		{"missing amendment", usecase.SetIncrementInput{AmendmentID: "A404", IncrementProjectionID: "P2", IncrementScheduleID: "S2"}, domain.ErrAmendmentNotFound},
		{"missing projection", usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P404", IncrementScheduleID: "S2"}, domain.ErrProjectionNotFound},
		{"missing schedule", usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S404"}, domain.ErrScheduleNotFound},
		{"schedule of another projection", usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S4"}, domain.ErrScheduleProjectionMismatch},
		{"same as original", usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P1", IncrementScheduleID: "S1"}, domain.ErrSameProjection},
		{"empty ids", usecase.SetIncrementInput{AmendmentID: a.ID}, domain.ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.SetIncrement(ctx, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	stored, err := f.uc.GetAmendment(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, stored.HasIncrement())
}

func TestAmendmentWorkflow_GenerateDocumentsCollaboratorFailure(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	a := f.create(t, "INV-1", "P1", 6)

	boom := errors.New("template service unavailable")
	gomock.InOrder(
		f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(0, boom),
		f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(0, nil),
		f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(3, nil),
	)

	_, err := f.uc.GenerateDocuments(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrCollaboratorFailure)
	require.ErrorIs(t, err, boom)

	_, err = f.uc.GenerateDocuments(ctx, a.ID, "")
	require.ErrorIs(t, err, domain.ErrDocumentsNotGeneratedByCollaborator)

	stored, err := f.uc.GetAmendment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateProjected, stored.State)
	require.False(t, stored.DocumentsGenerated)

	// A later retry is allowed and succeeds.
	got, err := f.uc.GenerateDocuments(ctx, a.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateDocumentsGenerated, got.State)
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.AmendmentErrors.WithLabelValues("generate_documents", "collaborator_failure")))
}

func TestAmendmentWorkflow_GenerateDocumentsConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	a := f.create(t, "INV-1", "P1", 6)

	f.docs.EXPECT().GenerateForMotive(gomock.Any(), domain.AmendmentMotive, "INV-1", a.ID).Return(1, nil).Times(1)

	const callers = 8
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.GenerateDocuments(ctx, a.ID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrInvalidState)
	}
	require.Equal(t, 1, succeeded)
}

// Concurrent creates get distinct sequences and names.
func TestAmendmentWorkflow_ConcurrentCreateNaming(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	const callers = 12
	results := make([]*domain.Amendment, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
				InvestmentID:         "INV-2",
				OriginalProjectionID: "P3",
				IncrementPeriod:      i + 1,
				IncrementAmount:      decimal.NewFromInt(100),
			})
		}(i)
	}
	wg.Wait()

	var names []string
	for i := range callers {
		require.NoError(t, errs[i])
		names = append(names, results[i].Name)
	}
	sort.Strings(names)
	for i, name := range names {
		require.Equal(t, fmt.Sprintf("INV-2 - AD-%02d", i+1), name)
	}
}

// Separate lockers model separate processes; the store still serializes.
func TestAmendmentWorkflow_ConcurrentCreateAcrossLockers(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	second := usecase.NewAmendmentUseCase(usecase.AmendmentUseCaseConfig{
		TxManager:      memory.NewTxManager(f.store),
		Locker:         usecase.NewKeyedMutex(),
		InvestmentRepo: f.investments,
		ProjectionRepo: memory.NewProjectionRepository(f.store),
		ScheduleRepo:   f.schedules,
		AmendmentRepo:  memory.NewAmendmentRepository(f.store),
		Documents:      mocks.NewMockDocumentGenerator(gomock.NewController(t)),
		IDGen:          &counterIDs{n: 1000},
	})

	var wg sync.WaitGroup
	names := make(chan string, 2)
	for i, uc := range []*usecase.AmendmentUseCase{f.uc, second} {
		wg.Add(1)
		go func(period int, uc *usecase.AmendmentUseCase) {
			defer wg.Done()
			a, err := uc.CreateAmendment(ctx, usecase.CreateAmendmentInput{
				InvestmentID: "INV-2", OriginalProjectionID: "P3", IncrementPeriod: period, IncrementAmount: decimal.NewFromInt(1),
			})
			if err != nil {
				t.Errorf("create: %v", err)
				return
			}
			names <- a.Name
		}(i+1, uc)
	}
	wg.Wait()
	close(names)

	got := map[string]bool{}
	for n := range names {
		got[n] = true
	}
	require.Equal(t, map[string]bool{"INV-2 - AD-01": true, "INV-2 - AD-02": true}, got)
}

func TestAmendmentWorkflow_ChainedAmendmentRequiresActiveOriginal(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	first := f.create(t, "INV-1", "P1", 6)
	second := f.create(t, "INV-1", "P1", 9)
	require.Equal(t, "INV-1 - AD-02", second.Name)

	f.readyToContinue(t, first, "P2", "S2")
	f.readyToContinue(t, second, "P4", "S4")

	_, err := f.uc.ContinueFlow(ctx, first.ID, "")
	require.NoError(t, err)

	_, err = f.uc.ContinueFlow(ctx, second.ID, "")
	require.ErrorIs(t, err, domain.ErrOriginalNotActive)
	require.ErrorIs(t, err, domain.ErrPreconditionFailed)

	require.Equal(t, map[string]bool{"S1": false, "S2": true, "S4": false}, f.activeFlags(t, "S1", "S2", "S4"))
	stored, err := f.uc.GetAmendment(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, domain.AmendmentStateDocumentsGenerated, stored.State)
}

type failingSchedules struct {
	usecase.ScheduleRepository
	failActivate string
}

func (s *failingSchedules) SetActive(ctx context.Context, tx usecase.Transaction, id string, active bool, at time.Time) error {
	if active && id == s.failActivate {
		return errors.New("injected schedule failure")
	}
	return s.ScheduleRepository.SetActive(ctx, tx, id, active, at)
}

type failingInvestments struct {
	usecase.InvestmentRepository
}

func (failingInvestments) SetActiveProjection(context.Context, usecase.Transaction, string, string, string, time.Time) error {
	return errors.New("injected investment failure")
}

type failingOutbox struct {
	usecase.OutboxRepository
	failType string
}

func (o *failingOutbox) Create(ctx context.Context, tx usecase.Transaction, e *domain.OutboxEvent) error {
	if e.EventType == o.failType {
		return errors.New("injected outbox failure")
	}
	return o.OutboxRepository.Create(ctx, tx, e)
}

// A failure at any step leaves none of the swap applied.
func TestAmendmentWorkflow_ContinueFlowFaultInjection(t *testing.T) {
	tests := []struct {
		name   string
		option fixtureOption
	}{
		{
			name: "activating increment schedule fails",
			option: func(c *usecase.AmendmentUseCaseConfig) {
				c.ScheduleRepo = &failingSchedules{ScheduleRepository: c.ScheduleRepo, failActivate: "S2"}
			},
		},
		{
			name: "repointing investment fails",
			option: func(c *usecase.AmendmentUseCaseConfig) {
				c.InvestmentRepo = failingInvestments{InvestmentRepository: c.InvestmentRepo}
			},
		},
		{
			name: "writing completion event fails",
			option: func(c *usecase.AmendmentUseCaseConfig) {
				c.OutboxRepo = &failingOutbox{OutboxRepository: c.OutboxRepo, failType: domain.EventTypeAmendmentCompleted}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newWorkflowFixture(t, tt.option)

			a := f.create(t, "INV-1", "P1", 6)
			f.readyToContinue(t, a, "P2", "S2")

			_, err := f.uc.ContinueFlow(ctx, a.ID, "")
			require.Error(t, err)

			require.Equal(t, map[string]bool{"S1": true, "S2": false}, f.activeFlags(t, "S1", "S2"))
			inv, err := f.investments.GetByID(ctx, "INV-1")
			require.NoError(t, err)
			require.Equal(t, "P1", inv.ActiveProjectionID)

			stored, err := f.uc.GetAmendment(ctx, a.ID)
			require.NoError(t, err)
			require.Equal(t, domain.AmendmentStateDocumentsGenerated, stored.State)
			require.False(t, stored.FlowContinued)
		})
	}
}

type countingRetrier struct {
	attempts int
	failures int
}

func (r *countingRetrier) Retry(_ context.Context, op func() error) error {
	for {
		r.attempts++
		err := op()
		if err == nil || r.attempts > r.failures {
			return err
		}
	}
}

type flakyInvestments struct {
	usecase.InvestmentRepository
	remaining int
}

func (f *flakyInvestments) SetActiveProjection(ctx context.Context, tx usecase.Transaction, id, projectionID, actorID string, at time.Time) error {
	if f.remaining > 0 {
		f.remaining--
		return errors.New("serialization failure")
	}
	return f.InvestmentRepository.SetActiveProjection(ctx, tx, id, projectionID, actorID, at)
}

func TestAmendmentWorkflow_ContinueFlowRetriesWholeSwap(t *testing.T) {
	ctx := context.Background()
	retrier := &countingRetrier{failures: 2}
	f := newWorkflowFixture(t, func(c *usecase.AmendmentUseCaseConfig) {
		c.Retrier = retrier
		c.InvestmentRepo = &flakyInvestments{InvestmentRepository: c.InvestmentRepo, remaining: 2}
	})

	a := f.create(t, "INV-1", "P1", 6)
	f.readyToContinue(t, a, "P2", "S2")
	retrier.attempts = 0

	_, err := f.uc.ContinueFlow(ctx, a.ID, "")
	require.NoError(t, err)
	require.Equal(t, 3, retrier.attempts)
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.ScheduleSwapRetries))
	require.Equal(t, map[string]bool{"S1": false, "S2": true}, f.activeFlags(t, "S1", "S2"))
}

func TestAmendmentWorkflow_Detail(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)
	a := f.create(t, "INV-1", "P1", 6)

	detail, err := f.uc.GetDetail(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "INV-1", detail.Investment.ID)
	require.Equal(t, "P1", detail.OriginalProjection.ID)
	require.Equal(t, "S1", detail.OriginalSchedule.ID)
	require.Empty(t, detail.OriginalSchedule.Periods)
	require.Nil(t, detail.IncrementProjection)
	require.Nil(t, detail.IncrementSchedule)

	_, err = f.uc.SetIncrement(ctx, usecase.SetIncrementInput{AmendmentID: a.ID, IncrementProjectionID: "P2", IncrementScheduleID: "S2"})
	require.NoError(t, err)

	full, err := f.uc.GetFullDetail(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, full.OriginalSchedule.Periods, 2)
	require.Equal(t, "P2", full.IncrementProjection.ID)
	require.Len(t, full.IncrementSchedule.Periods, 3)

	_, err = f.uc.GetFullDetail(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrAmendmentNotFound)
	_, err = f.uc.GetDetail(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAmendmentWorkflow_ListOrdering(t *testing.T) {
	ctx := context.Background()
	f := newWorkflowFixture(t)

	for _, period := range []int{9, 3, 6} {
		f.create(t, "INV-1", "P1", period)
	}

	list, err := f.uc.ListByInvestment(ctx, "INV-1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, a := range list {
		require.Equal(t, i+1, a.Sequence)
	}
	require.Equal(t, 9, list[0].IncrementPeriod)
}
