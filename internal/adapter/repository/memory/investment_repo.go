package memory

import (
	"context"
	"sort"
	"time"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// InvestmentRepository implements usecase.InvestmentRepository.
type InvestmentRepository struct {
	store *Store
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(store *Store) *InvestmentRepository {
	return &InvestmentRepository{store: store}
}

// GetByID retrieves an investment by ID.
func (r *InvestmentRepository) GetByID(_ context.Context, id string) (*domain.Investment, error) {
	var out *domain.Investment
	err := r.store.view(func(st *state) error {
		inv, ok := st.investments[id]
		if !ok {
			return domain.ErrInvestmentNotFound
		}
		out = &inv
		return nil
	})
	return out, err
}

// GetByIDForUpdate retrieves an investment inside the transaction.
func (r *InvestmentRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Investment, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	inv, ok := st.investments[id]
	if !ok {
		return nil, domain.ErrInvestmentNotFound
	}
	return &inv, nil
}

// SetActiveProjection repoints the investment to projectionID.
func (r *InvestmentRepository) SetActiveProjection(_ context.Context, tx usecase.Transaction, id, projectionID, actorID string, updatedAt time.Time) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	inv, ok := st.investments[id]
	if !ok {
		return domain.ErrInvestmentNotFound
	}
	inv.ActiveProjectionID = projectionID
	inv.UpdatedBy = actorID
	inv.UpdatedAt = updatedAt
	st.investments[id] = inv
	return nil
}

// ProjectionRepository implements usecase.ProjectionRepository.
type ProjectionRepository struct {
	store *Store
}

// NewProjectionRepository creates a new ProjectionRepository.
func NewProjectionRepository(store *Store) *ProjectionRepository {
	return &ProjectionRepository{store: store}
}

// GetByID retrieves a projection by ID.
func (r *ProjectionRepository) GetByID(_ context.Context, id string) (*domain.Projection, error) {
	var out *domain.Projection
	err := r.store.view(func(st *state) error {
		p, ok := st.projections[id]
		if !ok {
			return domain.ErrProjectionNotFound
		}
		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

// ScheduleRepository implements usecase.ScheduleRepository.
type ScheduleRepository struct {
	store *Store
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(store *Store) *ScheduleRepository {
	return &ScheduleRepository{store: store}
}

// GetByID retrieves a schedule, with its periods when withPeriods is set.
func (r *ScheduleRepository) GetByID(_ context.Context, id string, withPeriods bool) (*domain.Schedule, error) {
	var out *domain.Schedule
	err := r.store.view(func(st *state) error {
		sch, ok := st.schedules[id]
		if !ok {
			return domain.ErrScheduleNotFound
		}
		out = copySchedule(sch, withPeriods)
		return nil
	})
	return out, err
}

// GetByIDForUpdate retrieves a schedule header inside the transaction.
func (r *ScheduleRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Schedule, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	sch, ok := st.schedules[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return copySchedule(sch, false), nil
}

// GetActiveByProjection returns the active schedule of a projection.
func (r *ScheduleRepository) GetActiveByProjection(_ context.Context, tx usecase.Transaction, projectionID string) (*domain.Schedule, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	for _, id := range sortedKeys(st.schedules) {
		sch := st.schedules[id]
		if sch.ProjectionID == projectionID && sch.Active {
			return copySchedule(sch, false), nil
		}
	}
	return nil, domain.ErrScheduleNotFound
}

// SetActive flips the active flag of a schedule.
func (r *ScheduleRepository) SetActive(_ context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	sch, ok := st.schedules[id]
	if !ok {
		return domain.ErrScheduleNotFound
	}
	if active && st.hasOtherActive(sch.ProjectionID, id) {
		return domain.ErrActiveScheduleConflict
	}
	sch.Active = active
	sch.UpdatedAt = updatedAt
	st.schedules[id] = sch
	return nil
}

func copySchedule(sch domain.Schedule, withPeriods bool) *domain.Schedule {
	cp := sch
	cp.Periods = nil
	if withPeriods {
		cp.Periods = append([]domain.SchedulePeriod(nil), sch.Periods...)
		sort.Slice(cp.Periods, func(i, j int) bool { return cp.Periods[i].Index < cp.Periods[j].Index })
	}
	return &cp
}
