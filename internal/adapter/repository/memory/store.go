// Package memory provides an in-process transactional store implementing the
// usecase repositories. Transactions are serialized; each one works on a clone
// of the committed state which replaces it on commit.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// ErrTxDone is returned when a finished transaction is used again.
var ErrTxDone = errors.New("memory: transaction already committed or rolled back")

type state struct {
	investments map[string]domain.Investment
	projections map[string]*domain.Projection
	schedules   map[string]domain.Schedule
	amendments  map[string]*domain.Amendment
	contracts   map[string]*domain.ContractSequence
	yearSeq     map[int]int
	outbox      map[string]domain.OutboxEvent
}

func newState() *state {
	return &state{
		investments: make(map[string]domain.Investment),
		projections: make(map[string]*domain.Projection),
		schedules:   make(map[string]domain.Schedule),
		amendments:  make(map[string]*domain.Amendment),
		contracts:   make(map[string]*domain.ContractSequence),
		yearSeq:     make(map[int]int),
		outbox:      make(map[string]domain.OutboxEvent),
	}
}

// clone copies every mutable record. Projections, contract sequences and
// schedule period slices are immutable once stored and are shared.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.investments {
		c.investments[k] = v
	}
	for k, v := range s.projections {
		c.projections[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.amendments {
		c.amendments[k] = v.Clone()
	}
	for k, v := range s.contracts {
		c.contracts[k] = v
	}
	for k, v := range s.yearSeq {
		c.yearSeq[k] = v
	}
	for k, v := range s.outbox {
		c.outbox[k] = v
	}
	return c
}

// hasOtherActive reports whether a schedule other than id is active for the projection.
func (s *state) hasOtherActive(projectionID, id string) bool {
	for sid, sch := range s.schedules {
		if sid != id && sch.ProjectionID == projectionID && sch.Active {
			return true
		}
	}
	return false
}

// Store is the shared in-memory database.
type Store struct {
	sem   chan struct{}
	mu    sync.RWMutex
	state *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		state: newState(),
	}
}

// view runs fn against the committed state.
func (s *Store) view(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// update runs fn in its own transaction.
func (s *Store) update(ctx context.Context, fn func(st *state) error) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx.state); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) begin(ctx context.Context) (*Tx, error) {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.RLock()
	st := s.state.clone()
	s.mu.RUnlock()

	return &Tx{store: s, state: st}, nil
}

// SeedInvestment stores an investment.
func (s *Store) SeedInvestment(ctx context.Context, inv *domain.Investment) error {
	return s.update(ctx, func(st *state) error {
		st.investments[inv.ID] = *inv
		return nil
	})
}

// SeedProjection stores a projection.
func (s *Store) SeedProjection(ctx context.Context, p *domain.Projection) error {
	return s.update(ctx, func(st *state) error {
		cp := *p
		st.projections[p.ID] = &cp
		return nil
	})
}

// SeedSchedule stores a schedule with its periods.
func (s *Store) SeedSchedule(ctx context.Context, sch *domain.Schedule) error {
	return s.update(ctx, func(st *state) error {
		if sch.Active && st.hasOtherActive(sch.ProjectionID, sch.ID) {
			return domain.ErrActiveScheduleConflict
		}
		cp := *sch
		cp.Periods = append([]domain.SchedulePeriod(nil), sch.Periods...)
		st.schedules[sch.ID] = cp
		return nil
	})
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	store *Store
}

// NewTxManager creates a new TxManager.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// Begin starts a new transaction, waiting for any running one to finish.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	return m.store.begin(ctx)
}

// Tx is a transaction over a private copy of the store state.
type Tx struct {
	store *Store
	state *state
	once  sync.Once
	done  bool
}

// Commit publishes the transaction's state.
func (t *Tx) Commit(_ context.Context) error {
	if t.done {
		return ErrTxDone
	}
	t.store.mu.Lock()
	t.store.state = t.state
	t.store.mu.Unlock()
	t.finish()
	return nil
}

// Rollback discards the transaction. It is a no-op after Commit.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.once.Do(func() {
		t.done = true
		t.state = nil
		<-t.store.sem
	})
}

func stateOf(tx usecase.Transaction) (*state, error) {
	t, ok := tx.(*Tx)
	if !ok || t.done {
		return nil, ErrTxDone
	}
	return t.state, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func utcNow() time.Time { return time.Now().UTC() }
