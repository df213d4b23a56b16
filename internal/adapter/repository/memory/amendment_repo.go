package memory

import (
	"context"
	"sort"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// AmendmentRepository implements usecase.AmendmentRepository. It enforces the
// same uniqueness as the relational schema: one amendment per
// (investment, increment period) and per (investment, sequence).
type AmendmentRepository struct {
	store *Store
}

// NewAmendmentRepository creates a new AmendmentRepository.
func NewAmendmentRepository(store *Store) *AmendmentRepository {
	return &AmendmentRepository{store: store}
}

// Create inserts a new amendment.
func (r *AmendmentRepository) Create(_ context.Context, tx usecase.Transaction, a *domain.Amendment) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	if _, ok := st.amendments[a.ID]; ok {
		return domain.ErrAmendmentConflict
	}
	for _, existing := range st.amendments {
		if existing.InvestmentID != a.InvestmentID {
			continue
		}
		if existing.IncrementPeriod == a.IncrementPeriod || existing.Sequence == a.Sequence {
			return domain.ErrAmendmentConflict
		}
	}
	st.amendments[a.ID] = a.Clone()
	return nil
}

// GetByID retrieves an amendment by ID.
func (r *AmendmentRepository) GetByID(_ context.Context, id string) (*domain.Amendment, error) {
	var out *domain.Amendment
	err := r.store.view(func(st *state) error {
		a, ok := st.amendments[id]
		if !ok {
			return domain.ErrAmendmentNotFound
		}
		out = a.Clone()
		return nil
	})
	return out, err
}

// GetByIDForUpdate retrieves an amendment inside the transaction.
func (r *AmendmentRepository) GetByIDForUpdate(_ context.Context, tx usecase.Transaction, id string) (*domain.Amendment, error) {
	st, err := stateOf(tx)
	if err != nil {
		return nil, err
	}
	a, ok := st.amendments[id]
	if !ok {
		return nil, domain.ErrAmendmentNotFound
	}
	return a.Clone(), nil
}

// Update overwrites the mutable fields of an amendment.
func (r *AmendmentRepository) Update(_ context.Context, tx usecase.Transaction, a *domain.Amendment) error {
	st, err := stateOf(tx)
	if err != nil {
		return err
	}
	current, ok := st.amendments[a.ID]
	if !ok {
		return domain.ErrAmendmentNotFound
	}
	next := current.Clone()
	next.IncrementProjectionID = a.Clone().IncrementProjectionID
	next.IncrementScheduleID = a.Clone().IncrementScheduleID
	next.State = a.State
	next.DocumentsGenerated = a.DocumentsGenerated
	next.FlowContinued = a.FlowContinued
	next.UpdatedBy = a.UpdatedBy
	next.UpdatedAt = a.UpdatedAt
	st.amendments[a.ID] = next
	return nil
}

// ListByInvestment lists amendments of an investment by creation time.
func (r *AmendmentRepository) ListByInvestment(_ context.Context, investmentID string) ([]*domain.Amendment, error) {
	var out []*domain.Amendment
	err := r.store.view(func(st *state) error {
		for _, a := range st.amendments {
			if a.InvestmentID == investmentID {
				out = append(out, a.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Sequence < out[j].Sequence
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CountByInvestment counts the amendments of an investment.
func (r *AmendmentRepository) CountByInvestment(_ context.Context, tx usecase.Transaction, investmentID string) (int, error) {
	st, err := stateOf(tx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range st.amendments {
		if a.InvestmentID == investmentID {
			count++
		}
	}
	return count, nil
}

// ExistsForPeriod reports whether the investment already has an amendment for period.
func (r *AmendmentRepository) ExistsForPeriod(_ context.Context, tx usecase.Transaction, investmentID string, period int) (bool, error) {
	st, err := stateOf(tx)
	if err != nil {
		return false, err
	}
	for _, a := range st.amendments {
		if a.InvestmentID == investmentID && a.IncrementPeriod == period {
			return true, nil
		}
	}
	return false, nil
}
