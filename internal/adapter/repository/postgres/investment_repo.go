package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/postgres/generated"
	"github.com/iho/goinvest/internal/usecase"
)

// InvestmentRepository implements usecase.InvestmentRepository.
type InvestmentRepository struct {
	queries *generated.Queries
}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository(db generated.DBTX) *InvestmentRepository {
	return &InvestmentRepository{queries: generated.New(db)}
}

// GetByID retrieves an investment by ID.
func (r *InvestmentRepository) GetByID(ctx context.Context, id string) (*domain.Investment, error) {
	row, err := r.queries.GetInvestmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}

	return rowToInvestment(row), nil
}

// GetByIDForUpdate retrieves an investment with a row lock.
func (r *InvestmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Investment, error) {
	row, err := queriesFor(tx).GetInvestmentByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInvestmentNotFound
		}
		return nil, err
	}

	return rowToInvestment(row), nil
}

// SetActiveProjection repoints the investment to projectionID.
func (r *InvestmentRepository) SetActiveProjection(ctx context.Context, tx usecase.Transaction, id, projectionID, actorID string, updatedAt time.Time) error {
	n, err := queriesFor(tx).UpdateInvestmentActiveProjection(ctx, generated.UpdateInvestmentActiveProjectionParams{
		ID:                 id,
		ActiveProjectionID: projectionID,
		UpdatedBy:          actorID,
		UpdatedAt:          timeToPgTimestamptz(updatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}

func rowToInvestment(row generated.Investment) *domain.Investment {
	return &domain.Investment{
		ID:                 row.ID,
		Name:               row.Name,
		ClientID:           row.ClientID,
		ActiveProjectionID: row.ActiveProjectionID,
		RequestID:          row.RequestID,
		Terminated:         row.Terminated,
		TerminationReason:  row.TerminationReason,
		CreatedBy:          row.CreatedBy,
		UpdatedBy:          row.UpdatedBy,
		CreatedAt:          row.CreatedAt.Time,
		UpdatedAt:          row.UpdatedAt.Time,
	}
}

func queriesFor(tx usecase.Transaction) *generated.Queries {
	return generated.New(tx.(*Tx).PgxTx())
}
