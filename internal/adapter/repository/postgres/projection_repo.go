package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/postgres/generated"
)

// ProjectionRepository implements usecase.ProjectionRepository.
type ProjectionRepository struct {
	queries *generated.Queries
}

// NewProjectionRepository creates a new ProjectionRepository.
func NewProjectionRepository(db generated.DBTX) *ProjectionRepository {
	return &ProjectionRepository{queries: generated.New(db)}
}

// GetByID retrieves a projection by ID.
func (r *ProjectionRepository) GetByID(ctx context.Context, id string) (*domain.Projection, error) {
	row, err := r.queries.GetProjectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectionNotFound
		}
		return nil, err
	}

	return &domain.Projection{
		ID:                 row.ID,
		ProductType:        row.ProductType,
		Capital:            numericToDecimal(row.Capital),
		Term:               int(row.Term),
		NominalRate:        numericToDecimal(row.NominalRate),
		TotalYield:         numericToDecimal(row.TotalYield),
		TotalOperatingCost: numericToDecimal(row.TotalOperatingCost),
		PayoffValue:        numericToDecimal(row.PayoffValue),
		CreatedAt:          row.CreatedAt.Time,
	}, nil
}
