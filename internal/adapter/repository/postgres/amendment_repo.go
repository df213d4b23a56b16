package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/postgres/generated"
	"github.com/iho/goinvest/internal/usecase"
)

// AmendmentRepository implements usecase.AmendmentRepository. Duplicate
// (investment, period) or (investment, sequence) inserts surface as
// domain.ErrAmendmentConflict.
type AmendmentRepository struct {
	queries *generated.Queries
}

// NewAmendmentRepository creates a new AmendmentRepository.
func NewAmendmentRepository(db generated.DBTX) *AmendmentRepository {
	return &AmendmentRepository{queries: generated.New(db)}
}

// Create inserts a new amendment within a transaction.
func (r *AmendmentRepository) Create(ctx context.Context, tx usecase.Transaction, a *domain.Amendment) error {
	err := queriesFor(tx).CreateAmendment(ctx, generated.CreateAmendmentParams{
		ID:                    a.ID,
		InvestmentID:          a.InvestmentID,
		OriginalProjectionID:  a.OriginalProjectionID,
		OriginalScheduleID:    a.OriginalScheduleID,
		IncrementProjectionID: stringPtrToText(a.IncrementProjectionID),
		IncrementScheduleID:   stringPtrToText(a.IncrementScheduleID),
		IncrementPeriod:       int32(a.IncrementPeriod),
		IncrementAmount:       decimalToNumeric(a.IncrementAmount),
		Sequence:              int32(a.Sequence),
		Name:                  a.Name,
		State:                 int16(a.State),
		DocumentsGenerated:    a.DocumentsGenerated,
		FlowContinued:         a.FlowContinued,
		CreatedBy:             a.CreatedBy,
		UpdatedBy:             a.UpdatedBy,
		CreatedAt:             timeToPgTimestamptz(a.CreatedAt),
		UpdatedAt:             timeToPgTimestamptz(a.UpdatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrAmendmentConflict
	}
	return err
}

// GetByID retrieves an amendment by ID.
func (r *AmendmentRepository) GetByID(ctx context.Context, id string) (*domain.Amendment, error) {
	row, err := r.queries.GetAmendmentByID(ctx, id)
	if err != nil {
		return nil, amendmentError(err)
	}
	return rowToAmendment(row), nil
}

// GetByIDForUpdate retrieves an amendment with a row lock.
func (r *AmendmentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Amendment, error) {
	row, err := queriesFor(tx).GetAmendmentByIDForUpdate(ctx, id)
	if err != nil {
		return nil, amendmentError(err)
	}
	return rowToAmendment(row), nil
}

// Update writes the increment, state, flags and audit fields.
func (r *AmendmentRepository) Update(ctx context.Context, tx usecase.Transaction, a *domain.Amendment) error {
	n, err := queriesFor(tx).UpdateAmendment(ctx, generated.UpdateAmendmentParams{
		ID:                    a.ID,
		IncrementProjectionID: stringPtrToText(a.IncrementProjectionID),
		IncrementScheduleID:   stringPtrToText(a.IncrementScheduleID),
		State:                 int16(a.State),
		DocumentsGenerated:    a.DocumentsGenerated,
		FlowContinued:         a.FlowContinued,
		UpdatedBy:             a.UpdatedBy,
		UpdatedAt:             timeToPgTimestamptz(a.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAmendmentNotFound
	}
	return nil
}

// ListByInvestment lists amendments of an investment, oldest first.
func (r *AmendmentRepository) ListByInvestment(ctx context.Context, investmentID string) ([]*domain.Amendment, error) {
	rows, err := r.queries.ListAmendmentsByInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}

	amendments := make([]*domain.Amendment, 0, len(rows))
	for _, row := range rows {
		amendments = append(amendments, rowToAmendment(row))
	}

	return amendments, nil
}

// CountByInvestment counts the amendments of an investment.
func (r *AmendmentRepository) CountByInvestment(ctx context.Context, tx usecase.Transaction, investmentID string) (int, error) {
	count, err := queriesFor(tx).CountAmendmentsByInvestment(ctx, investmentID)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// ExistsForPeriod reports whether the investment already has an amendment for period.
func (r *AmendmentRepository) ExistsForPeriod(ctx context.Context, tx usecase.Transaction, investmentID string, period int) (bool, error) {
	return queriesFor(tx).AmendmentExistsForPeriod(ctx, generated.AmendmentExistsForPeriodParams{
		InvestmentID:    investmentID,
		IncrementPeriod: int32(period),
	})
}

func amendmentError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAmendmentNotFound
	}
	return err
}

func rowToAmendment(row generated.Amendment) *domain.Amendment {
	return &domain.Amendment{
		ID:                    row.ID,
		InvestmentID:          row.InvestmentID,
		OriginalProjectionID:  row.OriginalProjectionID,
		OriginalScheduleID:    row.OriginalScheduleID,
		IncrementProjectionID: textToStringPtr(row.IncrementProjectionID),
		IncrementScheduleID:   textToStringPtr(row.IncrementScheduleID),
		IncrementPeriod:       int(row.IncrementPeriod),
		IncrementAmount:       numericToDecimal(row.IncrementAmount),
		Sequence:              int(row.Sequence),
		Name:                  row.Name,
		State:                 domain.AmendmentState(row.State),
		DocumentsGenerated:    row.DocumentsGenerated,
		FlowContinued:         row.FlowContinued,
		CreatedBy:             row.CreatedBy,
		UpdatedBy:             row.UpdatedBy,
		CreatedAt:             row.CreatedAt.Time,
		UpdatedAt:             row.UpdatedAt.Time,
	}
}
