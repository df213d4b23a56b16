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

// ScheduleRepository implements usecase.ScheduleRepository.
type ScheduleRepository struct {
	queries *generated.Queries
}

// NewScheduleRepository creates a new ScheduleRepository.
func NewScheduleRepository(db generated.DBTX) *ScheduleRepository {
	return &ScheduleRepository{queries: generated.New(db)}
}

// GetByID retrieves a schedule, loading its periods when withPeriods is set.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string, withPeriods bool) (*domain.Schedule, error) {
	row, err := r.queries.GetScheduleByID(ctx, id)
	if err != nil {
		return nil, scheduleError(err)
	}

	schedule := rowToSchedule(row)
	if !withPeriods {
		return schedule, nil
	}

	periods, err := r.queries.ListSchedulePeriods(ctx, id)
	if err != nil {
		return nil, err
	}

	schedule.Periods = make([]domain.SchedulePeriod, 0, len(periods))
	for _, p := range periods {
		schedule.Periods = append(schedule.Periods, domain.SchedulePeriod{
			Index:           int(p.PeriodIndex),
			StartDate:       p.StartDate.Time,
			EndDate:         p.EndDate.Time,
			Rate:            numericToDecimal(p.Rate),
			Capital:         numericToDecimal(p.Capital),
			Yield:           numericToDecimal(p.Yield),
			OperatingCost:   numericToDecimal(p.OperatingCost),
			AccumulatedRent: numericToDecimal(p.AccumulatedRent),
			EndingCapital:   numericToDecimal(p.EndingCapital),
		})
	}

	return schedule, nil
}

// GetByIDForUpdate retrieves a schedule header with a row lock.
func (r *ScheduleRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Schedule, error) {
	row, err := queriesFor(tx).GetScheduleByIDForUpdate(ctx, id)
	if err != nil {
		return nil, scheduleError(err)
	}
	return rowToSchedule(row), nil
}

// GetActiveByProjection locks and returns the active schedule of a projection.
func (r *ScheduleRepository) GetActiveByProjection(ctx context.Context, tx usecase.Transaction, projectionID string) (*domain.Schedule, error) {
	row, err := queriesFor(tx).GetActiveScheduleByProjection(ctx, projectionID)
	if err != nil {
		return nil, scheduleError(err)
	}
	return rowToSchedule(row), nil
}

// SetActive flips the active flag of a schedule.
func (r *ScheduleRepository) SetActive(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	n, err := queriesFor(tx).SetScheduleActive(ctx, generated.SetScheduleActiveParams{
		ID:        id,
		Active:    active,
		UpdatedAt: timeToPgTimestamptz(updatedAt),
	})
	if isUniqueViolation(err) {
		return domain.ErrActiveScheduleConflict
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrScheduleNotFound
	}
	return nil
}

func scheduleError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrScheduleNotFound
	}
	return err
}

func rowToSchedule(row generated.Schedule) *domain.Schedule {
	return &domain.Schedule{
		ID:           row.ID,
		ProjectionID: row.ProjectionID,
		Active:       row.Active,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}
