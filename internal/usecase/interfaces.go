package usecase

import (
	"context"
	"time"

	"github.com/iho/goinvest/internal/domain"
)

// InvestmentRepository defines data access for investments.
type InvestmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Investment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Investment, error)
	SetActiveProjection(ctx context.Context, tx Transaction, id, projectionID, actorID string, updatedAt time.Time) error
}

// ProjectionRepository defines read access for projections.
type ProjectionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Projection, error)
}

// ScheduleRepository defines data access for schedules. The active flag is
// only ever changed inside a transaction.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string, withPeriods bool) (*domain.Schedule, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Schedule, error)
	// GetActiveByProjection returns domain.ErrScheduleNotFound when no schedule is active.
	GetActiveByProjection(ctx context.Context, tx Transaction, projectionID string) (*domain.Schedule, error)
	SetActive(ctx context.Context, tx Transaction, id string, active bool, updatedAt time.Time) error
}

// AmendmentRepository defines data access for amendments.
type AmendmentRepository interface {
	Create(ctx context.Context, tx Transaction, amendment *domain.Amendment) error
	GetByID(ctx context.Context, id string) (*domain.Amendment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Amendment, error)
	Update(ctx context.Context, tx Transaction, amendment *domain.Amendment) error
	ListByInvestment(ctx context.Context, investmentID string) ([]*domain.Amendment, error)
	CountByInvestment(ctx context.Context, tx Transaction, investmentID string) (int, error)
	ExistsForPeriod(ctx context.Context, tx Transaction, investmentID string, period int) (bool, error)
}

// ContractSequenceRepository defines read access for minted contract numbers.
type ContractSequenceRepository interface {
	// GetByKey returns domain.ErrContractNotFound when the pair has no number yet.
	GetByKey(ctx context.Context, requestID, projectionID string) (*domain.ContractSequence, error)
}

// SequenceGenerator returns the stored contract number for a pair or mints a
// new one. Implementations own the atomicity of read-check-insert.
type SequenceGenerator interface {
	MintOrFetch(ctx context.Context, requestID, projectionID string) (string, error)
}

// DocumentGenerator renders the documents for a motive and reports how many
// records it affected.
type DocumentGenerator interface {
	GenerateForMotive(ctx context.Context, motive, investmentID, amendmentID string) (int, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Locker serializes work on a key. The returned func releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// ContractCache caches minted contract numbers.
type ContractCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
