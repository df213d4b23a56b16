package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/postgres/generated"
	"github.com/iho/goinvest/internal/usecase"
)

const contractSequenceLockNamespace = "contract_sequences"

// ContractSequenceRepository implements usecase.ContractSequenceRepository.
type ContractSequenceRepository struct {
	queries *generated.Queries
}

// NewContractSequenceRepository creates a new ContractSequenceRepository.
func NewContractSequenceRepository(db generated.DBTX) *ContractSequenceRepository {
	return &ContractSequenceRepository{queries: generated.New(db)}
}

// GetByKey retrieves the contract number minted for a pair.
func (r *ContractSequenceRepository) GetByKey(ctx context.Context, requestID, projectionID string) (*domain.ContractSequence, error) {
	return getContractSequence(ctx, r.queries, requestID, projectionID)
}

type sequencePool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// SequenceGenerator implements usecase.SequenceGenerator. Numbers are
// allocated per calendar year under a transaction-scoped advisory lock, so
// MAX+1 never hands out the same sequence twice.
type SequenceGenerator struct {
	pool  sequencePool
	idGen usecase.IDGenerator
	now   func() time.Time
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(pool sequencePool, idGen usecase.IDGenerator) *SequenceGenerator {
	return &SequenceGenerator{
		pool:  pool,
		idGen: idGen,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// MintOrFetch returns the stored number for the pair or mints the next one.
func (g *SequenceGenerator) MintOrFetch(ctx context.Context, requestID, projectionID string) (string, error) {
	if requestID == "" || projectionID == "" {
		return "", domain.ErrMissingID
	}

	number, err := g.mint(ctx, requestID, projectionID)
	if isUniqueViolation(err) {
		// Lost a race for the same pair across a year boundary; the winner's row is committed.
		existing, getErr := getContractSequence(ctx, generated.New(g.pool), requestID, projectionID)
		if getErr != nil {
			return "", getErr
		}
		return existing.Number, nil
	}
	return number, err
}

func (g *SequenceGenerator) mint(ctx context.Context, requestID, projectionID string) (string, error) {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := generated.New(tx)

	existing, err := getContractSequence(ctx, q, requestID, projectionID)
	if err == nil {
		return existing.Number, nil
	}
	if !errors.Is(err, domain.ErrContractNotFound) {
		return "", err
	}

	now := g.now()
	year := now.Year()

	if err := q.AcquireAdvisoryXactLock(ctx, advisoryKey(contractSequenceLockNamespace, strconv.Itoa(year))); err != nil {
		return "", err
	}

	// Another caller may have minted this pair while we waited for the lock.
	existing, err = getContractSequence(ctx, q, requestID, projectionID)
	if err == nil {
		return existing.Number, nil
	}
	if !errors.Is(err, domain.ErrContractNotFound) {
		return "", err
	}

	seq, err := q.NextContractSequence(ctx, int32(year))
	if err != nil {
		return "", err
	}

	row, err := q.CreateContractSequence(ctx, generated.CreateContractSequenceParams{
		RequestID:    requestID,
		ProjectionID: projectionID,
		Year:         int32(year),
		Sequence:     seq,
		Number:       domain.FormatContractNumber(year, int(seq)),
		CreatedAt:    timeToPgTimestamptz(now),
	})
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"request_id":    requestID,
		"projection_id": projectionID,
		"number":        row.Number,
	})
	if err != nil {
		return "", err
	}

	if _, err := q.CreateOutboxEvent(ctx, generated.CreateOutboxEventParams{
		ID:            g.idGen.Generate(),
		AggregateID:   domain.ContractKey(requestID, projectionID),
		AggregateType: domain.AggregateTypeContract,
		EventType:     domain.EventTypeContractNumberMinted,
		Payload:       payload,
		CreatedAt:     timeToPgTimestamptz(now),
	}); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}

	return row.Number, nil
}

func getContractSequence(ctx context.Context, q *generated.Queries, requestID, projectionID string) (*domain.ContractSequence, error) {
	row, err := q.GetContractSequence(ctx, generated.GetContractSequenceParams{
		RequestID:    requestID,
		ProjectionID: projectionID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrContractNotFound
		}
		return nil, err
	}

	return &domain.ContractSequence{
		RequestID:    row.RequestID,
		ProjectionID: row.ProjectionID,
		Year:         int(row.Year),
		Sequence:     int(row.Sequence),
		Number:       row.Number,
		CreatedAt:    row.CreatedAt.Time,
	}, nil
}
