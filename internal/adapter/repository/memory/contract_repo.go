package memory

import (
	"context"
	"time"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// ContractSequenceRepository implements usecase.ContractSequenceRepository.
type ContractSequenceRepository struct {
	store *Store
}

// NewContractSequenceRepository creates a new ContractSequenceRepository.
func NewContractSequenceRepository(store *Store) *ContractSequenceRepository {
	return &ContractSequenceRepository{store: store}
}

// GetByKey retrieves the contract number minted for a pair.
func (r *ContractSequenceRepository) GetByKey(_ context.Context, requestID, projectionID string) (*domain.ContractSequence, error) {
	var out *domain.ContractSequence
	err := r.store.view(func(st *state) error {
		seq, ok := st.contracts[domain.ContractKey(requestID, projectionID)]
		if !ok {
			return domain.ErrContractNotFound
		}
		cp := *seq
		out = &cp
		return nil
	})
	return out, err
}

// SequenceGenerator implements usecase.SequenceGenerator. Read-check-insert
// runs in one store transaction, so concurrent callers for a pair converge.
type SequenceGenerator struct {
	store *Store
	idGen usecase.IDGenerator
	now   func() time.Time
}

// NewSequenceGenerator creates a new SequenceGenerator.
func NewSequenceGenerator(store *Store, idGen usecase.IDGenerator) *SequenceGenerator {
	return &SequenceGenerator{store: store, idGen: idGen, now: utcNow}
}

// MintOrFetch returns the existing number for the pair or mints the next one
// for the current year.
func (g *SequenceGenerator) MintOrFetch(ctx context.Context, requestID, projectionID string) (string, error) {
	if requestID == "" || projectionID == "" {
		return "", domain.ErrMissingID
	}

	var number string
	err := g.store.update(ctx, func(st *state) error {
		key := domain.ContractKey(requestID, projectionID)
		if existing, ok := st.contracts[key]; ok {
			number = existing.Number
			return nil
		}

		now := g.now()
		year := now.Year()
		seq := st.yearSeq[year] + 1
		record := &domain.ContractSequence{
			RequestID:    requestID,
			ProjectionID: projectionID,
			Year:         year,
			Sequence:     seq,
			Number:       domain.FormatContractNumber(year, seq),
			CreatedAt:    now,
		}
		st.contracts[key] = record
		st.yearSeq[year] = seq

		event := domain.OutboxEvent{
			ID:            g.idGen.Generate(),
			AggregateID:   key,
			AggregateType: domain.AggregateTypeContract,
			EventType:     domain.EventTypeContractNumberMinted,
			Payload: map[string]any{
				"request_id":    requestID,
				"projection_id": projectionID,
				"number":        record.Number,
			},
			CreatedAt: now,
		}
		st.outbox[event.ID] = event

		number = record.Number
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
