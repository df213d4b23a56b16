package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/metrics"
)

// ContractUseCase hands out contract numbers, at most one per
// (request, projection) pair.
type ContractUseCase struct {
	contractRepo   ContractSequenceRepository
	projectionRepo ProjectionRepository
	generator      SequenceGenerator
	cache          ContractCache
	cacheTTL       time.Duration
	group          singleflight.Group
	metrics        *metrics.Metrics
	logger         zerolog.Logger
}

// NewContractUseCase creates a new ContractUseCase. cache may be nil.
func NewContractUseCase(
	contractRepo ContractSequenceRepository,
	projectionRepo ProjectionRepository,
	generator SequenceGenerator,
	cache ContractCache,
	cacheTTL time.Duration,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *ContractUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultContractCacheTTL
	}
	return &ContractUseCase{
		contractRepo:   contractRepo,
		projectionRepo: projectionRepo,
		generator:      generator,
		cache:          cache,
		cacheTTL:       cacheTTL,
		metrics:        m,
		logger:         logger.With().Str("component", "contract_usecase").Logger(),
	}
}

// GetOrCreate returns the contract number for the pair, minting one if the
// pair has none. Repeated and concurrent calls converge on the same number.
func (uc *ContractUseCase) GetOrCreate(ctx context.Context, requestID, projectionID string) (string, error) {
	if requestID == "" || projectionID == "" {
		return "", uc.fail(domain.ErrMissingID)
	}

	key := domain.ContractKey(requestID, projectionID)

	if number, ok := uc.fromCache(ctx, key); ok {
		return number, nil
	}

	v, err, shared := uc.group.Do(key, func() (any, error) {
		return uc.lookupOrMint(ctx, requestID, projectionID)
	})
	if err != nil {
		return "", uc.fail(err)
	}
	number := v.(string)

	if !shared {
		uc.toCache(ctx, key, number)
	}

	return number, nil
}

func (uc *ContractUseCase) lookupOrMint(ctx context.Context, requestID, projectionID string) (string, error) {
	existing, err := uc.contractRepo.GetByKey(ctx, requestID, projectionID)
	if err == nil {
		return existing.Number, nil
	}
	if !errors.Is(err, domain.ErrContractNotFound) {
		return "", err
	}

	if _, err := uc.projectionRepo.GetByID(ctx, projectionID); err != nil {
		return "", err
	}

	number, err := uc.generator.MintOrFetch(ctx, requestID, projectionID)
	if err != nil {
		uc.logger.Error().
			Err(err).
			Str("request_id", requestID).
			Str("projection_id", projectionID).
			Msg("contract number generation failed")
		return "", domain.CollaboratorError("sequence generator", err)
	}
	if number == "" {
		return "", domain.ErrSequenceGeneration
	}

	uc.logger.Info().
		Str("request_id", requestID).
		Str("projection_id", projectionID).
		Str("number", number).
		Msg("contract number issued")

	if uc.metrics != nil {
		uc.metrics.ContractNumbersMinted.Inc()
	}

	return number, nil
}

// fromCache is best effort: cache errors fall through to the repository.
func (uc *ContractUseCase) fromCache(ctx context.Context, key string) (string, bool) {
	if uc.cache == nil {
		return "", false
	}

	number, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("contract cache get failed")
		return "", false
	}

	if uc.metrics != nil {
		if ok {
			uc.metrics.ContractCacheHits.Inc()
		} else {
			uc.metrics.ContractCacheMisses.Inc()
		}
	}

	return number, ok && number != ""
}

func (uc *ContractUseCase) toCache(ctx context.Context, key, number string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Set(ctx, key, number, uc.cacheTTL); err != nil {
		uc.logger.Warn().Err(err).Str("key", key).Msg("contract cache set failed")
	}
}

func (uc *ContractUseCase) fail(err error) error {
	if uc.metrics != nil {
		uc.metrics.ContractErrors.WithLabelValues(domain.ErrorKind(err)).Inc()
	}
	return err
}
