package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/infrastructure/metrics"
)

// AmendmentUseCase drives the amendment lifecycle:
// Projected -> DocumentsGenerated -> Completed.
type AmendmentUseCase struct {
	txManager      TransactionManager
	retrier        Retrier
	locker         Locker
	investmentRepo InvestmentRepository
	projectionRepo ProjectionRepository
	scheduleRepo   ScheduleRepository
	amendmentRepo  AmendmentRepository
	outboxRepo     OutboxRepository
	documents      DocumentGenerator
	idGen          IDGenerator
	metrics        *metrics.Metrics
	logger         zerolog.Logger
	now            func() time.Time
}

// AmendmentUseCaseConfig holds dependencies for AmendmentUseCase.
type AmendmentUseCaseConfig struct {
	TxManager      TransactionManager
	Retrier        Retrier // optional, defaults to a single attempt
	Locker         Locker  // optional, defaults to an in-process KeyedMutex
	InvestmentRepo InvestmentRepository
	ProjectionRepo ProjectionRepository
	ScheduleRepo   ScheduleRepository
	AmendmentRepo  AmendmentRepository
	OutboxRepo     OutboxRepository // optional
	Documents      DocumentGenerator
	IDGen          IDGenerator
	Metrics        *metrics.Metrics // optional
	Logger         *zerolog.Logger  // optional
}

// NewAmendmentUseCase creates a new AmendmentUseCase.
func NewAmendmentUseCase(cfg AmendmentUseCaseConfig) *AmendmentUseCase {
	if cfg.Retrier == nil {
		cfg.Retrier = noRetry{}
	}
	if cfg.Locker == nil {
		cfg.Locker = NewKeyedMutex()
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &AmendmentUseCase{
		txManager:      cfg.TxManager,
		retrier:        cfg.Retrier,
		locker:         cfg.Locker,
		investmentRepo: cfg.InvestmentRepo,
		projectionRepo: cfg.ProjectionRepo,
		scheduleRepo:   cfg.ScheduleRepo,
		amendmentRepo:  cfg.AmendmentRepo,
		outboxRepo:     cfg.OutboxRepo,
		documents:      cfg.Documents,
		idGen:          cfg.IDGen,
		metrics:        cfg.Metrics,
		logger:         logger.With().Str("component", "amendment_usecase").Logger(),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateAmendmentInput represents input for creating an amendment.
type CreateAmendmentInput struct {
	InvestmentID         string
	OriginalProjectionID string
	IncrementPeriod      int
	IncrementAmount      decimal.Decimal
	ActorID              string
}

// SetIncrementInput represents input for attaching the increment projection.
type SetIncrementInput struct {
	AmendmentID           string
	IncrementProjectionID string
	IncrementScheduleID   string
	ActorID               string
}

// CreateAmendment creates an amendment in the Projected state. Creation is
// serialized per investment so the AD-NN suffix is never handed out twice.
func (uc *AmendmentUseCase) CreateAmendment(ctx context.Context, input CreateAmendmentInput) (*domain.Amendment, error) {
	start := time.Now()
	actorID := domain.ResolveActor(ctx, input.ActorID)

	if input.InvestmentID == "" || input.OriginalProjectionID == "" {
		return nil, uc.fail("create", domain.ErrMissingID)
	}
	if input.IncrementPeriod <= 0 {
		return nil, uc.fail("create", domain.ErrInvalidPeriod)
	}
	if !input.IncrementAmount.IsPositive() {
		return nil, uc.fail("create", domain.ErrInvalidAmount)
	}

	unlock, err := uc.locker.Lock(ctx, investmentLockPrefix+input.InvestmentID)
	if err != nil {
		return nil, uc.fail("create", err)
	}
	defer unlock()

	var amendment *domain.Amendment
	err = uc.retrier.Retry(ctx, func() error {
		return runInTx(ctx, uc.txManager, func(txCtx context.Context, tx Transaction) error {
			// Row lock on the investment serializes creators across processes.
			investment, err := uc.investmentRepo.GetByIDForUpdate(txCtx, tx, input.InvestmentID)
			if err != nil {
				return err
			}

			exists, err := uc.amendmentRepo.ExistsForPeriod(txCtx, tx, input.InvestmentID, input.IncrementPeriod)
			if err != nil {
				return err
			}
			if exists {
				return domain.ErrAmendmentConflict
			}

			if _, err := uc.projectionRepo.GetByID(txCtx, input.OriginalProjectionID); err != nil {
				return err
			}

			originalSchedule, err := uc.scheduleRepo.GetActiveByProjection(txCtx, tx, input.OriginalProjectionID)
			if err != nil {
				return err
			}
			// The original must be the projection the investment currently points at.
			if investment.ActiveProjectionID != input.OriginalProjectionID {
				return domain.ErrOriginalNotActive
			}

			count, err := uc.amendmentRepo.CountByInvestment(txCtx, tx, input.InvestmentID)
			if err != nil {
				return err
			}

			now := uc.now()
			seq := count + 1
			candidate := &domain.Amendment{
				ID:                   uc.idGen.Generate(),
				InvestmentID:         investment.ID,
				OriginalProjectionID: input.OriginalProjectionID,
				OriginalScheduleID:   originalSchedule.ID,
				IncrementPeriod:      input.IncrementPeriod,
				IncrementAmount:      input.IncrementAmount,
				Sequence:             seq,
				Name:                 domain.AmendmentName(investment.Name, seq),
				State:                domain.AmendmentStateProjected,
				CreatedBy:            actorID,
				UpdatedBy:            actorID,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if err := candidate.Validate(); err != nil {
				return err
			}

			if err := uc.amendmentRepo.Create(txCtx, tx, candidate); err != nil {
				return err
			}

			if err := uc.emit(txCtx, tx, candidate, domain.EventTypeAmendmentCreated, now); err != nil {
				return err
			}

			amendment = candidate
			return nil
		})
	})
	if err != nil {
		return nil, uc.fail("create", err)
	}

	uc.logger.Info().
		Str("amendment_id", amendment.ID).
		Str("investment_id", amendment.InvestmentID).
		Str("name", amendment.Name).
		Str("actor_id", actorID).
		Msg("amendment created")

	if uc.metrics != nil {
		uc.metrics.AmendmentsCreated.Inc()
		uc.metrics.AmendmentDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	}

	return amendment, nil
}

// SetIncrement attaches the increment projection and schedule. Allowed while
// the amendment is not completed; the state is left unchanged.
func (uc *AmendmentUseCase) SetIncrement(ctx context.Context, input SetIncrementInput) (*domain.Amendment, error) {
	actorID := domain.ResolveActor(ctx, input.ActorID)

	if input.AmendmentID == "" || input.IncrementProjectionID == "" || input.IncrementScheduleID == "" {
		return nil, uc.fail("set_increment", domain.ErrMissingID)
	}

	var amendment *domain.Amendment
	err := uc.retrier.Retry(ctx, func() error {
		return runInTx(ctx, uc.txManager, func(txCtx context.Context, tx Transaction) error {
			current, err := uc.amendmentRepo.GetByIDForUpdate(txCtx, tx, input.AmendmentID)
			if err != nil {
				return err
			}
			if err := current.CanSetIncrement(); err != nil {
				return err
			}

			if _, err := uc.projectionRepo.GetByID(txCtx, input.IncrementProjectionID); err != nil {
				return err
			}

			schedule, err := uc.scheduleRepo.GetByID(txCtx, input.IncrementScheduleID, false)
			if err != nil {
				return err
			}
			if !schedule.BelongsTo(input.IncrementProjectionID) {
				return domain.ErrScheduleProjectionMismatch
			}

			if err := current.SetIncrement(input.IncrementProjectionID, input.IncrementScheduleID, actorID, uc.now()); err != nil {
				return err
			}

			if err := uc.amendmentRepo.Update(txCtx, tx, current); err != nil {
				return err
			}

			amendment = current
			return nil
		})
	})
	if err != nil {
		return nil, uc.fail("set_increment", err)
	}

	uc.logger.Info().
		Str("amendment_id", amendment.ID).
		Str("increment_projection_id", input.IncrementProjectionID).
		Str("increment_schedule_id", input.IncrementScheduleID).
		Msg("amendment increment set")

	return amendment, nil
}

// GenerateDocuments asks the document generator for the amendment documents
// and advances to DocumentsGenerated only when it reports an effect. The
// amendment row stays locked during the call, so concurrent callers cannot
// both generate. This operation is not retried: the collaborator call is not
// part of the transaction.
func (uc *AmendmentUseCase) GenerateDocuments(ctx context.Context, amendmentID, actorID string) (*domain.Amendment, error) {
	start := time.Now()
	actorID = domain.ResolveActor(ctx, actorID)

	if amendmentID == "" {
		return nil, uc.fail("generate_documents", domain.ErrMissingID)
	}

	var amendment *domain.Amendment
	err := runInTx(ctx, uc.txManager, func(txCtx context.Context, tx Transaction) error {
		current, err := uc.amendmentRepo.GetByIDForUpdate(txCtx, tx, amendmentID)
		if err != nil {
			return err
		}
		if err := current.CanGenerateDocuments(); err != nil {
			return err
		}

		affected, err := uc.documents.GenerateForMotive(txCtx, domain.AmendmentMotive, current.InvestmentID, current.ID)
		if err != nil {
			return domain.CollaboratorError("document generator", err)
		}
		if affected <= 0 {
			return domain.ErrDocumentsNotGeneratedByCollaborator
		}

		now := uc.now()
		if err := current.MarkDocumentsGenerated(actorID, now); err != nil {
			return err
		}

		if err := uc.amendmentRepo.Update(txCtx, tx, current); err != nil {
			return err
		}

		if err := uc.emit(txCtx, tx, current, domain.EventTypeAmendmentDocumentsGenerated, now); err != nil {
			return err
		}

		amendment = current
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrCollaboratorFailure) {
			uc.logger.Error().Err(err).Str("amendment_id", amendmentID).Msg("document generation failed")
		}
		return nil, uc.fail("generate_documents", err)
	}

	uc.logger.Info().
		Str("amendment_id", amendment.ID).
		Str("state", amendment.State.String()).
		Msg("amendment documents generated")

	if uc.metrics != nil {
		uc.metrics.DocumentsGenerated.Inc()
		uc.metrics.AmendmentDuration.WithLabelValues("generate_documents").Observe(time.Since(start).Seconds())
	}

	return amendment, nil
}

// ContinueFlow completes the amendment. In one transaction it deactivates the
// schedule active for the original projection, activates the increment
// schedule, repoints the investment to the increment projection and marks the
// amendment completed. Any failure rolls back all of it.
func (uc *AmendmentUseCase) ContinueFlow(ctx context.Context, amendmentID, actorID string) (*domain.Amendment, error) {
	start := time.Now()
	actorID = domain.ResolveActor(ctx, actorID)

	if amendmentID == "" {
		return nil, uc.fail("continue_flow", domain.ErrMissingID)
	}

	attempts := 0
	var amendment *domain.Amendment
	err := uc.retrier.Retry(ctx, func() error {
		attempts++
		return runInTx(ctx, uc.txManager, func(txCtx context.Context, tx Transaction) error {
			current, err := uc.amendmentRepo.GetByIDForUpdate(txCtx, tx, amendmentID)
			if err != nil {
				return err
			}
			if err := current.CanContinueFlow(); err != nil {
				return err
			}

			investment, err := uc.investmentRepo.GetByIDForUpdate(txCtx, tx, current.InvestmentID)
			if err != nil {
				return err
			}
			if investment.ActiveProjectionID != current.OriginalProjectionID {
				return domain.ErrOriginalNotActive
			}

			incrementProjectionID := *current.IncrementProjectionID
			incrementSchedule, err := uc.scheduleRepo.GetByIDForUpdate(txCtx, tx, *current.IncrementScheduleID)
			if err != nil {
				return err
			}
			if !incrementSchedule.BelongsTo(incrementProjectionID) {
				return domain.ErrScheduleProjectionMismatch
			}

			now := uc.now()

			originalSchedule, err := uc.scheduleRepo.GetActiveByProjection(txCtx, tx, current.OriginalProjectionID)
			switch {
			case err == nil:
				if err := uc.scheduleRepo.SetActive(txCtx, tx, originalSchedule.ID, false, now); err != nil {
					return err
				}
			case errors.Is(err, domain.ErrScheduleNotFound):
				uc.logger.Warn().
					Str("amendment_id", current.ID).
					Str("projection_id", current.OriginalProjectionID).
					Msg("no active schedule for original projection")
			default:
				return err
			}

			if err := uc.scheduleRepo.SetActive(txCtx, tx, incrementSchedule.ID, true, now); err != nil {
				return err
			}

			if err := uc.investmentRepo.SetActiveProjection(txCtx, tx, investment.ID, incrementProjectionID, actorID, now); err != nil {
				return err
			}

			if err := current.Complete(actorID, now); err != nil {
				return err
			}

			if err := uc.amendmentRepo.Update(txCtx, tx, current); err != nil {
				return err
			}

			if err := uc.emit(txCtx, tx, current, domain.EventTypeAmendmentCompleted, now); err != nil {
				return err
			}

			amendment = current
			return nil
		})
	})
	if uc.metrics != nil && attempts > 1 {
		uc.metrics.ScheduleSwapRetries.Add(float64(attempts - 1))
	}
	if err != nil {
		return nil, uc.fail("continue_flow", err)
	}

	uc.logger.Info().
		Str("amendment_id", amendment.ID).
		Str("investment_id", amendment.InvestmentID).
		Str("active_projection_id", *amendment.IncrementProjectionID).
		Msg("amendment completed")

	if uc.metrics != nil {
		uc.metrics.FlowsCompleted.Inc()
		uc.metrics.AmendmentDuration.WithLabelValues("continue_flow").Observe(time.Since(start).Seconds())
	}

	return amendment, nil
}

// GetAmendment retrieves an amendment by ID.
func (uc *AmendmentUseCase) GetAmendment(ctx context.Context, id string) (*domain.Amendment, error) {
	return uc.amendmentRepo.GetByID(ctx, id)
}

// GetDetail returns the amendment with its projections and schedule headers.
func (uc *AmendmentUseCase) GetDetail(ctx context.Context, id string) (*domain.AmendmentDetail, error) {
	return uc.detail(ctx, id, false)
}

// GetFullDetail returns the amendment with its projections and the full
// period lists of both schedules.
func (uc *AmendmentUseCase) GetFullDetail(ctx context.Context, id string) (*domain.AmendmentDetail, error) {
	return uc.detail(ctx, id, true)
}

// ListByInvestment lists amendments of an investment, oldest first.
func (uc *AmendmentUseCase) ListByInvestment(ctx context.Context, investmentID string) ([]*domain.Amendment, error) {
	amendments, err := uc.amendmentRepo.ListByInvestment(ctx, investmentID)
	if err != nil {
		return nil, err
	}
	if amendments == nil {
		amendments = []*domain.Amendment{}
	}
	return amendments, nil
}

func (uc *AmendmentUseCase) detail(ctx context.Context, id string, withPeriods bool) (*domain.AmendmentDetail, error) {
	amendment, err := uc.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &domain.AmendmentDetail{Amendment: amendment}

	if detail.Investment, err = uc.investmentRepo.GetByID(ctx, amendment.InvestmentID); err != nil {
		return nil, err
	}
	if detail.OriginalProjection, err = uc.projectionRepo.GetByID(ctx, amendment.OriginalProjectionID); err != nil {
		return nil, err
	}
	if detail.OriginalSchedule, err = uc.scheduleRepo.GetByID(ctx, amendment.OriginalScheduleID, withPeriods); err != nil {
		return nil, err
	}

	if amendment.IncrementProjectionID != nil {
		if detail.IncrementProjection, err = uc.projectionRepo.GetByID(ctx, *amendment.IncrementProjectionID); err != nil {
			return nil, err
		}
	}
	if amendment.IncrementScheduleID != nil {
		if detail.IncrementSchedule, err = uc.scheduleRepo.GetByID(ctx, *amendment.IncrementScheduleID, withPeriods); err != nil {
			return nil, err
		}
	}

	return detail, nil
}

func (uc *AmendmentUseCase) emit(ctx context.Context, tx Transaction, a *domain.Amendment, eventType string, at time.Time) error {
	if uc.outboxRepo == nil {
		return nil
	}

	return uc.outboxRepo.Create(ctx, tx, &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   a.ID,
		AggregateType: domain.AggregateTypeAmendment,
		EventType:     eventType,
		Payload:       domain.AmendmentEventPayload(a),
		CreatedAt:     at,
	})
}

func (uc *AmendmentUseCase) fail(operation string, err error) error {
	if uc.metrics != nil {
		uc.metrics.AmendmentErrors.WithLabelValues(operation, domain.ErrorKind(err)).Inc()
	}
	return err
}
