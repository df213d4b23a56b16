package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/goinvest/internal/adapter/documents"
	httpAdapter "github.com/iho/goinvest/internal/adapter/http"
	"github.com/iho/goinvest/internal/adapter/http/handler"
	"github.com/iho/goinvest/internal/adapter/http/middleware"
	"github.com/iho/goinvest/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/goinvest/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/goinvest/internal/adapter/repository/redis"
	"github.com/iho/goinvest/internal/infrastructure/auth"
	"github.com/iho/goinvest/internal/infrastructure/config"
	"github.com/iho/goinvest/internal/infrastructure/eventpublisher"
	"github.com/iho/goinvest/internal/infrastructure/metrics"
	"github.com/iho/goinvest/internal/infrastructure/postgres"
	"github.com/iho/goinvest/internal/infrastructure/redis"
	"github.com/iho/goinvest/internal/usecase"
)

// storage is the set of repositories one driver provides.
type storage struct {
	txManager   usecase.TransactionManager
	retrier     usecase.Retrier
	investments usecase.InvestmentRepository
	projections usecase.ProjectionRepository
	schedules   usecase.ScheduleRepository
	amendments  usecase.AmendmentRepository
	contracts   usecase.ContractSequenceRepository
	generator   usecase.SequenceGenerator
	outbox      usecase.OutboxRepository
	readiness   handler.Pinger
	close       func()
}

type application struct {
	handler http.Handler
	relay   *eventpublisher.EventPublisher
	limiter *middleware.RateLimiter
	closers []func()
}

// Close releases connections in reverse order of acquisition.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg *prometheus.Registry) (*application, error) {
	app := &application{}
	idGen := postgresRepo.NewULIDGenerator()

	store, err := openStorage(ctx, cfg, log, idGen)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, store.close)

	var (
		cache       usecase.ContractCache
		locker      usecase.Locker
		idempotency *middleware.IdempotencyMiddleware
		redisCheck  handler.Pinger
	)
	if cfg.RedisEnabled {
		client, err := redis.NewClient(ctx, cfg.RedisURL, log)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, func() { _ = client.Close() })

		cache = redisRepo.NewContractCache(client)
		locker = redisRepo.NewLocker(client, redisRepo.WithLockerLogger(log))
		idempotency = middleware.NewIdempotencyMiddleware(redisRepo.NewIdempotencyStore(client), cfg.IdempotencyTTL, log)
		redisCheck = redisPinger(client)
	}

	var docs usecase.DocumentGenerator
	if cfg.DocumentsURL != "" {
		docs = documents.NewClient(documents.Config{
			BaseURL: cfg.DocumentsURL,
			Timeout: cfg.DocumentsTimeout,
			Retries: cfg.DocumentsRetries,
		}, log)
	} else {
		log.Warn().Msg("DOCUMENTS_URL not set, documents are logged instead of generated")
		docs = documents.NewLogGenerator(log)
	}

	m := metrics.New(reg)

	amendmentUC := usecase.NewAmendmentUseCase(usecase.AmendmentUseCaseConfig{
		TxManager:      store.txManager,
		Retrier:        store.retrier,
		Locker:         locker,
		InvestmentRepo: store.investments,
		ProjectionRepo: store.projections,
		ScheduleRepo:   store.schedules,
		AmendmentRepo:  store.amendments,
		OutboxRepo:     store.outbox,
		Documents:      docs,
		IDGen:          idGen,
		Metrics:        m,
		Logger:         &log,
	})
	contractUC := usecase.NewContractUseCase(
		store.contracts, store.projections, store.generator,
		cache, cfg.ContractCacheTTL, m, log,
	)

	var jwtManager *auth.JWTManager
	if cfg.AuthEnabled {
		jwtManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		app.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	app.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AmendmentHandler: handler.NewAmendmentHandler(amendmentUC),
		ContractHandler:  handler.NewContractHandler(contractUC),
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
			"storage": store.readiness,
			"redis":   redisCheck,
		}),
		Logger:         log,
		Idempotency:    idempotency,
		RateLimiter:    app.limiter,
		HTTPMetrics:    middleware.NewHTTPMetrics(reg),
		JWTManager:     jwtManager,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
	})

	var publisher eventpublisher.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := eventpublisher.NewKafkaPublisher(eventpublisher.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}, log)
		app.closers = append(app.closers, func() {
			if err := kp.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close kafka writer")
			}
		})
		publisher = kp
	} else {
		publisher = eventpublisher.NewLogPublisher(log)
	}

	app.relay = eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Metrics:    m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	return app, nil
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger, idGen usecase.IDGenerator) (*storage, error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		return openMemory(ctx, cfg, log, idGen)
	}
	return openPostgres(ctx, cfg, log, idGen)
}

func openMemory(ctx context.Context, cfg *config.Config, log zerolog.Logger, idGen usecase.IDGenerator) (*storage, error) {
	store := memory.NewStore()
	if cfg.SeedFile != "" {
		if err := loadSeedFile(ctx, store, cfg.SeedFile); err != nil {
			return nil, fmt.Errorf("failed to load seed file: %w", err)
		}
		log.Info().Str("file", cfg.SeedFile).Msg("memory store seeded")
	}

	return &storage{
		txManager:   memory.NewTxManager(store),
		investments: memory.NewInvestmentRepository(store),
		projections: memory.NewProjectionRepository(store),
		schedules:   memory.NewScheduleRepository(store),
		amendments:  memory.NewAmendmentRepository(store),
		contracts:   memory.NewContractSequenceRepository(store),
		generator:   memory.NewSequenceGenerator(store, idGen),
		outbox:      memory.NewOutboxRepository(store),
		close:       func() {},
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config, log zerolog.Logger, idGen usecase.IDGenerator) (*storage, error) {
	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager:   postgresRepo.NewTxManager(pool),
		retrier:     postgresRepo.NewRetrier().WithLogger(log),
		investments: postgresRepo.NewInvestmentRepository(pool),
		projections: postgresRepo.NewProjectionRepository(pool),
		schedules:   postgresRepo.NewScheduleRepository(pool),
		amendments:  postgresRepo.NewAmendmentRepository(pool),
		contracts:   postgresRepo.NewContractSequenceRepository(pool),
		generator:   postgresRepo.NewSequenceGenerator(pool, idGen),
		outbox:      postgresRepo.NewOutboxRepository(pool),
		readiness:   pool,
		close:       pool.Close,
	}, nil
}

func redisPinger(client *goredis.Client) handler.PingFunc {
	return func(ctx context.Context) error { return client.Ping(ctx).Err() }
}
