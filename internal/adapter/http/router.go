package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/goinvest/internal/adapter/http/handler"
	"github.com/iho/goinvest/internal/adapter/http/middleware"
	"github.com/iho/goinvest/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router. Optional fields left nil
// disable the corresponding feature.
type RouterConfig struct {
	AmendmentHandler *handler.AmendmentHandler
	ContractHandler  *handler.ContractHandler
	HealthHandler    *handler.HealthHandler
	Logger           zerolog.Logger

	Idempotency    *middleware.IdempotencyMiddleware
	RateLimiter    *middleware.RateLimiter
	HTTPMetrics    *middleware.HTTPMetrics
	JWTManager     *auth.JWTManager
	MetricsHandler http.Handler
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Actor(cfg.JWTManager))
		if cfg.Idempotency != nil {
			r.Use(cfg.Idempotency.Wrap)
		}

		r.Route("/investments/{id}/amendments", func(r chi.Router) {
			r.Post("/", cfg.AmendmentHandler.Create)
			r.Get("/", cfg.AmendmentHandler.List)
		})

		r.Route("/amendments/{id}", func(r chi.Router) {
			r.Get("/", cfg.AmendmentHandler.Get)
			r.Get("/full", cfg.AmendmentHandler.GetFull)
			r.Put("/increment", cfg.AmendmentHandler.SetIncrement)
			r.Post("/documents", cfg.AmendmentHandler.GenerateDocuments)
			r.Post("/continue", cfg.AmendmentHandler.Continue)
		})

		r.Post("/contracts/numbers", cfg.ContractHandler.Number)
	})

	return r
}
