package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ledgerhouse/cashbook/internal/adapter/http/handler"
	"github.com/ledgerhouse/cashbook/internal/adapter/http/middleware"
	"github.com/ledgerhouse/cashbook/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler    *handler.AccountHandler
	PaymentHandler    *handler.PaymentHandler
	DevolutionHandler *handler.DevolutionHandler
	LedgerHandler     *handler.LedgerHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	Logger            zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	r.Use(middleware.Session)

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts and expenses
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Get("/{id}/entries", cfg.LedgerHandler.ListByAccount)
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.CreateExpense)
			r.Get("/{id}", cfg.AccountHandler.GetExpense)
		})

		// Movements
		r.Post("/payments", cfg.PaymentHandler.Create)
		r.Post("/devolutions", cfg.DevolutionHandler.Create)

		// Ledger
		r.Route("/ledger", func(r chi.Router) {
			r.Get("/consistency", cfg.LedgerHandler.CheckConsistency)
			r.Get("/{id}", cfg.LedgerHandler.Get)
			r.Post("/{id}/approve", cfg.LedgerHandler.Approve)
			r.Post("/{id}/cancel", cfg.LedgerHandler.Cancel)
		})
	})

	return r
}
