package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tillbooks/ledger/internal/adapter/http/handler"
	"github.com/tillbooks/ledger/internal/adapter/http/middleware"
	"github.com/tillbooks/ledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	TransferHandler  *handler.TransferHandler
	ApprovalHandler  *handler.ApprovalHandler
	LedgerHandler    *handler.LedgerHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recovery)

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Response replay for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/branch", cfg.AccountHandler.OpenBranch)
			r.Post("/company-bank", cfg.AccountHandler.OpenCompanyBank)
			r.Post("/customer-credit", cfg.AccountHandler.OpenCustomerCredit)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/deactivate", cfg.AccountHandler.Deactivate)
			r.Get("/{id}/operations", cfg.TransferHandler.ListByAccount)
			r.Get("/{id}/ledger", cfg.LedgerHandler.ListByAccount)
			r.Get("/{id}/reconciliation", cfg.LedgerHandler.ReconcileAccount)
		})

		// Transfers
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		// Approvals
		r.Route("/approvals", func(r chi.Router) {
			r.Post("/", cfg.ApprovalHandler.Create)
			r.Get("/", cfg.ApprovalHandler.ListPending)
			r.Get("/{id}", cfg.ApprovalHandler.Get)
			r.Post("/{id}/decide", cfg.ApprovalHandler.Decide)
		})

		// Ledger-wide reconciliation
		r.Get("/ledger/reconciliation", cfg.LedgerHandler.ReconcileAll)
	})

	return r
}
