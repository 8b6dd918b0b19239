package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/loanledger/internal/adapter/http/handler"
	"github.com/iho/loanledger/internal/adapter/http/middleware"
	"github.com/iho/loanledger/internal/infrastructure/metrics"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	LoanHandler    *handler.LoanHandler
	PaymentHandler *handler.PaymentHandler
	SessionHandler *handler.SessionHandler
	HealthHandler  *handler.HealthHandler
	Logging        *middleware.LoggingMiddleware
	Metrics        *metrics.Metrics
	RateLimiter    *middleware.RateLimiter
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	} else {
		r.Use(chimiddleware.Logger)
	}

	r.Use(middleware.Recovery)

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Post("/", cfg.LoanHandler.Create)
			r.Post("/schedule/preview", cfg.LoanHandler.PreviewSchedule)
			r.Get("/{id}", cfg.LoanHandler.Get)
			r.Get("/{id}/status", cfg.LoanHandler.Status)
		})

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Post("/", cfg.PaymentHandler.Allocate)
			r.Post("/advance", cfg.PaymentHandler.AllocateAdvance)
			r.Post("/advance/quote", cfg.PaymentHandler.QuoteAdvance)
			r.Get("/{id}", cfg.PaymentHandler.Get)
			r.Post("/{id}/classify", cfg.PaymentHandler.Classify)
		})

		// Cash sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", cfg.SessionHandler.Open)
			r.Get("/", cfg.SessionHandler.List)
			r.Post("/{id}/movements", cfg.SessionHandler.RecordMovement)
			r.Get("/{id}/balance", cfg.SessionHandler.Balance)
			r.Get("/{id}/summary", cfg.SessionHandler.Summary)
			r.Post("/{id}/close", cfg.SessionHandler.Close)
		})
	})

	return r
}
