package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/energyledger/internal/adapter/http/handler"
	"github.com/iho/energyledger/internal/adapter/http/middleware"
	"github.com/iho/energyledger/internal/infrastructure/auth"
	"github.com/iho/energyledger/internal/infrastructure/metrics"
	"github.com/iho/energyledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	ParticipantHandler *handler.ParticipantHandler
	EnergyHandler      *handler.EnergyHandler
	TradeHandler       *handler.TradeHandler
	WalletHandler      *handler.WalletHandler
	LedgerHandler      *handler.LedgerHandler
	HealthHandler      *handler.HealthHandler

	// JWTManager enables bearer-token identities. When nil the caller is
	// taken from the X-Participant-ID header.
	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration
	RateLimiter      *middleware.RateLimiter
	Metrics          *metrics.Metrics
	MetricsHandler   http.Handler
	Logger           zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.NewIdentityMiddleware(cfg.JWTManager).Wrap)

		// Idempotency keys are scoped by caller, so this runs after identity.
		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger).Wrap)
		}

		// Participants
		r.Route("/participants", func(r chi.Router) {
			r.Post("/prosumer", cfg.ParticipantHandler.RegisterProsumer)
			r.Post("/consumer", cfg.ParticipantHandler.RegisterConsumer)
			r.Get("/", cfg.ParticipantHandler.List)
			r.Get("/{identity}", cfg.ParticipantHandler.Get)
			r.Get("/{identity}/trades", cfg.ParticipantHandler.Trades)
		})

		// Energy
		r.Post("/energy", cfg.EnergyHandler.Add)

		// Trades
		r.Route("/trades", func(r chi.Router) {
			r.Post("/", cfg.TradeHandler.Buy)
			r.Get("/", cfg.TradeHandler.History)
			r.Get("/export", cfg.TradeHandler.Export)
			r.Get("/{id}", cfg.TradeHandler.Get)
		})

		// Wallets
		r.Route("/wallets", func(r chi.Router) {
			r.Post("/deposit", cfg.WalletHandler.Deposit)
			r.Get("/{identity}", cfg.WalletHandler.Get)
			r.Get("/{identity}/entries", cfg.WalletHandler.Entries)
			r.Get("/{identity}/reconcile", cfg.WalletHandler.Reconcile)
		})

		// Ledger
		r.Get("/ledger/consistency", cfg.LedgerHandler.Consistency)
	})

	return r
}
