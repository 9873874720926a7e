package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marina/internal/domain/agreement"
	"marina/internal/domain/audit"
	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/domain/payout"
	"marina/internal/platform/config"
	"marina/internal/platform/metrics"
	"marina/internal/transport/http/api"
	agreementhandler "marina/internal/transport/http/handlers/agreement"
	audithandler "marina/internal/transport/http/handlers/audit"
	authhandler "marina/internal/transport/http/handlers/auth"
	employeehandler "marina/internal/transport/http/handlers/employee"
	payouthandler "marina/internal/transport/http/handlers/payout"
	"marina/internal/transport/http/middleware"
)

// Deps are the collaborators the HTTP surface is assembled from. Audit,
// AuditLog, Idempotency, Metrics and Ready are optional.
type Deps struct {
	Config      config.Config
	Employees   employee.StoreAPI
	Payouts     payout.StoreAPI
	Accounts    auth.AccountStore
	Audit       audit.Recorder
	AuditLog    audit.Reader
	Idempotency middleware.IdempotencyStore
	Metrics     *metrics.Collector
	Ready       func(ctx context.Context) error
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	auditRec := deps.Audit
	if auditRec == nil {
		auditRec = audit.Nop{}
	}
	identity := middleware.ClaimsResolver{}

	employees := employee.NewService(deps.Employees)
	agreements := agreement.NewService(employees, agreement.NewFiles(cfg.PersistentFilePath))
	payouts := payout.NewService(deps.Payouts, deps.Employees)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	// Auth precedes Logger so the access record sees the principal.
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.Logger(deps.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes, cfg.MaxUploadBytes))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if deps.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled && deps.Metrics != nil {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, deps.Metrics.Snapshot())
		})
	}

	authhandler.NewHandler(deps.Accounts, cfg.JWTSecret, cfg.TokenTTL).RegisterRoutes(router)
	if deps.AuditLog != nil {
		audithandler.NewHandler(deps.AuditLog).RegisterRoutes(router)
	}

	router.Route("/employees", func(r chi.Router) {
		employeehandler.NewHandler(employees, agreements, identity, auditRec).RegisterRoutes(r)
		payouthandler.NewHandler(payouts, employees, identity, auditRec, deps.Idempotency).RegisterRoutes(r)
		agreementhandler.NewHandler(agreements, employees, identity, auditRec).RegisterRoutes(r)
	})

	return router
}
