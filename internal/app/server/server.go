package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"marina/internal/domain/audit"
	"marina/internal/domain/auth"
	"marina/internal/domain/employee"
	"marina/internal/domain/payout"
	"marina/internal/platform/config"
	"marina/internal/platform/db"
	"marina/internal/platform/metrics"
	"marina/internal/transport/http/middleware"
	"marina/migrations"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router http.Handler
}

// New connects to Postgres, bootstraps the schema and admin account as
// configured, and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrations.Files); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}

	accounts := auth.NewStore(pool)
	if cfg.RunSeed {
		if err := db.Seed(ctx, accounts, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	auditSvc := audit.New(pool)
	router := NewRouter(Deps{
		Config:      cfg,
		Employees:   employee.NewStore(pool),
		Payouts:     payout.NewStore(pool),
		Accounts:    accounts,
		Audit:       auditSvc,
		AuditLog:    auditSvc,
		Idempotency: middleware.NewIdempotencyStore(pool),
		Metrics:     metrics.New(),
		Ready:       pool.Ping,
	})

	return &App{Config: cfg, DB: pool, Router: router}, nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
// within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("marina server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		slog.Info("marina server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
