// Package app wires configuration into the cache tiers, the upstream client
// and the orchestrator. Both the HTTP service and the CLI build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github-sparks/internal/cache"
	"github-sparks/internal/clock"
	"github-sparks/internal/config"
	"github-sparks/internal/database"
	"github-sparks/internal/github"
	"github-sparks/internal/metrics"
	"github-sparks/internal/sparks"
	"github-sparks/internal/store"
)

// MigrationsURL is where golang-migrate looks for the postgres schema.
const MigrationsURL = "file://migrations"

// App holds the assembled components.
type App struct {
	Service    *sparks.Service
	Persistent *store.Cache
	Metrics    *metrics.Manager

	closers []func()
}

// New builds every component described by cfg. The caller must Close the
// returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Metrics: metrics.New()}

	backend, err := a.openBackend(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}

	clk := clock.Real{}
	a.Persistent = store.NewCache(backend, clk, logger, store.WithWindows(cfg.FreshWindow, cfg.StaleWindow))
	memory := cache.New(clk, cache.WithMaxSize(cfg.MemoryCacheSize), cache.WithTTL(cfg.MemoryCacheTTL))

	ghOpts := []github.Option{github.WithRateLimit(rate.Limit(cfg.UpstreamRatePerSec))}
	if cfg.GithubAPIURL != "" {
		u, err := url.Parse(cfg.GithubAPIURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("invalid GITHUB_API_URL: %w", err)
		}
		ghOpts = append(ghOpts, github.WithBaseURL(u))
	}
	if cfg.GithubToken == "" {
		logger.Warn("GITHUB_TOKEN not set, using unauthenticated search with a lower rate limit")
	}
	ghClient := github.NewClient(cfg.GithubToken, logger, ghOpts...)

	a.Service = sparks.NewService(memory, a.Persistent, ghClient, logger,
		sparks.WithClock(clk), sparks.WithMetrics(a.Metrics))
	return a, nil
}

// Close waits for background work to finish and releases the store.
func (a *App) Close() {
	if a.Service != nil {
		a.Service.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Backend, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		dbpool, err := pgxpool.New(ctx, cfg.DBURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, dbpool.Close)
		logger.Info("Database connection established")

		if err := RunMigrations(MigrationsURL, cfg.DBURL); err != nil {
			return nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
		logger.Info("Database migrations applied successfully")
		return store.NewPostgresBackend(database.New(dbpool)), nil

	case config.StoreSQLite:
		backend, err := store.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		a.closers = append(a.closers, func() { backend.Close() })
		logger.Info("SQLite store opened", "path", backend.Path())
		return backend, nil

	default:
		logger.Info("Persistent cache disabled")
		return store.Disabled{}, nil
	}
}

// RunMigrations applies every pending migration from sourceURL to dbURL.
func RunMigrations(sourceURL, dbURL string) error {
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// NewLogger returns a JSON logger writing to w at the given level
// (debug, info, warn or error).
func NewLogger(w io.Writer, level string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	setLogLevel(level, logLevel)
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
