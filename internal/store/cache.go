// internal/store/cache.go
package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github-sparks/internal/clock"
	custom_errors "github-sparks/internal/errors"
	"github-sparks/internal/model"
)

const (
	// DefaultFreshWindow is the age under which an entry is served normally.
	DefaultFreshWindow = 6 * time.Hour
	// DefaultStaleWindow is the age under which an entry may still be served
	// while a refresh runs in the background.
	DefaultStaleWindow = 24 * time.Hour
)

// Option configures a Cache.
type Option func(*Cache)

// WithWindows overrides the fresh and stale windows.
func WithWindows(fresh, stale time.Duration) Option {
	return func(c *Cache) {
		if fresh > 0 && stale >= fresh {
			c.freshWindow = fresh
			c.staleWindow = stale
		}
	}
}

// Cache is the persistent tier. It applies the freshness windows on top of a
// Backend and turns every backend failure into a logged miss, so callers
// never see a read error.
type Cache struct {
	backend     Backend
	clock       clock.Clock
	logger      *slog.Logger
	freshWindow time.Duration
	staleWindow time.Duration
}

// NewCache wraps backend with the default 6h/24h windows.
func NewCache(backend Backend, clk clock.Clock, logger *slog.Logger, opts ...Option) *Cache {
	c := &Cache{
		backend:     backend,
		clock:       clk,
		logger:      logger,
		freshWindow: DefaultFreshWindow,
		staleWindow: DefaultStaleWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetFresh returns the stored results if they were written within the fresh
// window. Older entries are left in place.
func (c *Cache) GetFresh(ctx context.Context, topic string) ([]model.RankedRepository, bool) {
	return c.lookup(ctx, topic, c.freshWindow)
}

// GetStale returns the stored results if they were written within the stale
// window, fresh or not.
func (c *Cache) GetStale(ctx context.Context, topic string) ([]model.RankedRepository, bool) {
	return c.lookup(ctx, topic, c.staleWindow)
}

// Upsert replaces the results and timestamp stored for topic.
func (c *Cache) Upsert(ctx context.Context, topic string, repos []model.RankedRepository) error {
	err := c.backend.Upsert(ctx, Entry{Query: topic, Results: repos, UpdatedAt: c.clock.Now()})
	if err != nil {
		return &custom_errors.CacheWriteError{Topic: topic, Err: err}
	}
	return nil
}

// Sweep deletes entries too old to be served even as stale results.
func (c *Cache) Sweep(ctx context.Context) (int64, error) {
	return c.backend.DeleteOlderThan(ctx, c.clock.Now().Add(-c.staleWindow))
}

// StaleWindow reports the configured stale window.
func (c *Cache) StaleWindow() time.Duration {
	return c.staleWindow
}

func (c *Cache) lookup(ctx context.Context, topic string, window time.Duration) ([]model.RankedRepository, bool) {
	e, err := c.backend.Lookup(ctx, topic)
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Persistent cache read failed, treating as miss",
			"error", &custom_errors.CacheReadError{Topic: topic, Err: err})
		return nil, false
	}

	if len(e.Results) == 0 || c.clock.Now().Sub(e.UpdatedAt) >= window {
		return nil, false
	}
	return e.Results, true
}
