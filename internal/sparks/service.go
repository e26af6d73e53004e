// internal/sparks/service.go
package sparks

import (
	"context"
	"log/slog"
	"time"

	"github-sparks/internal/clock"
	"github-sparks/internal/metrics"
	"github-sparks/internal/model"
	"github-sparks/internal/scoring"
)

const (
	// DefaultLookbackMonths bounds how old a repository may be to be considered.
	DefaultLookbackMonths = 6

	taskRefresh = "refresh"
	taskPersist = "persist"
)

// MemoryCache is the in-process tier.
type MemoryCache interface {
	Get(topic string) ([]model.RankedRepository, bool)
	Set(topic string, repos []model.RankedRepository)
}

// PersistentCache is the durable tier. Reads never fail; a failed read is a miss.
type PersistentCache interface {
	GetFresh(ctx context.Context, topic string) ([]model.RankedRepository, bool)
	GetStale(ctx context.Context, topic string) ([]model.RankedRepository, bool)
	Upsert(ctx context.Context, topic string, repos []model.RankedRepository) error
}

// Upstream is the rate-limited repository search source.
type Upstream interface {
	SearchRepositories(ctx context.Context, topic string, createdAfter time.Time) ([]model.Repository, error)
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock.
func WithClock(clk clock.Clock) Option {
	return func(s *Service) {
		if clk != nil {
			s.clock = clk
		}
	}
}

// WithMetrics records cache and upstream metrics on m.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLookbackMonths sets how many months back the creation date filter reaches.
func WithLookbackMonths(months int) Option {
	return func(s *Service) {
		if months > 0 {
			s.lookbackMonths = months
		}
	}
}

// Service resolves ranked repositories for a topic through the cache tiers,
// falling back to the upstream search.
type Service struct {
	memory         MemoryCache
	persistent     PersistentCache
	upstream       Upstream
	logger         *slog.Logger
	clock          clock.Clock
	metrics        *metrics.Manager
	lookbackMonths int
	tasks          *taskRunner
}

// NewService creates a new Service instance.
func NewService(memory MemoryCache, persistent PersistentCache, upstream Upstream, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		memory:         memory,
		persistent:     persistent,
		upstream:       upstream,
		logger:         logger,
		clock:          clock.Real{},
		lookbackMonths: DefaultLookbackMonths,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tasks = newTaskRunner(logger, s.metrics)
	return s
}

// SearchRepos returns the ranked repositories for topic. Tiers are tried in
// order: memory, fresh persistent entry, then (when allowStale is set) a
// stale persistent entry that is served while a refresh runs in the
// background. A full miss fetches from upstream synchronously.
//
// The only error returned is the upstream failure of that synchronous fetch.
func (s *Service) SearchRepos(ctx context.Context, topic string, allowStale bool) ([]model.RankedRepository, error) {
	logger := s.logger.With("topic", topic)

	repos, ok := s.memory.Get(topic)
	s.metrics.CacheLookup(metrics.TierMemory, ok)
	if ok {
		logger.Debug("Cache hit", "tier", metrics.TierMemory)
		return repos, nil
	}

	repos, ok = s.persistent.GetFresh(ctx, topic)
	s.metrics.CacheLookup(metrics.TierDatabase, ok)
	if ok {
		logger.Debug("Cache hit", "tier", metrics.TierDatabase)
		s.memory.Set(topic, repos)
		return repos, nil
	}

	if allowStale {
		repos, ok = s.persistent.GetStale(ctx, topic)
		s.metrics.CacheLookup(metrics.TierStale, ok)
		if ok {
			logger.Debug("Cache hit", "tier", metrics.TierStale)
			s.tasks.Go(ctx, taskRefresh, topic, func(ctx context.Context) error {
				_, err := s.FetchAndCacheRepos(ctx, topic)
				return err
			})
			return repos, nil
		}
	}

	return s.FetchAndCacheRepos(ctx, topic)
}

// FetchAndCacheRepos queries upstream for recently created repositories,
// ranks them and writes non-empty results through both cache tiers. The
// persistent write happens in the background.
func (s *Service) FetchAndCacheRepos(ctx context.Context, topic string) ([]model.RankedRepository, error) {
	logger := s.logger.With("topic", topic)
	now := s.clock.Now()

	start := time.Now()
	records, err := s.upstream.SearchRepositories(ctx, topic, now.AddDate(0, -s.lookbackMonths, 0))
	s.metrics.UpstreamRequest(err, time.Since(start))
	if err != nil {
		logger.Error("Upstream search failed", "error", err)
		return nil, err
	}

	ranked := scoring.Rank(records, now)
	logger.Info("Fetched repositories", "fetched", len(records), "ranked", len(ranked))
	if len(ranked) == 0 {
		return ranked, nil
	}

	s.memory.Set(topic, ranked)
	s.tasks.Go(ctx, taskPersist, topic, func(ctx context.Context) error {
		return s.persistent.Upsert(ctx, topic, ranked)
	})
	return ranked, nil
}

// Wait blocks until every background task started so far has finished.
func (s *Service) Wait() {
	s.tasks.Wait()
}
