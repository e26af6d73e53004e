// internal/warmer/warmer.go
package warmer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	custom_errors "github-sparks/internal/errors"
	"github-sparks/internal/metrics"
	"github-sparks/internal/model"
)

const (
	// Number of topics warmed in parallel
	concurrency = 3
)

// Searcher resolves ranked repositories for a topic through the cache tiers.
type Searcher interface {
	SearchRepos(ctx context.Context, topic string, allowStale bool) ([]model.RankedRepository, error)
}

// Sweeper deletes persistent entries too old to be served.
type Sweeper interface {
	Sweep(ctx context.Context) (int64, error)
}

// Warmer periodically pre-loads the cache for a list of popular topics and
// sweeps expired persistent entries.
type Warmer struct {
	searcher Searcher
	sweeper  Sweeper
	logger   *slog.Logger
	metrics  *metrics.Manager
	topics   []string
	interval time.Duration
}

// NewWarmer creates a new Warmer instance. Blank topics are rejected.
func NewWarmer(searcher Searcher, sweeper Sweeper, logger *slog.Logger, m *metrics.Manager, topics []string, interval time.Duration) (*Warmer, error) {
	cleaned, err := parseTopics(topics)
	if err != nil {
		return nil, err
	}

	return &Warmer{
		searcher: searcher,
		sweeper:  sweeper,
		logger:   logger,
		metrics:  m,
		topics:   cleaned,
		interval: interval,
	}, nil
}

// Topics returns the topics this warmer keeps loaded.
func (w *Warmer) Topics() []string {
	return append([]string(nil), w.topics...)
}

// Start runs warm-up cycles until ctx is cancelled.
func (w *Warmer) Start(ctx context.Context) {
	w.logger.Info("Starting warmer", "interval", w.interval.String(), "topics", len(w.topics), "concurrency", concurrency)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunCycle(ctx) // Initial warm-up

	for {
		select {
		case <-ticker.C:
			w.RunCycle(ctx)
		case <-ctx.Done():
			w.logger.Info("Warmer shutting down", "reason", ctx.Err())
			return
		}
	}
}

// RunCycle warms every topic once, then sweeps the persistent tier.
// Stale results are accepted so a warm topic never blocks on upstream.
func (w *Warmer) RunCycle(ctx context.Context) {
	w.logger.Info("Starting new warm-up cycle")
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, topic := range w.topics {
		topic := topic
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			repos, err := w.searcher.SearchRepos(gctx, topic, true)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.Error("Failed to warm topic", "topic", topic, "error", err)
				return nil
			}
			w.logger.Debug("Warmed topic", "topic", topic, "results", len(repos))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		w.logger.Error("Warm-up cycle finished with an error", "error", err)
	}

	if ctx.Err() != nil {
		return
	}
	n, err := w.sweeper.Sweep(ctx)
	if err != nil {
		w.logger.Warn("Failed to sweep expired cache entries", "error", err)
	} else if n > 0 {
		w.logger.Info("Swept expired cache entries", "count", n)
	}

	w.metrics.WarmCycle()
	w.logger.Info("Warm-up cycle finished")
}

func parseTopics(topics []string) ([]string, error) {
	var cleaned []string
	for _, t := range topics {
		t = strings.TrimSpace(t)
		if t == "" {
			return nil, custom_errors.ErrEmptyTopic
		}
		cleaned = append(cleaned, t)
	}
	return cleaned, nil
}
