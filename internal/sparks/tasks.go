// internal/sparks/tasks.go
package sparks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github-sparks/internal/metrics"
)

// taskRunner runs detached units of work. A task outlives the request that
// started it; its outcome is only logged and counted.
type taskRunner struct {
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *metrics.Manager
}

func newTaskRunner(logger *slog.Logger, m *metrics.Manager) *taskRunner {
	return &taskRunner{logger: logger, metrics: m}
}

// Go starts fn on a context that keeps ctx's values but not its cancellation.
func (r *taskRunner) Go(ctx context.Context, kind, topic string, fn func(context.Context) error) {
	detached := context.WithoutCancel(ctx)
	logger := r.logger.With("task_id", uuid.NewString(), "task", kind, "topic", topic)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := run(detached, fn)
		r.metrics.BackgroundTask(kind, err)
		if err != nil {
			logger.Error("Background task failed", "error", err)
			return
		}
		logger.Debug("Background task finished")
	}()
}

func (r *taskRunner) Wait() {
	r.wg.Wait()
}

func run(ctx context.Context, fn func(context.Context) error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn(ctx)
}
