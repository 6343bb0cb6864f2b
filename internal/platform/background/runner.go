package background

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/panics"
	"github.com/wielerspel/peloton-api/internal/platform/logging"
)

// Runner submits best-effort tasks that must never take down the request that
// spawned them. Panics are caught and logged, errors are logged and dropped.
type Runner struct {
	logger *logging.Logger
	wg     sync.WaitGroup
}

func NewRunner(logger *logging.Logger) *Runner {
	if logger == nil {
		logger = logging.Default()
	}
	return &Runner{logger: logger}
}

// Go runs task on its own goroutine with a detached context. The caller's
// context is typically request-scoped and may be cancelled before the task
// finishes, so only its values matter here, not its deadline.
func (r *Runner) Go(name string, task func(ctx context.Context) error) {
	if task == nil {
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		var err error
		recovered := panics.Try(func() {
			err = task(context.Background())
		})
		if recovered != nil {
			r.logger.Error("background task panicked", "task", name, "panic", recovered.Value)
			return
		}
		if err != nil {
			r.logger.Warn("background task failed", "task", name, "error", err)
		}
	}()
}

// Wait blocks until all submitted tasks finish. Used on shutdown and in tests.
func (r *Runner) Wait() {
	r.wg.Wait()
}
