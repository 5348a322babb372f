package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/medconnect/graphd/internal/graph"
)

// Runner schedules analytics cycles: one optional run at start, then one per
// interval. Runs are serialized; a cycle still in flight when the ticker
// fires makes the new cycle wait, never overlap.
type Runner struct {
	client graph.Client
	prober *Prober
	logger *slog.Logger

	interval   time.Duration
	runOnStart bool

	mu sync.Mutex

	// overridable in tests
	newGDS    func() Engine
	newManual func() Engine
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithInterval sets the cycle interval. Default: 6h.
func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithRunOnStart controls the immediate cycle when Start is called.
func WithRunOnStart(run bool) RunnerOption {
	return func(r *Runner) { r.runOnStart = run }
}

// NewRunner creates an analytics runner over the client.
func NewRunner(client graph.Client, logger *slog.Logger, opts ...RunnerOption) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		client:     client,
		prober:     NewProber(client, logger),
		logger:     logger,
		interval:   6 * time.Hour,
		runOnStart: true,
	}
	r.newGDS = func() Engine { return NewGDSEngine(client, logger) }
	r.newManual = func() Engine { return NewManualEngine(client, logger) }
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the schedule loop in its own goroutine. It returns
// immediately; the loop stops when the context is cancelled.
func (r *Runner) Start(ctx context.Context) {
	go func() {
		if r.runOnStart {
			if err := r.RunOnce(ctx); err != nil {
				r.logger.Error("analytics run failed", "error", err)
			}
		}

		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := r.RunOnce(ctx); err != nil {
					r.logger.Error("analytics run failed", "error", err)
				}
			}
		}
	}()
}

// RunOnce executes a single analytics cycle. The plugin is re-probed every
// cycle, so installing or removing GDS takes effect on the next run without
// a restart.
func (r *Runner) RunOnce(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	engine := r.newManual()
	if r.prober.Available(ctx) {
		engine = r.newGDS()
	}

	start := time.Now()
	r.logger.Info("analytics run starting", "engine", engine.Name())
	if err := engine.Run(ctx); err != nil {
		return err
	}
	r.logger.Info("analytics run complete",
		"engine", engine.Name(), "duration", time.Since(start))
	return nil
}
