// Package runner executes the audit matrix: it expands (urls × devices
// × runs) into individual jobs, invokes the audit engine once per job,
// and stores each raw result file. One job's failure never aborts the
// rest of the matrix.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/engine"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/resultstore"
)

// DefaultConcurrency keeps the matrix sequential, which matches the
// reference behavior and avoids overloading the audit engine.
const DefaultConcurrency = 1

// Config holds runner settings.
type Config struct {
	// Concurrency is the number of jobs executed in parallel.
	Concurrency int `mapstructure:"concurrency"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Concurrency < 1 {
		c.Concurrency = DefaultConcurrency
	}
}

// Runner fans the audit matrix out over a bounded worker pool.
type Runner struct {
	engine   engine.Engine
	store    *resultstore.Store
	notifier Notifier
	logger   logger.Logger
	config   Config
}

// New creates a matrix runner. A nil notifier defaults to NoopNotifier.
func New(eng engine.Engine, store *resultstore.Store, notifier Notifier, cfg Config, log logger.Logger) (*Runner, error) {
	if eng == nil {
		return nil, errors.New("runner: engine cannot be nil")
	}
	if store == nil {
		return nil, errors.New("runner: result store cannot be nil")
	}
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	cfg.SetDefaults()

	return &Runner{
		engine:   eng,
		store:    store,
		notifier: notifier,
		logger:   log,
		config:   cfg,
	}, nil
}

// Run executes every job of the matrix. Per-job engine failures are
// logged and skipped; a failing job simply yields no result file.
// Success is observed through the files present afterward.
func (r *Runner) Run(ctx context.Context, matrix Matrix) error {
	if err := matrix.Validate(); err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	r.notifier.MatrixStarted(ctx, matrix)
	r.logger.Info("audit matrix started",
		logger.Int64("site_id", matrix.SiteID),
		logger.Strings("urls", matrix.URLs),
		logger.Strings("devices", matrix.Devices),
		logger.Int("runs", matrix.Runs),
		logger.Int("jobs", matrix.Size()),
	)

	var (
		failed atomic.Int64
		wg     sync.WaitGroup
		sem    = make(chan struct{}, r.config.Concurrency)
	)

	for _, job := range matrix.Jobs() {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return fmt.Errorf("runner: matrix interrupted: %w", ctx.Err())
		}

		wg.Add(1)
		go func(job domain.AuditJob) {
			defer func() {
				<-sem
				wg.Done()
			}()

			if err := r.execute(ctx, job); err != nil {
				failed.Add(1)
				r.logger.Warn("audit job failed",
					logger.Int64("site_id", job.SiteID),
					logger.String("url", job.URL),
					logger.String("device", job.Device),
					logger.Int("run", job.Run),
					logger.Error(err),
				)
			}
		}(job)
	}

	wg.Wait()
	r.notifier.MatrixCompleted(ctx, matrix)

	r.logger.Info("audit matrix completed",
		logger.Int64("site_id", matrix.SiteID),
		logger.Int("jobs", matrix.Size()),
		logger.Int64("failed", failed.Load()),
	)

	return nil
}

// execute runs a single job, writing the engine output under the job's
// result key.
func (r *Runner) execute(ctx context.Context, job domain.AuditJob) error {
	key := r.store.KeyFor(job.SiteID, job.Device, job.URL, job.Run)
	return r.engine.Audit(ctx, job.URL, job.Device, r.store.Path(key))
}
