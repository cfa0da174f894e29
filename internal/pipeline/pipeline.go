// Package pipeline wires the audit stages together: matrix execution,
// aggregation, persistence, and cleanup of consumed result files.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/aggregate"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/resultstore"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/runner"
)

// MatrixRunner executes a site's audit matrix. Satisfied by
// runner.Runner.
type MatrixRunner interface {
	Run(ctx context.Context, matrix runner.Matrix) error
}

// Aggregator reduces a site's result files. Satisfied by
// aggregate.Aggregator.
type Aggregator interface {
	Aggregate(ctx context.Context, siteID int64) (*aggregate.Result, error)
}

// MetricWriter persists aggregated statistics. Satisfied by
// database.MetricRepository.
type MetricWriter interface {
	Persist(ctx context.Context, siteID int64, stats aggregate.SiteStats) (int, error)
}

// Config holds the per-site matrix shape.
type Config struct {
	// Devices are the emulated device labels audited per URL.
	Devices []string `mapstructure:"devices"`
	// Runs is how many times each (url, device) pair is measured.
	Runs int `mapstructure:"runs"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if len(c.Devices) == 0 {
		c.Devices = []string{domain.DeviceDesktop, domain.DeviceMobile}
	}
	if c.Runs < 1 {
		c.Runs = 3
	}
}

// Pipeline runs the full audit sequence for one site.
type Pipeline struct {
	runner     MatrixRunner
	aggregator Aggregator
	writer     MetricWriter
	store      *resultstore.Store
	logger     logger.Logger
	config     Config
}

// New creates a pipeline.
func New(
	matrixRunner MatrixRunner,
	aggregator Aggregator,
	writer MetricWriter,
	store *resultstore.Store,
	cfg Config,
	log logger.Logger,
) (*Pipeline, error) {
	if matrixRunner == nil || aggregator == nil || writer == nil || store == nil {
		return nil, errors.New("pipeline: all collaborators are required")
	}
	cfg.SetDefaults()

	return &Pipeline{
		runner:     matrixRunner,
		aggregator: aggregator,
		writer:     writer,
		store:      store,
		logger:     log,
		config:     cfg,
	}, nil
}

// Summary reports what one pipeline run did.
type Summary struct {
	// Stats holds the aggregated statistics that were persisted.
	Stats aggregate.SiteStats
	// Rows is the number of metric rows written.
	Rows int
	// FilesConsumed is the number of result files aggregated and deleted.
	FilesConsumed int
}

// Run executes the matrix for the site, aggregates every stored result
// file, persists the statistics, and deletes the consumed files.
//
// Files are deleted only after a successful persist. If the pipeline
// dies earlier, leftover files are re-aggregated on the next run; there
// is no per-file dedup marker, so reprocessing the same file twice
// double-counts its samples.
func (p *Pipeline) Run(ctx context.Context, site domain.Site) (*Summary, error) {
	matrix := runner.Matrix{
		SiteID:  site.ID,
		URLs:    site.URLs,
		Devices: p.config.Devices,
		Runs:    p.config.Runs,
	}

	if err := p.runner.Run(ctx, matrix); err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	result, err := p.aggregator.Aggregate(ctx, site.ID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	if result.Empty() {
		// Nothing to resolve or persist; leave any files in place.
		return &Summary{Stats: result.Stats}, nil
	}

	rows, err := p.writer.Persist(ctx, site.ID, result.Stats)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}

	for _, file := range result.Files {
		if err := p.store.Delete(file); err != nil {
			return nil, fmt.Errorf("pipeline: %w", err)
		}
	}

	p.logger.Info("site audit pipeline completed",
		logger.Int64("site_id", site.ID),
		logger.Int("rows", rows),
		logger.Int("files_consumed", len(result.Files)),
	)

	return &Summary{
		Stats:         result.Stats,
		Rows:          rows,
		FilesConsumed: len(result.Files),
	}, nil
}
