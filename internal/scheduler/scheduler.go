// Package scheduler triggers the audit pipeline daily for every
// configured site, skipping sites that already ran today.
package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/pipeline"
)

// DefaultSchedule runs the nightly audit sweep at 03:00.
const DefaultSchedule = "0 3 * * *"

// SitePipeline runs the audit pipeline for one site. Satisfied by
// pipeline.Pipeline.
type SitePipeline interface {
	Run(ctx context.Context, site domain.Site) (*pipeline.Summary, error)
}

// RunLog is the per-site per-day execution guard. Satisfied by
// database.RunLogRepository.
type RunLog interface {
	HasRunToday(ctx context.Context, siteID int64) (bool, error)
	MarkRun(ctx context.Context, siteID int64) error
}

// Config holds scheduler settings.
type Config struct {
	// Schedule is a standard 5-field cron expression.
	Schedule string `mapstructure:"schedule"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
}

// Scheduler owns the cron loop over the configured sites.
type Scheduler struct {
	cron     *cron.Cron
	pipeline SitePipeline
	runLog   RunLog
	sites    []domain.Site
	logger   logger.Logger
	config   Config
}

// New creates a scheduler for the given sites.
func New(sitePipeline SitePipeline, runLog RunLog, sites []domain.Site, cfg Config, log logger.Logger) (*Scheduler, error) {
	if sitePipeline == nil {
		return nil, errors.New("scheduler: pipeline cannot be nil")
	}
	if runLog == nil {
		return nil, errors.New("scheduler: run log cannot be nil")
	}
	cfg.SetDefaults()

	return &Scheduler{
		cron:     cron.New(),
		pipeline: sitePipeline,
		runLog:   runLog,
		sites:    sites,
		logger:   log,
		config:   cfg,
	}, nil
}

// Start registers the cron entry and begins scheduling. It returns
// immediately; Stop shuts the loop down.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.config.Schedule, func() {
		s.RunDue(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", s.config.Schedule, err)
	}

	s.cron.Start()
	s.logger.Info("audit scheduler started",
		logger.String("schedule", s.config.Schedule),
		logger.Int("sites", len(s.sites)),
	)

	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("audit scheduler stopped")
}

// RunDue runs the pipeline for every site that has not run today. One
// site's failure does not prevent the others from running.
func (s *Scheduler) RunDue(ctx context.Context) {
	for _, site := range s.sites {
		ran, err := s.runLog.HasRunToday(ctx, site.ID)
		if err != nil {
			s.logger.Error("run log check failed", logger.Int64("site_id", site.ID), logger.Error(err))
			continue
		}
		if ran {
			s.logger.Debug("site already audited today", logger.Int64("site_id", site.ID))
			continue
		}

		if _, err := s.pipeline.Run(ctx, site); err != nil {
			s.logger.Error("site audit failed", logger.Int64("site_id", site.ID), logger.Error(err))
			continue
		}

		if err := s.runLog.MarkRun(ctx, site.ID); err != nil {
			s.logger.Error("failed to mark run", logger.Int64("site_id", site.ID), logger.Error(err))
		}
	}
}
