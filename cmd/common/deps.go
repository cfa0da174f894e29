// Package common provides shared bootstrap utilities for command
// implementations.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/aggregate"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/config"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/database"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/engine"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/pipeline"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/resultstore"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/runner"
)

// CommandDeps holds the dependencies shared by all commands.
type CommandDeps struct {
	Config   *config.Config
	Logger   logger.Logger
	DB       *sqlx.DB
	Store    *resultstore.Store
	Pipeline *pipeline.Pipeline
	RunLog   *database.RunLogRepository
}

// NewCommandDeps loads configuration and constructs the full pipeline
// dependency graph.
func NewCommandDeps() (*CommandDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	store, err := resultstore.New(cfg.Audit.Dir, log)
	if err != nil {
		return nil, err
	}

	eng, err := engine.NewLighthouse(cfg.Engine, log)
	if err != nil {
		return nil, err
	}

	matrixRunner, err := runner.New(eng, store, nil, runner.Config{Concurrency: cfg.Audit.Concurrency}, log)
	if err != nil {
		return nil, err
	}

	aggregator := aggregate.New(store, cfg.Audit.Metrics, log)
	actions := database.NewActionRepository(db)
	writer := database.NewMetricRepository(db, actions, domain.DefaultDevices(), log)

	pipe, err := pipeline.New(matrixRunner, aggregator, writer, store, pipeline.Config{
		Devices: cfg.Audit.Devices,
		Runs:    cfg.Audit.Runs,
	}, log)
	if err != nil {
		return nil, err
	}

	return &CommandDeps{
		Config:   cfg,
		Logger:   log,
		DB:       db,
		Store:    store,
		Pipeline: pipe,
		RunLog:   database.NewRunLogRepository(db),
	}, nil
}

// Close releases held resources.
func (d *CommandDeps) Close() {
	if d.DB != nil {
		_ = d.DB.Close()
	}
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}
}
