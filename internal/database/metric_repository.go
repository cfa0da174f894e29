package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/aggregate"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
)

// ActionResolver is the lookup the writer joins aggregated url keys
// against. Satisfied by ActionRepository.
type ActionResolver interface {
	ResolveHashes(ctx context.Context, hashes []string, fetch FetchType) (map[string]int64, error)
}

// MetricRepository persists aggregated audit statistics, one row per
// (site, device, action, metric).
type MetricRepository struct {
	db      *sqlx.DB
	actions ActionResolver
	devices domain.DeviceCatalog
	logger  logger.Logger
}

// NewMetricRepository creates a new metric repository.
func NewMetricRepository(db *sqlx.DB, actions ActionResolver, devices domain.DeviceCatalog, log logger.Logger) *MetricRepository {
	return &MetricRepository{
		db:      db,
		actions: actions,
		devices: devices,
		logger:  log,
	}
}

// Persist flattens the grouped statistics for one site and inserts the
// rows. URL keys without a matching catalogue action silently drop
// their rows (inner join); persistence failures propagate and abort the
// batch. Returns the number of rows written.
func (r *MetricRepository) Persist(ctx context.Context, siteID int64, stats aggregate.SiteStats) (int, error) {
	urls, ok := stats[siteID]
	if !ok || len(urls) == 0 {
		r.logger.Info("no aggregated statistics to persist", logger.Int64("site_id", siteID))
		return 0, nil
	}

	// One batched lookup for the whole site, not one per row.
	hashes := make([]string, 0, len(urls))
	for urlKey := range urls {
		hashes = append(hashes, urlKey)
	}

	actionIDs, err := r.actions.ResolveHashes(ctx, hashes, FetchID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve actions: %w", err)
	}

	query := `
		INSERT INTO audit_metrics (idsite, emulated_device, idaction, key, min, median, max, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	rows := 0

	for urlKey, devices := range urls {
		actionID, resolved := actionIDs[urlKey]
		if !resolved {
			r.logger.Debug("url key has no catalogue action, rows dropped",
				logger.Int64("site_id", siteID),
				logger.String("url_key", urlKey),
			)
			continue
		}

		for device, metrics := range devices {
			deviceID, known := r.devices.DeviceID(device)
			if !known {
				r.logger.Warn("unknown emulated device, rows dropped",
					logger.Int64("site_id", siteID),
					logger.String("device", device),
				)
				continue
			}

			for metric, stat := range metrics {
				if _, err := r.db.ExecContext(ctx, query,
					siteID, deviceID, actionID, metric,
					stat.Min, stat.Median, stat.Max, now,
				); err != nil {
					return rows, fmt.Errorf("failed to insert metric row: %w", err)
				}
				rows++
			}
		}
	}

	r.logger.Info("audit statistics persisted",
		logger.Int64("site_id", siteID),
		logger.Int("rows", rows),
	)

	return rows, nil
}
