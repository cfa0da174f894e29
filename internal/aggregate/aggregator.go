// Package aggregate reduces the raw per-run audit result files of a
// site into {min, median, max} statistics grouped by (site, url key,
// device, metric name).
package aggregate

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/resultstore"
)

// ScoreKey is the synthetic metric derived from the performance score.
const ScoreKey = "score"

// DefaultMetrics is the recognized metric whitelist: only these keys
// (plus the synthetic score) survive into aggregation.
func DefaultMetrics() []string {
	return []string{
		ScoreKey,
		"firstContentfulPaint",
		"firstMeaningfulPaint",
		"speedIndex",
		"interactive",
		"totalBlockingTime",
		"maxPotentialFID",
	}
}

// rawResult holds the consumed fields of one audit result document.
type rawResult struct {
	Audits struct {
		Metrics struct {
			Details struct {
				Items []map[string]any `json:"items"`
			} `json:"details"`
		} `json:"metrics"`
	} `json:"audits"`
	Categories struct {
		Performance struct {
			Score float64 `json:"score"`
		} `json:"performance"`
	} `json:"categories"`
}

// Result is the output of one aggregation pass.
type Result struct {
	// Stats holds the reduced statistics, empty when no file produced a
	// sample.
	Stats SiteStats
	// Files lists every result file visited, for post-persist deletion.
	Files []string
}

// Empty reports whether the pass produced no statistics.
func (r *Result) Empty() bool {
	return len(r.Stats) == 0
}

// Aggregator consumes a site's result files into grouped statistics.
type Aggregator struct {
	store   *resultstore.Store
	metrics []string
	logger  logger.Logger
}

// New creates an aggregator. An empty metrics list falls back to
// DefaultMetrics.
func New(store *resultstore.Store, metrics []string, log logger.Logger) *Aggregator {
	if len(metrics) == 0 {
		metrics = DefaultMetrics()
	}

	return &Aggregator{
		store:   store,
		metrics: metrics,
		logger:  log,
	}
}

// Aggregate enumerates all stored result files for the site, folds
// every recognized metric sample into the accumulator and reduces the
// groups. Files without a well-formed metrics-detail record are skipped
// without error; they still count as visited.
func (a *Aggregator) Aggregate(ctx context.Context, siteID int64) (*Result, error) {
	files, err := a.store.ListForSite(siteID)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}

	acc := NewAccumulator()
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("aggregate: interrupted: %w", err)
		}
		a.consume(file, acc)
	}

	if acc.Len() == 0 {
		a.logger.Warn("no audit samples collected",
			logger.Int64("site_id", siteID),
			logger.Int("files", len(files)),
		)
		return &Result{Stats: SiteStats{}, Files: files}, nil
	}

	a.logger.Info("audit samples aggregated",
		logger.Int64("site_id", siteID),
		logger.Int("files", len(files)),
		logger.Int("samples", acc.Len()),
	)

	return &Result{Stats: acc.Reduce(), Files: files}, nil
}

// consume parses one result file and appends its samples. Malformed or
// incomplete files contribute nothing.
func (a *Aggregator) consume(file string, acc *Accumulator) {
	key, err := resultstore.ParseKey(file)
	if err != nil {
		a.logger.Debug("result file skipped", logger.String("file", filepath.Base(file)), logger.Error(err))
		return
	}

	payload, err := os.ReadFile(file) //nolint:gosec // paths come from our own audit directory
	if err != nil {
		a.logger.Debug("result file unreadable", logger.String("file", filepath.Base(file)), logger.Error(err))
		return
	}

	var raw rawResult
	if err := json.Unmarshal(payload, &raw); err != nil {
		a.logger.Debug("result file undecodable", logger.String("file", filepath.Base(file)), logger.Error(err))
		return
	}

	items := raw.Audits.Metrics.Details.Items
	if len(items) == 0 {
		return
	}

	for metric, value := range items[0] {
		number, ok := value.(float64)
		if !ok || !slices.Contains(a.metrics, metric) {
			continue
		}
		acc.AddSample(key.SiteID, key.URLHash, key.Device, metric, number)
	}

	if slices.Contains(a.metrics, ScoreKey) {
		score := math.Round(raw.Categories.Performance.Score * 100)
		acc.AddSample(key.SiteID, key.URLHash, key.Device, ScoreKey, score)
	}
}
