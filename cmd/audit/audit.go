// Package audit implements the audit command: run the full pipeline
// once for one or all configured sites and print a statistics summary.
package audit

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/perf-auditor/cmd/common"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/aggregate"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/domain"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/logger"
	"github.com/jonesrussell/north-cloud/perf-auditor/internal/pipeline"
)

// Command returns the audit command.
func Command() *cobra.Command {
	var siteID int64

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run the audit pipeline now",
		Long: `Run the full audit pipeline for the configured sites: execute the
audit matrix, aggregate the result files, persist the statistics and
print a min/median/max summary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := common.NewCommandDeps()
			if err != nil {
				return err
			}
			defer deps.Close()

			sites := deps.Config.Audit.Sites
			if siteID > 0 {
				site, ok := deps.Config.Site(siteID)
				if !ok {
					return fmt.Errorf("site %d is not configured", siteID)
				}
				sites = []domain.Site{site}
			}
			if len(sites) == 0 {
				deps.Logger.Info("no sites configured, nothing to audit")
				return nil
			}

			for _, site := range sites {
				summary, err := deps.Pipeline.Run(cmd.Context(), site)
				if err != nil {
					return fmt.Errorf("audit site %d: %w", site.ID, err)
				}

				deps.Logger.Info("site audited",
					logger.Int64("site_id", site.ID),
					logger.Int("rows", summary.Rows),
				)
				renderSummary(site, summary)
			}

			return nil
		},
	}

	cmd.Flags().Int64Var(&siteID, "site", 0, "audit a single configured site id")

	return cmd
}

// renderSummary prints the aggregated statistics of one site run.
func renderSummary(site domain.Site, summary *pipeline.Summary) {
	stats, ok := summary.Stats[site.ID]
	if !ok {
		fmt.Printf("site %d: no statistics collected\n", site.ID)
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Page", "Device", "Metric", "Min", "Median", "Max"})

	for _, urlKey := range sortedKeys(stats) {
		devices := stats[urlKey]
		for _, device := range sortedKeys(devices) {
			metrics := devices[device]
			for _, metric := range sortedKeys(metrics) {
				stat := metrics[metric]
				t.AppendRow(table.Row{shorten(urlKey), device, metric, stat.Min, stat.Median, stat.Max})
			}
		}
	}

	t.Render()
	fmt.Printf("%d rows persisted, %d result files consumed\n", summary.Rows, summary.FilesConsumed)
}

// sortedKeys returns map keys in lexical order for stable output.
func sortedKeys[V aggregate.URLStats | aggregate.DeviceStats | aggregate.Stat](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// shorten abbreviates a 40-char url hash for display.
func shorten(urlKey string) string {
	const width = 12
	if len(urlKey) <= width {
		return urlKey
	}
	return urlKey[:width] + "…"
}
