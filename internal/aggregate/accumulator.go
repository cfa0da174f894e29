package aggregate

import (
	"math"
	"slices"
)

// Stat is the reduced form of one metric group: the minimum, median and
// maximum over every collected sample, as integers.
type Stat struct {
	Min    int64
	Median int64
	Max    int64
}

// DeviceStats maps metric name → reduced stat.
type DeviceStats map[string]Stat

// URLStats maps device label → metric stats.
type URLStats map[string]DeviceStats

// SiteStats is the three-level grouped result: site → url key → device,
// with per-metric stats at the leaves.
type SiteStats map[int64]map[string]URLStats

// Accumulator collects metric samples grouped by (site, url key, device,
// metric name). Groups are created on first sight and a group's metric
// set grows as new metric names arrive, so files with differing metric
// sets merge cleanly.
type Accumulator struct {
	samples map[int64]map[string]map[string]map[string][]float64
	count   int
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{
		samples: make(map[int64]map[string]map[string]map[string][]float64),
	}
}

// AddSample appends one metric value to its group, in arrival order.
func (a *Accumulator) AddSample(siteID int64, urlKey, device, metric string, value float64) {
	urls, ok := a.samples[siteID]
	if !ok {
		urls = make(map[string]map[string]map[string][]float64)
		a.samples[siteID] = urls
	}

	devices, ok := urls[urlKey]
	if !ok {
		devices = make(map[string]map[string][]float64)
		urls[urlKey] = devices
	}

	metrics, ok := devices[device]
	if !ok {
		metrics = make(map[string][]float64)
		devices[device] = metrics
	}

	metrics[metric] = append(metrics[metric], value)
	a.count++
}

// Len returns the total number of collected samples.
func (a *Accumulator) Len() int {
	return a.count
}

// Reduce collapses every sample group into its Stat. Grouping is
// associative and commutative over appended samples, so the result does
// not depend on file processing order.
func (a *Accumulator) Reduce() SiteStats {
	stats := make(SiteStats, len(a.samples))
	for siteID, urls := range a.samples {
		urlStats := make(map[string]URLStats, len(urls))
		for urlKey, devices := range urls {
			deviceStats := make(URLStats, len(devices))
			for device, metrics := range devices {
				reduced := make(DeviceStats, len(metrics))
				for metric, values := range metrics {
					reduced[metric] = reduce(values)
				}
				deviceStats[device] = reduced
			}
			urlStats[urlKey] = deviceStats
		}
		stats[siteID] = urlStats
	}
	return stats
}

// reduce computes min, rounded median and max over a non-empty sample
// collection.
func reduce(values []float64) Stat {
	return Stat{
		Min:    int64(math.Round(slices.Min(values))),
		Median: int64(math.Round(median(values))),
		Max:    int64(math.Round(slices.Max(values))),
	}
}

// median returns the middle value of the samples: the mean of the two
// middle values for even counts, so it can be fractional before the
// caller rounds it.
func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	i := (n - 1) / 2
	j := i + 1 - n%2

	return (sorted[i] + sorted[j]) / 2
}
