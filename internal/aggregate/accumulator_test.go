package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/perf-auditor/internal/aggregate"
)

func TestAccumulator_Reduce_OddCount(t *testing.T) {
	acc := aggregate.NewAccumulator()
	for _, v := range []float64{3, 1, 2} {
		acc.AddSample(1, "hash", "desktop", "speedIndex", v)
	}

	stats := acc.Reduce()
	stat := stats[1]["hash"]["desktop"]["speedIndex"]

	assert.Equal(t, aggregate.Stat{Min: 1, Median: 2, Max: 3}, stat)
}

func TestAccumulator_Reduce_EvenCount(t *testing.T) {
	acc := aggregate.NewAccumulator()
	for _, v := range []float64{4, 1, 3, 2} {
		acc.AddSample(1, "hash", "desktop", "interactive", v)
	}

	// The median of an even count is the mean of the two middle
	// values, 2.5 here, rounded half away from zero.
	stat := acc.Reduce()[1]["hash"]["desktop"]["interactive"]
	assert.Equal(t, aggregate.Stat{Min: 1, Median: 3, Max: 4}, stat)
}

func TestAccumulator_Reduce_SingleSample(t *testing.T) {
	acc := aggregate.NewAccumulator()
	acc.AddSample(1, "hash", "mobile", "score", 87)

	stat := acc.Reduce()[1]["hash"]["mobile"]["score"]
	assert.Equal(t, aggregate.Stat{Min: 87, Median: 87, Max: 87}, stat)
}

func TestAccumulator_Reduce_OrderIndependent(t *testing.T) {
	forward := aggregate.NewAccumulator()
	backward := aggregate.NewAccumulator()

	values := []float64{1200.4, 980.1, 1500.9, 1100.0, 1343.2}
	for i, v := range values {
		forward.AddSample(1, "hash", "desktop", "firstContentfulPaint", v)
		backward.AddSample(1, "hash", "desktop", "firstContentfulPaint", values[len(values)-1-i])
	}

	assert.Equal(t, forward.Reduce(), backward.Reduce())
}

func TestAccumulator_GroupsAreIndependent(t *testing.T) {
	acc := aggregate.NewAccumulator()
	acc.AddSample(1, "hash-a", "desktop", "speedIndex", 100)
	acc.AddSample(1, "hash-a", "mobile", "speedIndex", 300)
	acc.AddSample(1, "hash-b", "desktop", "speedIndex", 200)
	acc.AddSample(2, "hash-a", "desktop", "speedIndex", 400)

	require.Equal(t, 4, acc.Len())
	stats := acc.Reduce()

	assert.Equal(t, int64(100), stats[1]["hash-a"]["desktop"]["speedIndex"].Median)
	assert.Equal(t, int64(300), stats[1]["hash-a"]["mobile"]["speedIndex"].Median)
	assert.Equal(t, int64(200), stats[1]["hash-b"]["desktop"]["speedIndex"].Median)
	assert.Equal(t, int64(400), stats[2]["hash-a"]["desktop"]["speedIndex"].Median)
}

func TestAccumulator_MetricSetGrows(t *testing.T) {
	acc := aggregate.NewAccumulator()
	acc.AddSample(1, "hash", "desktop", "speedIndex", 10)
	acc.AddSample(1, "hash", "desktop", "totalBlockingTime", 20)

	metrics := acc.Reduce()[1]["hash"]["desktop"]
	assert.Len(t, metrics, 2)
}
