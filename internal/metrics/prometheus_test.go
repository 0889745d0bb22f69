package metrics

import (
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWith(reg)

	r.RecordTicker("ok")
	r.RecordTicker("ok")
	r.RecordTicker("failed")
	r.RecordNewBars("BOL.ST", 3)
	r.RecordNewBars("BOL.ST", 0)
	r.RecordError("fetch")
	r.RecordSlope("BOL.ST", 60, 0.25)
	r.RecordSlope("BOL.ST", 60, math.NaN())
	r.RecordRunDuration(2.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.tickers.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.tickers.WithLabelValues("failed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.newBars.WithLabelValues("BOL.ST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errors.WithLabelValues("fetch")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.lastSlope.WithLabelValues("BOL.ST", "60")))

	n, err := testutil.GatherAndCount(reg, "trendscope_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestNewWithTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewWith(reg)
	assert.Panics(t, func() { NewWith(reg) })
}
