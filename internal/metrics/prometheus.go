// Package metrics exposes analysis run statistics to Prometheus.
package metrics

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements analyzer.Metrics using Prometheus.
type Recorder struct {
	tickers   *prometheus.CounterVec
	newBars   *prometheus.CounterVec
	errors    *prometheus.CounterVec
	lastSlope *prometheus.GaugeVec
	runs      prometheus.Histogram
}

// New creates a recorder registered with the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder registered with reg.
func NewWith(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		tickers: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscope_tickers_processed_total",
				Help: "Tickers processed by analysis runs, by outcome",
			},
			[]string{"status"},
		),
		newBars: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscope_new_bars_total",
				Help: "Daily bars appended to stored records",
			},
			[]string{"ticker"},
		),
		errors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trendscope_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSlope: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "trendscope_last_slope",
				Help: "Latest rolling trend slope of a ticker per window",
			},
			[]string{"ticker", "window"},
		),
		runs: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "trendscope_run_duration_seconds",
				Help:    "Duration of analysis runs in seconds",
				Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
			},
		),
	}
}

// RecordTicker counts a processed ticker with status "ok" or "failed".
func (r *Recorder) RecordTicker(status string) {
	r.tickers.WithLabelValues(status).Inc()
}

// RecordNewBars counts bars appended for ticker.
func (r *Recorder) RecordNewBars(ticker string, n int) {
	if n > 0 {
		r.newBars.WithLabelValues(ticker).Add(float64(n))
	}
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errors.WithLabelValues(kind).Inc()
}

// RecordSlope records the latest slope of ticker for window. Undefined
// slopes leave the gauge untouched.
func (r *Recorder) RecordSlope(ticker string, window int, slope float64) {
	if math.IsNaN(slope) {
		return
	}
	r.lastSlope.WithLabelValues(ticker, strconv.Itoa(window)).Set(slope)
}

// RecordRunDuration records how long a run took in seconds.
func (r *Recorder) RecordRunDuration(seconds float64) {
	r.runs.Observe(seconds)
}
