// Package analyzer runs the per-ticker pipeline: fetch the missing bars,
// merge, recompute the rolling slopes, persist and classify.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/calculator"
	"TrendScope/internal/collector"
	"TrendScope/internal/model"
	"TrendScope/internal/store"
	"TrendScope/internal/strategy"
)

// Store loads and persists ticker records.
type Store interface {
	Load(key string) (*model.Record, error)
	Save(rec *model.Record) error
}

// Metrics receives per-ticker run statistics.
type Metrics interface {
	RecordTicker(status string)
	RecordNewBars(ticker string, n int)
	RecordError(kind string)
	RecordSlope(ticker string, window int, slope float64)
}

type nopMetrics struct{}

func (nopMetrics) RecordTicker(string)              {}
func (nopMetrics) RecordNewBars(string, int)        {}
func (nopMetrics) RecordError(string)               {}
func (nopMetrics) RecordSlope(string, int, float64) {}

// Options configures the computed windows and the classification.
type Options struct {
	Windows      []int
	SignalWindow int
	Slope        calculator.SlopeOptions
	Thresholds   strategy.Thresholds
	Workers      int
}

// DefaultOptions computes the 60, 120 and 360 bar windows and classifies the 60.
var DefaultOptions = Options{
	Windows:      []int{60, 120, 360},
	SignalWindow: 60,
	Slope:        calculator.DefaultSlopeOptions,
	Thresholds:   strategy.DefaultThresholds,
	Workers:      1,
}

// Result is the outcome for one ticker. Signal is set even when Err is,
// computed from whatever history is available.
type Result struct {
	Ticker  model.Ticker
	Signal  model.Signal
	NewBars int
	Err     error
}

// Analyzer wires the collector, the store and the signal engine together.
type Analyzer struct {
	Store     Store
	Collector *collector.Collector
	Metrics   Metrics
	Options   Options
}

// New creates an Analyzer. A nil metrics sink discards statistics.
func New(st Store, col *collector.Collector, m Metrics, opts Options) *Analyzer {
	if m == nil {
		m = nopMetrics{}
	}
	if opts.SignalWindow == 0 {
		opts.SignalWindow = DefaultOptions.SignalWindow
	}
	if len(opts.Windows) == 0 {
		opts.Windows = DefaultOptions.Windows
	}
	if opts.Thresholds == (strategy.Thresholds{}) {
		opts.Thresholds = DefaultOptions.Thresholds
	}
	return &Analyzer{Store: st, Collector: col, Metrics: m, Options: opts}
}

// Run updates and classifies every ticker. Failures are isolated to their
// ticker and reported in its Result. The returned error is non-nil only when
// ctx is cancelled; results for tickers processed before that are returned.
func (a *Analyzer) Run(ctx context.Context, tickers []model.Ticker) ([]Result, error) {
	return a.each(ctx, tickers, a.update)
}

// Evaluate classifies every ticker from its stored record without fetching.
func (a *Analyzer) Evaluate(ctx context.Context, tickers []model.Ticker) ([]Result, error) {
	return a.each(ctx, tickers, func(_ context.Context, t model.Ticker) Result {
		rec := a.load(t)
		if a.stale(rec) {
			if err := a.Recompute(rec); err != nil {
				return Result{Ticker: t, Signal: a.classify(rec, t), Err: err}
			}
		}
		return Result{Ticker: t, Signal: a.classify(rec, t)}
	})
}

func (a *Analyzer) each(ctx context.Context, tickers []model.Ticker, fn func(context.Context, model.Ticker) Result) ([]Result, error) {
	results := make([]Result, len(tickers))
	done := make([]bool, len(tickers))

	workers := a.Options.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(tickers) {
		workers = len(tickers)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = fn(ctx, tickers[i])
				done[i] = true
			}
		}()
	}

	var err error
feed:
	for i := range tickers {
		if err = ctx.Err(); err != nil {
			break
		}
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err == nil {
		return results, nil
	}
	out := results[:0]
	for i, r := range results {
		if done[i] {
			out = append(out, r)
		}
	}
	return out, err
}

func (a *Analyzer) update(ctx context.Context, t model.Ticker) Result {
	key := t.Key()
	res := Result{Ticker: t}
	rec := a.load(t)

	rec, n, err := a.Collector.Update(ctx, rec, t)
	if err != nil {
		// The stored record stays as it was; classify what we have.
		log.Warn().Err(err).Str("ticker", key).Msg("fetch failed")
		a.Metrics.RecordError("fetch")
		a.Metrics.RecordTicker("failed")
		if rerr := a.Recompute(rec); rerr != nil {
			log.Warn().Err(rerr).Str("ticker", key).Msg("recompute slopes")
		}
		res.Err = err
		res.Signal = a.classify(rec, t)
		return res
	}
	res.NewBars = n
	a.Metrics.RecordNewBars(key, n)

	if err := a.Recompute(rec); err != nil {
		res.Err = err
		a.Metrics.RecordError("compute")
	} else if err := a.Store.Save(rec); err != nil {
		log.Error().Err(err).Str("ticker", key).Msg("save record")
		a.Metrics.RecordError("save")
		res.Err = fmt.Errorf("save %s: %w", key, err)
	}

	res.Signal = a.classify(rec, t)
	status := "ok"
	if res.Err != nil {
		status = "failed"
	}
	a.Metrics.RecordTicker(status)
	log.Debug().Str("ticker", key).Int("new_bars", n).Int("bars", rec.Len()).Str("label", string(res.Signal.Label)).Msg("ticker updated")
	return res
}

// load returns the stored record of t, or an empty record when there is none
// or it cannot be read.
func (a *Analyzer) load(t model.Ticker) *model.Record {
	key := t.Key()
	rec, err := a.Store.Load(key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn().Err(err).Str("ticker", key).Msg("discarding unreadable record")
		}
		return model.NewRecord(key)
	}
	return rec
}

// Recompute replaces every slope column of rec with a fresh fit of each
// configured window.
func (a *Analyzer) Recompute(rec *model.Record) error {
	rec.Slopes = make(map[int][]float64, len(a.Options.Windows))
	for _, n := range a.Options.Windows {
		fits, err := calculator.RollingSlope(rec.Bars, n, a.Options.Slope)
		if err != nil {
			return fmt.Errorf("window %d: %w", n, err)
		}
		rec.SetSeries(n, calculator.Slopes(fits))
	}
	rec.PriceProxy = a.proxy()
	rec.Anchor = a.anchor()
	return nil
}

func (a *Analyzer) proxy() model.PriceProxy {
	if a.Options.Slope.Proxy == "" {
		return model.PriceOHLCAverage
	}
	return a.Options.Slope.Proxy
}

func (a *Analyzer) anchor() model.CostAnchor {
	if a.Options.Slope.Anchor == model.AnchorWindow {
		return model.AnchorWindow
	}
	return model.AnchorInception
}

// stale reports whether the stored slope columns of rec cannot be used as is.
func (a *Analyzer) stale(rec *model.Record) bool {
	if rec.Empty() {
		return false
	}
	if rec.PriceProxy != a.proxy() || rec.Anchor != a.anchor() {
		return true
	}
	for _, n := range a.Options.Windows {
		if rec.Len() >= n && rec.Series(n) == nil {
			return true
		}
	}
	return false
}

func (a *Analyzer) classify(rec *model.Record, t model.Ticker) model.Signal {
	sig := strategy.Evaluate(rec, a.Options.SignalWindow, a.Options.Thresholds)
	sig.Ticker = t.Key()
	sig.Name = t.DisplayName()
	for _, n := range a.Options.Windows {
		if s := rec.Series(n); len(s) > 0 {
			a.Metrics.RecordSlope(sig.Ticker, n, s[len(s)-1])
		}
	}
	return sig
}

// Signals extracts the signals of results.
func Signals(results []Result) []model.Signal {
	out := make([]model.Signal, len(results))
	for i, r := range results {
		out[i] = r.Signal
	}
	return out
}

// Failures counts the results that carry an error.
func Failures(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
