package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"TrendScope/internal/model"
)

// MockFetcher returns fixed per-symbol data for development and testing.
type MockFetcher struct {
	Bars  map[string][]model.Bar
	Errs  map[string]error
	Calls []string

	mu sync.Mutex
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, symbol string, start, end time.Time) ([]model.Bar, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, symbol)
	if err := m.Errs[symbol]; err != nil {
		return nil, err
	}
	var out []model.Bar
	for _, b := range m.Bars[symbol] {
		if !b.Date.Before(start) && b.Date.Before(end) {
			out = append(out, b)
		}
	}
	return out, nil
}

// Collector fetches the bars a record is missing and merges them in.
type Collector struct {
	Fetcher Fetcher
	Begin   time.Time // first date requested for a ticker with no history
	Now     func() time.Time
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, begin time.Time) *Collector {
	return &Collector{Fetcher: fetcher, Begin: model.Day(begin), Now: time.Now}
}

// Window returns the fetch range for rec: from the day after its last bar (or
// Begin) up to today, exclusive.
func (c *Collector) Window(rec *model.Record) (start, end time.Time) {
	start = c.Begin
	if last, ok := rec.LastDate(); ok {
		start = last.AddDate(0, 0, 1)
	}
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return start, model.Day(now())
}

// Update fetches the missing bars of ticker and merges them into rec.
// It returns the merged record and the number of appended bars. An empty
// provider response is not an error.
func (c *Collector) Update(ctx context.Context, rec *model.Record, ticker model.Ticker) (*model.Record, int, error) {
	start, end := c.Window(rec)
	if !start.Before(end) {
		return rec, 0, nil
	}
	bars, err := c.Fetcher.FetchDailyBars(ctx, ticker.ProviderSymbol(), start, end)
	if errors.Is(err, ErrNoData) {
		log.Info().Str("ticker", ticker.Key()).Time("start", start).Time("end", end).Msg("no new bars from provider")
		return rec, 0, nil
	}
	if err != nil {
		return rec, 0, fmt.Errorf("fetch %s: %w", ticker.Key(), err)
	}
	before := rec.Len()
	rec = Merge(rec, bars)
	return rec, rec.Len() - before, nil
}
