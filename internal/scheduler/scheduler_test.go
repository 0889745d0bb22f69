package scheduler

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/analyzer"
	"TrendScope/internal/collector"
	"TrendScope/internal/model"
	"TrendScope/internal/recorder"
	"TrendScope/internal/store"
	"TrendScope/internal/universe"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type captured struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captured) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

type durations []float64

func (d *durations) RecordRunDuration(s float64) { *d = append(*d, s) }

func rising(n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		p := 50 + float64(i)
		bars[i] = model.Bar{Date: day0.AddDate(0, 0, i), Open: p, High: p, Low: p, Close: p, AdjClose: p, Volume: 500}
	}
	return bars
}

func newScheduler(t *testing.T) (*Scheduler, *captured, *recorder.SQLiteRecorder, *collector.MockFetcher) {
	t.Helper()
	dir := t.TempDir()
	u, err := universe.Parse(strings.NewReader("ST ALF Alpha\nST BET Beta\n"))
	require.NoError(t, err)
	st, err := store.NewFileStore(dir)
	require.NoError(t, err)

	mock := &collector.MockFetcher{Bars: map[string][]model.Bar{"ALF.ST": rising(40), "BET.ST": rising(40)}}
	col := collector.NewCollector(mock, day0)
	col.Now = func() time.Time { return day0.AddDate(0, 0, 40) }
	opts := analyzer.DefaultOptions
	opts.Windows = []int{10}
	opts.SignalWindow = 10
	an := analyzer.New(st, col, nil, opts)

	rec, err := recorder.NewSQLiteRecorder(dir + "/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	out := &captured{}
	s := NewScheduler(context.Background(), an, u, out, rec)
	return s, out, rec, mock
}

func TestRunNow(t *testing.T) {
	s, out, rec, _ := newScheduler(t)
	var d durations
	s.Durations = &d

	run, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, 2, run.Tickers)
	assert.Equal(t, 0, run.Failures)
	require.Len(t, run.Signals, 2)
	assert.Len(t, d, 1)

	require.Len(t, out.msgs, 1)
	assert.Contains(t, out.msgs[0], "Rec10")
	assert.Contains(t, out.msgs[0], "Alpha")

	hist, err := rec.History("ALF.ST", 0)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, run.ID, hist[0].RunID)
}

func TestRunNowReportsFailures(t *testing.T) {
	s, out, _, mock := newScheduler(t)
	mock.Errs = map[string]error{"BET.ST": assert.AnError}

	run, err := s.RunNow()
	require.NoError(t, err)
	assert.Equal(t, 1, run.Failures)
	require.Len(t, out.msgs, 1)
	assert.Contains(t, out.msgs[0], "1 of 2 tickers failed")
}

func TestRunNowSkipsWhileRunning(t *testing.T) {
	s, out, _, mock := newScheduler(t)
	s.running.Store(true)

	_, err := s.RunNow()
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Empty(t, out.msgs)
	assert.Empty(t, mock.Calls)

	s.running.Store(false)
	_, err = s.RunNow()
	assert.NoError(t, err)
}

func TestRunNowCancelled(t *testing.T) {
	s, out, _, _ := newScheduler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Ctx = ctx

	_, err := s.RunNow()
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, out.msgs)
}

func TestRegister(t *testing.T) {
	s, _, _, _ := newScheduler(t)
	require.NoError(t, s.Register(""))
	assert.Len(t, s.Cron.Entries(), 1)
	assert.Error(t, s.Register("every full moon"))
}

func TestHandleCommand(t *testing.T) {
	s, out, _, _ := newScheduler(t)
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/help"), "/report")

	_, err := s.RunNow()
	require.NoError(t, err)

	assert.Contains(t, s.HandleCommand(ctx, "/report"), "Rec10")
	assert.Contains(t, s.HandleCommand(ctx, "/signal ALF.ST"), "Alpha")
	assert.Contains(t, s.HandleCommand(ctx, "/signal NOPE.ST"), "❌")
	assert.Contains(t, s.HandleCommand(ctx, "/signal"), "usage")

	assert.Equal(t, "", s.HandleCommand(ctx, "/run"))
	assert.Len(t, out.msgs, 2)
}
