package collector

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func barsFrom(first, n int) []model.Bar {
	bars := make([]model.Bar, n)
	for i := range bars {
		d := first + i
		bars[i] = model.Bar{Date: day0.AddDate(0, 0, d), Close: float64(d), Volume: 100}
	}
	return bars
}

func recordOf(bars []model.Bar) *model.Record {
	rec := model.NewRecord("ABC.ST")
	rec.Bars = append(rec.Bars, bars...)
	return rec
}

func TestMerge_EmptyExistingAdoptsIncoming(t *testing.T) {
	incoming := barsFrom(0, 5)
	got := Merge(model.NewRecord("ABC.ST"), incoming)
	assert.Equal(t, incoming, got.Bars)
	assert.Equal(t, "ABC.ST", got.Ticker)
}

func TestMerge_AppendsOnlyNewBars(t *testing.T) {
	rec := recordOf(barsFrom(0, 10))
	got := Merge(rec, barsFrom(7, 6)) // days 7..12, 10..12 are new
	require.Equal(t, 13, got.Len())
	for i := 1; i < got.Len(); i++ {
		assert.True(t, got.Bars[i].Date.After(got.Bars[i-1].Date))
	}
	assert.Equal(t, 12.0, got.Bars[12].Close)
}

func TestMerge_EmptyIncomingKeepsDerivedColumns(t *testing.T) {
	rec := recordOf(barsFrom(0, 5))
	rec.SetSeries(3, []float64{1, 2, 3})
	want := rec.Clone()

	got := Merge(rec, nil)
	assert.Same(t, rec, got)
	assertSameRecord(t, want, got)

	got = Merge(rec, barsFrom(2, 3)) // nothing after day 4
	assert.Same(t, rec, got)
	assertSameRecord(t, want, got)
}

// assertSameRecord compares records treating NaN slopes as equal.
func assertSameRecord(t *testing.T, want, got *model.Record) {
	t.Helper()
	assert.Equal(t, want.Ticker, got.Ticker)
	assert.Equal(t, want.Bars, got.Bars)
	require.Equal(t, want.Windows(), got.Windows())
	for n, col := range want.Slopes {
		require.Len(t, got.Slopes[n], len(col))
		for i, v := range col {
			if math.IsNaN(v) {
				assert.True(t, math.IsNaN(got.Slopes[n][i]), "slope %d[%d]", n, i)
				continue
			}
			assert.Equal(t, v, got.Slopes[n][i], "slope %d[%d]", n, i)
		}
	}
}

func TestMerge_Idempotent(t *testing.T) {
	base := barsFrom(0, 20)
	batch := barsFrom(15, 10)

	once := Merge(recordOf(base), batch).Clone()
	twice := Merge(Merge(recordOf(base), batch), batch)
	assert.Equal(t, once, twice)
}

func TestMerge_MonotonicSuperset(t *testing.T) {
	rec := recordOf(barsFrom(0, 8))
	orig := rec.Clone()
	got := Merge(rec, barsFrom(3, 9))

	for i, b := range orig.Bars {
		assert.Equal(t, b, got.Bars[i])
	}
	for i := 1; i < got.Len(); i++ {
		assert.True(t, got.Bars[i].Date.After(got.Bars[i-1].Date))
	}
}

func TestMerge_AppendDropsStaleSlopes(t *testing.T) {
	rec := recordOf(barsFrom(0, 5))
	rec.SetSeries(3, []float64{1, 2, 3})
	got := Merge(rec, barsFrom(5, 1))
	assert.Empty(t, got.Slopes)
	assert.Equal(t, 6, got.Len())
}

func TestMerge_CollapsesDuplicateDates(t *testing.T) {
	incoming := barsFrom(5, 3)
	dup := incoming[1]
	dup.Close = 99
	incoming = append(incoming[:2], append([]model.Bar{dup}, incoming[2:]...)...)

	got := Merge(recordOf(barsFrom(0, 5)), incoming)
	require.Equal(t, 8, got.Len())
	assert.Equal(t, 99.0, got.Bars[6].Close)
	for i := 1; i < got.Len(); i++ {
		assert.True(t, got.Bars[i].Date.After(got.Bars[i-1].Date))
	}

	fresh := Merge(model.NewRecord("ABC.ST"), incoming)
	require.Equal(t, 3, fresh.Len())
	assert.Equal(t, 99.0, fresh.Bars[1].Close)
}
