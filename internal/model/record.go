package model

import (
	"math"
	"sort"
	"time"
)

// Record is the append-only daily series of one ticker plus its derived
// rolling-slope columns. Bars are strictly ascending by date.
//
// Slopes[n] is aligned to Bars: Slopes[n][i] is the slope of the n-bar window
// ending at bar i, NaN when i < n-1 or when the window is degenerate.
//
// PriceProxy and Anchor record the settings the slope columns were computed
// under; both are empty for a record that has never been computed.
type Record struct {
	Ticker     string
	PriceProxy PriceProxy
	Anchor     CostAnchor
	Bars       []Bar
	Slopes     map[int][]float64
}

// NewRecord returns an empty record for the given ticker key.
func NewRecord(key string) *Record {
	return &Record{Ticker: key, Slopes: map[int][]float64{}}
}

func (r *Record) Len() int { return len(r.Bars) }

func (r *Record) Empty() bool { return len(r.Bars) == 0 }

// LastDate returns the date of the final bar.
func (r *Record) LastDate() (time.Time, bool) {
	if len(r.Bars) == 0 {
		return time.Time{}, false
	}
	return r.Bars[len(r.Bars)-1].Date, true
}

// Windows returns the window lengths with a stored slope column, ascending.
func (r *Record) Windows() []int {
	out := make([]int, 0, len(r.Slopes))
	for n := range r.Slopes {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Series returns the compact slope series of window n: one value per full
// window, position k belonging to bar k+n-1. It returns nil when the column is
// missing or stale.
func (r *Record) Series(n int) []float64 {
	col, ok := r.Slopes[n]
	if !ok || n <= 0 || len(col) != len(r.Bars) || len(r.Bars) < n {
		return nil
	}
	out := make([]float64, len(col)-n+1)
	copy(out, col[n-1:])
	return out
}

// SetSeries stores a compact slope series for window n, padding the leading
// n-1 positions with NaN so the column lines up with Bars.
func (r *Record) SetSeries(n int, compact []float64) {
	if r.Slopes == nil {
		r.Slopes = map[int][]float64{}
	}
	col := make([]float64, len(r.Bars))
	for i := range col {
		col[i] = math.NaN()
	}
	for k, v := range compact {
		if i := k + n - 1; i >= 0 && i < len(col) {
			col[i] = v
		}
	}
	r.Slopes[n] = col
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	c := &Record{
		Ticker:     r.Ticker,
		PriceProxy: r.PriceProxy,
		Anchor:     r.Anchor,
		Bars:       append([]Bar(nil), r.Bars...),
		Slopes:     make(map[int][]float64, len(r.Slopes)),
	}
	for n, col := range r.Slopes {
		c.Slopes[n] = append([]float64(nil), col...)
	}
	return c
}
