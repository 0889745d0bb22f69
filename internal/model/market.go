package model

import (
	"fmt"
	"time"
)

// DateFormat is the ISO-8601 calendar date layout used for bar dates.
const DateFormat = "2006-01-02"

// Bar represents one trading day for one symbol.
type Bar struct {
	Date     time.Time // calendar date, UTC midnight
	Open     float64
	High     float64
	Low      float64
	Close    float64
	AdjClose float64
	Volume   float64
}

// PriceProxy selects which price stands for a bar in cost-basis computations.
type PriceProxy string

const (
	PriceOHLCAverage PriceProxy = "ohlc_average"
	PriceAdjClose    PriceProxy = "adjusted_close"
)

// Price returns the proxy price of b.
func (p PriceProxy) Price(b Bar) float64 {
	if p == PriceAdjClose {
		return b.AdjClose
	}
	return (b.Open + b.High + b.Low + b.Close) / 4
}

// Valid reports whether p is a known proxy.
func (p PriceProxy) Valid() bool {
	return p == PriceOHLCAverage || p == PriceAdjClose
}

// CostAnchor selects where the running cost basis starts.
type CostAnchor string

const (
	// AnchorInception accumulates the cost basis from the first stored bar.
	AnchorInception CostAnchor = "inception"
	// AnchorWindow restarts the cost basis at the first bar of every window.
	AnchorWindow CostAnchor = "window"
)

// Valid reports whether a is a known anchor.
func (a CostAnchor) Valid() bool { return a == AnchorInception || a == AnchorWindow }

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date. Longer inputs such as
// "2024-06-03 00:00:00" are accepted and truncated to the date part.
func ParseDate(s string) (time.Time, error) {
	if len(s) > len(DateFormat) {
		s = s[:len(DateFormat)]
	}
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}
