package calculator

import (
	"fmt"
	"math"

	talib "github.com/markcheno/go-talib"

	"TrendScope/internal/model"
)

// Anchor selects where the running cost basis starts.
type Anchor = model.CostAnchor

const (
	AnchorInception = model.AnchorInception
	AnchorWindow    = model.AnchorWindow
)

// SlopeOptions are the variation points of the rolling regression.
type SlopeOptions struct {
	Proxy  model.PriceProxy
	Anchor Anchor
}

// DefaultSlopeOptions uses the OHLC average and an inception-anchored cost basis.
var DefaultSlopeOptions = SlopeOptions{Proxy: model.PriceOHLCAverage, Anchor: AnchorInception}

// Fit is the OLS fit of the normalized surplus over bars [Start, End].
type Fit struct {
	Start     int
	End       int // index of the last bar in the window
	Slope     float64
	Intercept float64
}

// Defined reports whether the window produced a usable slope.
func (f Fit) Defined() bool { return !math.IsNaN(f.Slope) }

// RollingSlope fits one regression per full window of n bars. For every start
// s with s+n <= len(bars) the window's surplus is z-scored within the window
// and regressed against the bar index s..s+n-1. Degenerate windows yield NaN.
func RollingSlope(bars []model.Bar, n int, opts SlopeOptions) ([]Fit, error) {
	if n < 2 {
		return nil, fmt.Errorf("window length must be at least 2, got %d", n)
	}
	if len(bars) < n {
		return []Fit{}, nil
	}
	if opts.Proxy == "" {
		opts.Proxy = model.PriceOHLCAverage
	}
	if opts.Anchor != AnchorWindow {
		return inceptionSlopes(CostBasis(bars, opts.Proxy).Surplus, n), nil
	}

	x := make([]float64, n)
	fits := make([]Fit, 0, len(bars)-n+1)
	for s := 0; s+n <= len(bars); s++ {
		for i := range x {
			x[i] = float64(s + i)
		}
		fits = append(fits, fitWindow(x, CostBasis(bars[s:s+n], opts.Proxy).Surplus, s))
	}
	return fits, nil
}

// inceptionSlopes fits every n-bar window of one running surplus series.
// z-scoring divides the raw slope by the window's sd and centres the
// intercept on the window's mid index.
func inceptionSlopes(surplus []float64, n int) []Fit {
	raw := talib.LinearRegSlope(surplus, n)
	mid := float64(n-1) / 2
	fits := make([]Fit, 0, len(surplus)-n+1)
	for s := 0; s+n <= len(surplus); s++ {
		end := s + n - 1
		f := Fit{Start: s, End: end, Slope: math.NaN(), Intercept: math.NaN()}
		sd := StdDev(surplus[s : end+1])
		if !math.IsNaN(sd) && !math.IsInf(sd, 0) && sd >= flatEpsilon && !math.IsNaN(raw[end]) {
			f.Slope = raw[end] / sd
			f.Intercept = -f.Slope * (float64(s) + mid)
		}
		fits = append(fits, f)
	}
	return fits
}

func fitWindow(x, surplus []float64, start int) Fit {
	f := Fit{Start: start, End: start + len(x) - 1, Slope: math.NaN(), Intercept: math.NaN()}
	y, err := Normalize(surplus)
	if err != nil {
		return f
	}
	slope, intercept, err := LinearFit(x, y)
	if err != nil {
		return f
	}
	f.Slope, f.Intercept = slope, intercept
	return f
}

// Slopes extracts the slope of every fit.
func Slopes(fits []Fit) []float64 {
	out := make([]float64, len(fits))
	for i, f := range fits {
		out[i] = f.Slope
	}
	return out
}
