package calculator

import (
	"errors"
	"math"
)

// flatEpsilon is the standard deviation below which a window is treated as flat.
const flatEpsilon = 1e-9

// ErrFlatSeries is returned when values cannot be normalized because their
// standard deviation is zero or undefined.
var ErrFlatSeries = errors.New("series has zero or undefined variance")

// Mean returns the arithmetic mean of values, NaN for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation of values.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	mean := Mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Normalize returns the z-scores of values (mean 0, population sd 1).
func Normalize(values []float64) ([]float64, error) {
	mean := Mean(values)
	sd := StdDev(values)
	if math.IsNaN(sd) || math.IsInf(sd, 0) || sd < flatEpsilon {
		return nil, ErrFlatSeries
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / sd
	}
	return out, nil
}

// LinearFit fits y = slope*x + intercept by ordinary least squares.
func LinearFit(x, y []float64) (slope, intercept float64, err error) {
	if len(x) != len(y) {
		return 0, 0, errors.New("x and y must have the same length")
	}
	if len(x) < 2 {
		return 0, 0, errors.New("linear fit needs at least two points")
	}
	mx, my := Mean(x), Mean(y)
	var sxy, sxx float64
	for i := range x {
		dx := x[i] - mx
		sxy += dx * (y[i] - my)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, 0, errors.New("x has zero variance")
	}
	slope = sxy / sxx
	return slope, my - slope*mx, nil
}
