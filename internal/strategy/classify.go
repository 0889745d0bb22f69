package strategy

import (
	"math"

	"TrendScope/internal/model"
)

// Thresholds are the percentage-of-range bands used by Classify, narrowest first.
type Thresholds struct {
	Strong float64 `yaml:"strong"`
	Medium float64 `yaml:"medium"`
	Weak   float64 `yaml:"weak"`
}

// DefaultThresholds is the 2% / 5% / 10% banding.
var DefaultThresholds = Thresholds{Strong: 0.02, Medium: 0.05, Weak: 0.10}

// Valid reports whether the bands are positive and increasing.
func (t Thresholds) Valid() bool {
	return t.Strong > 0 && t.Strong <= t.Medium && t.Medium <= t.Weak && t.Weak <= 1
}

// Extremes returns the min, max and latest finite value of series. ok is false
// when series has no finite value.
func Extremes(series []float64) (lo, hi, latest float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
		latest = v
		ok = true
	}
	return lo, hi, latest, ok
}

// Classify labels how close the latest value of series is to the series'
// extremes. Bands near the minimum are checked first; bands near the maximum
// are checked afterwards and take precedence when both match.
func Classify(series []float64, th Thresholds) model.Label {
	lo, hi, value, ok := Extremes(series)
	if !ok {
		return model.LabelNeutral
	}
	rng := hi - lo
	distToMin := math.Abs(value - lo)
	distToMax := math.Abs(value - hi)

	label := model.LabelNeutral
	switch {
	case distToMin <= th.Strong*rng:
		label = model.LabelStrongBuy
	case distToMin <= th.Medium*rng:
		label = model.LabelBuy
	case distToMin <= th.Weak*rng:
		label = model.LabelWeakBuy
	}
	switch {
	case distToMax <= th.Strong*rng:
		label = model.LabelStrongSell
	case distToMax <= th.Medium*rng:
		label = model.LabelSell
	case distToMax <= th.Weak*rng:
		label = model.LabelWeakSell
	}
	return label
}
