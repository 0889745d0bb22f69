package strategy

import (
	"math"

	"TrendScope/internal/model"
)

// Evaluate classifies the stored slope series of the given window.
func Evaluate(rec *model.Record, window int, th Thresholds) model.Signal {
	sig := model.Signal{
		Ticker: rec.Ticker,
		Window: window,
		Label:  model.LabelNeutral,
		Latest: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	series := rec.Series(window)
	lo, hi, latest, ok := Extremes(series)
	if !ok {
		return sig
	}
	sig.Label = Classify(series, th)
	sig.Latest, sig.Min, sig.Max = latest, lo, hi
	for k := len(series) - 1; k >= 0; k-- {
		if series[k] == latest {
			sig.AsOf = rec.Bars[k+window-1].Date
			break
		}
	}
	return sig
}
