package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"TrendScope/internal/model"
)

func decades(final float64) []float64 {
	s := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if final != 100 {
		s = append(s, final)
	}
	return s
}

func TestClassify_Boundaries(t *testing.T) {
	tests := []struct {
		final float64
		label model.Label
	}{
		{100, model.LabelStrongSell},
		{98, model.LabelStrongSell},
		{96, model.LabelSell},
		{95, model.LabelSell},
		{91, model.LabelWeakSell},
		{90, model.LabelWeakSell},
		{52, model.LabelNeutral},
		{11, model.LabelNeutral},
		{10, model.LabelWeakBuy},
		{5, model.LabelBuy},
		{3, model.LabelBuy},
		{2, model.LabelStrongBuy},
		{1, model.LabelStrongBuy},
		{0, model.LabelStrongBuy},
	}
	for _, tt := range tests {
		got := Classify(decades(tt.final), DefaultThresholds)
		assert.Equal(t, tt.label, got, "final %.0f", tt.final)
	}
}

func TestClassify_MaxBandTakesPrecedence(t *testing.T) {
	// Range 100, final 50 with a 60% weak band sits inside both weak bands.
	th := Thresholds{Strong: 0.02, Medium: 0.05, Weak: 0.6}
	assert.Equal(t, model.LabelWeakSell, Classify([]float64{0, 100, 50}, th))

	// A constant series has zero range: both strong bands match.
	assert.Equal(t, model.LabelStrongSell, Classify([]float64{3, 3, 3}, DefaultThresholds))
}

func TestClassify_NaNTolerant(t *testing.T) {
	nan := math.NaN()
	assert.Equal(t, model.LabelNeutral, Classify(nil, DefaultThresholds))
	assert.Equal(t, model.LabelNeutral, Classify([]float64{nan, nan}, DefaultThresholds))
	// Trailing NaN is skipped, the latest finite value is 1.
	assert.Equal(t, model.LabelStrongBuy, Classify([]float64{nan, 0, 100, 1, nan}, DefaultThresholds))
}

func TestThresholds_Valid(t *testing.T) {
	assert.True(t, DefaultThresholds.Valid())
	assert.False(t, Thresholds{Strong: 0.1, Medium: 0.05, Weak: 0.2}.Valid())
	assert.False(t, Thresholds{}.Valid())
}

func TestEvaluate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rec := model.NewRecord("ABC.ST")
	for i := 0; i < 5; i++ {
		rec.Bars = append(rec.Bars, model.Bar{Date: start.AddDate(0, 0, i)})
	}
	rec.SetSeries(3, []float64{0.5, -0.2, -0.19})

	sig := Evaluate(rec, 3, DefaultThresholds)
	assert.Equal(t, "ABC.ST", sig.Ticker)
	assert.Equal(t, model.LabelStrongBuy, sig.Label)
	assert.Equal(t, -0.19, sig.Latest)
	assert.Equal(t, -0.2, sig.Min)
	assert.Equal(t, 0.5, sig.Max)
	assert.Equal(t, start.AddDate(0, 0, 4), sig.AsOf)

	missing := Evaluate(rec, 60, DefaultThresholds)
	assert.Equal(t, model.LabelNeutral, missing.Label)
	assert.True(t, math.IsNaN(missing.Latest))
}
