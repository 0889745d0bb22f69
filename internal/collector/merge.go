package collector

import "TrendScope/internal/model"

// Merge extends existing with the bars of incoming dated after existing's last
// bar. incoming must be ascending; of several bars sharing a date only the
// last is kept. When nothing is new existing is returned unchanged, slope
// columns included. Appending drops the slope columns, which no longer line
// up with the bars.
func Merge(existing *model.Record, incoming []model.Bar) *model.Record {
	if existing == nil {
		existing = model.NewRecord("")
	}
	last, ok := existing.LastDate()
	if !ok {
		if len(incoming) == 0 {
			return existing
		}
		existing.Bars = dedupe(incoming)
		existing.Slopes = map[int][]float64{}
		return existing
	}

	from := len(incoming)
	for i, b := range incoming {
		if b.Date.After(last) {
			from = i
			break
		}
	}
	if from >= len(incoming) {
		return existing
	}
	existing.Bars = append(existing.Bars, dedupe(incoming[from:])...)
	existing.Slopes = map[int][]float64{}
	return existing
}

// dedupe copies ascending bars keeping the last of each run of equal dates.
func dedupe(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if n := len(out); n > 0 && out[n-1].Date.Equal(b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}
