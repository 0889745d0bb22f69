package calculator

import (
	"math"

	"TrendScope/internal/model"
)

// CostBasisColumns holds the volume-weighted cost-basis columns of a bar
// sequence, all aligned with the input bars.
type CostBasisColumns struct {
	Price     []float64
	Trade     []float64
	CumVolume []float64
	CumTrade  []float64
	AvgPrice  []float64 // running VWAP since the first bar, NaN while CumVolume is zero
	Surplus   []float64 // running sum of (Price-AvgPrice)*Volume, NaN where AvgPrice is
}

// CostBasis computes the cost-basis columns from bars[0] onward.
func CostBasis(bars []model.Bar, proxy model.PriceProxy) CostBasisColumns {
	n := len(bars)
	c := CostBasisColumns{
		Price:     make([]float64, n),
		Trade:     make([]float64, n),
		CumVolume: make([]float64, n),
		CumTrade:  make([]float64, n),
		AvgPrice:  make([]float64, n),
		Surplus:   make([]float64, n),
	}
	var cumVol, cumTrade, surplus float64
	for i, b := range bars {
		price := proxy.Price(b)
		trade := price * b.Volume
		cumVol += b.Volume
		cumTrade += trade

		c.Price[i] = price
		c.Trade[i] = trade
		c.CumVolume[i] = cumVol
		c.CumTrade[i] = cumTrade

		if cumVol == 0 {
			c.AvgPrice[i] = math.NaN()
			c.Surplus[i] = math.NaN()
			continue
		}
		avg := cumTrade / cumVol
		surplus += (price - avg) * b.Volume
		c.AvgPrice[i] = avg
		c.Surplus[i] = surplus
	}
	return c
}
