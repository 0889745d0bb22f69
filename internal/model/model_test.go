package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerKeys(t *testing.T) {
	bol := Ticker{Symbol: "BOL", Exchange: "ST", Names: []string{"Boliden"}}
	assert.Equal(t, "BOL.ST", bol.Key())
	assert.Equal(t, "BOL.ST", bol.ProviderSymbol())
	assert.Equal(t, "Boliden", bol.DisplayName())

	aapl := Ticker{Symbol: "AAPL", Exchange: USExchange}
	assert.Equal(t, "AAPL.US", aapl.Key())
	assert.Equal(t, "AAPL", aapl.ProviderSymbol())
	assert.Equal(t, "AAPL.US", aapl.DisplayName())
}

func TestPriceProxy(t *testing.T) {
	b := Bar{Open: 1, High: 4, Low: 1, Close: 2, AdjClose: 1.5}
	assert.Equal(t, 2.0, PriceOHLCAverage.Price(b))
	assert.Equal(t, 1.5, PriceAdjClose.Price(b))
	assert.True(t, PriceAdjClose.Valid())
	assert.False(t, PriceProxy("close").Valid())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-03 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/06/2024")
	assert.Error(t, err)

	assert.Equal(t, d, Day(time.Date(2024, 6, 3, 17, 45, 0, 0, time.UTC)))
}

func TestRecordSeries(t *testing.T) {
	rec := NewRecord("BOL.ST")
	for i := 0; i < 5; i++ {
		rec.Bars = append(rec.Bars, Bar{Date: time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)})
	}
	rec.SetSeries(3, []float64{0.1, 0.2, 0.3})

	col := rec.Slopes[3]
	require.Len(t, col, 5)
	assert.True(t, math.IsNaN(col[0]))
	assert.True(t, math.IsNaN(col[1]))
	assert.Equal(t, 0.1, col[2])
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, rec.Series(3))
	assert.Equal(t, []int{3}, rec.Windows())

	last, ok := rec.LastDate()
	require.True(t, ok)
	assert.Equal(t, 5, last.Day())

	// A column that no longer lines up with the bars is stale.
	rec.Bars = append(rec.Bars, Bar{Date: last.AddDate(0, 0, 1)})
	assert.Nil(t, rec.Series(3))
	assert.Nil(t, rec.Series(60))
}

func TestRecordClone(t *testing.T) {
	rec := NewRecord("BOL.ST")
	rec.Bars = []Bar{{Close: 1}, {Close: 2}}
	rec.SetSeries(2, []float64{0.5})

	c := rec.Clone()
	c.Bars[0].Close = 9
	c.Slopes[2][1] = 9
	assert.Equal(t, 1.0, rec.Bars[0].Close)
	assert.Equal(t, 0.5, rec.Slopes[2][1])

	_, ok := NewRecord("X.ST").LastDate()
	assert.False(t, ok)
	assert.True(t, NewRecord("X.ST").Empty())
}
