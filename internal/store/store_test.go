package store

import (
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendScope/internal/model"
)

func testRecord() *model.Record {
	rec := model.NewRecord("BOL.ST")
	rec.PriceProxy = model.PriceOHLCAverage
	rec.Anchor = model.AnchorWindow
	start := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		p := 300 + float64(i)
		rec.Bars = append(rec.Bars, model.Bar{
			Date: start.AddDate(0, 0, i), Open: p, High: p + 2, Low: p - 1, Close: p + 0.5,
			AdjClose: p + 0.25, Volume: 1000 * float64(i+1),
		})
	}
	rec.SetSeries(2, []float64{0.1, math.NaN(), -0.3})
	return rec
}

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFileStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	rec := testRecord()
	require.NoError(t, s.Save(rec))

	got, err := s.Load("BOL.ST")
	require.NoError(t, err)
	assert.Equal(t, rec.Ticker, got.Ticker)
	assert.Equal(t, rec.PriceProxy, got.PriceProxy)
	assert.Equal(t, model.AnchorWindow, got.Anchor)
	assert.Equal(t, rec.Bars, got.Bars)
	require.Contains(t, got.Slopes, 2)

	col := got.Slopes[2]
	require.Len(t, col, 4)
	assert.True(t, math.IsNaN(col[0]))
	assert.Equal(t, 0.1, col[1])
	assert.True(t, math.IsNaN(col[2]))
	assert.Equal(t, -0.3, col[3])
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("NOPE.ST")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_LoadMalformed(t *testing.T) {
	s := newTestStore(t)
	cases := map[string]string{
		"GARBAGE.ST": `{not json`,
		"NODATE.ST":  `{"Open":[1]}`,
		"SHORT.ST":   `{"Date":["2024-01-01","2024-01-02"],"Open":[1],"High":[1,2],"Low":[1,2],"Close":[1,2],"Volume":[1,2]}`,
		"ORDER.ST":   `{"Date":["2024-01-02","2024-01-01"],"Open":[1,2],"High":[1,2],"Low":[1,2],"Close":[1,2],"Volume":[1,2]}`,
	}
	for key, body := range cases {
		require.NoError(t, os.WriteFile(s.Path(key), []byte(body), 0o644))
		_, err := s.Load(key)
		assert.ErrorIs(t, err, ErrMalformed, key)
	}
}

func TestDecode_LegacyLayout(t *testing.T) {
	// Older files carry compact slope columns and no adjusted close.
	body := `{
		"Date": ["2021-01-04", "2021-01-05", "2021-01-07"],
		"Open": [10, 11, 12], "High": [11, 12, 13], "Low": [9, 10, 11],
		"Close": [10.5, 11.5, 12.5], "Volume": [100, 200, 300],
		"Slope60": [0.4], "Slope": [1, 2, 3]
	}`
	rec, err := Decode([]byte(body))
	require.NoError(t, err)
	require.Len(t, rec.Bars, 3)
	assert.Equal(t, 12.5, rec.Bars[2].AdjClose)
	assert.Equal(t, time.Date(2021, 1, 7, 0, 0, 0, 0, time.UTC), rec.Bars[2].Date)
	assert.Empty(t, rec.Slopes)
	assert.Empty(t, rec.PriceProxy)
	assert.Empty(t, rec.Anchor)
}

func TestEncode_RejectsMisalignedSlopes(t *testing.T) {
	rec := testRecord()
	rec.Slopes[5] = []float64{1}
	_, err := Encode(rec)
	assert.Error(t, err)
}

func TestFileStore_SaveRequiresKey(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.Save(model.NewRecord("")))
}
