// Package store persists ticker records as one column-oriented JSON file per ticker.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"TrendScope/internal/model"
)

var (
	// ErrNotFound is returned when no record file exists for a ticker.
	ErrNotFound = errors.New("record not found")
	// ErrMalformed is returned when a record file cannot be decoded.
	ErrMalformed = errors.New("malformed record")
)

const (
	colDate     = "Date"
	colOpen     = "Open"
	colHigh     = "High"
	colLow      = "Low"
	colClose    = "Close"
	colAdjClose = "Adj Close"
	colVolume   = "Volume"
	colProxy    = "PriceProxy"
	colAnchor   = "CostBasisAnchor"
	slopePrefix = "Slope"
)

// FileStore keeps records under Dir as <key>.json.
type FileStore struct {
	Dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

// Path returns the file holding the record of key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.Dir, key+".json")
}

// Load reads the record of key.
func (s *FileStore) Load(key string) (*model.Record, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("read record %s: %w", key, err)
	}
	rec, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	rec.Ticker = key
	return rec, nil
}

// Save overwrites the record file of rec.Ticker.
func (s *FileStore) Save(rec *model.Record) error {
	if rec.Ticker == "" {
		return errors.New("save record: empty ticker key")
	}
	data, err := Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", rec.Ticker, err)
	}
	if err := os.WriteFile(s.Path(rec.Ticker), data, 0o644); err != nil {
		return fmt.Errorf("write record %s: %w", rec.Ticker, err)
	}
	return nil
}

// column is a float column written with null in place of NaN and ±Inf.
type column []float64

func (c column) MarshalJSON() ([]byte, error) {
	out := make([]*float64, len(c))
	for i := range c {
		if !math.IsNaN(c[i]) && !math.IsInf(c[i], 0) {
			out[i] = &c[i]
		}
	}
	return json.Marshal(out)
}

func (c *column) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(column, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
		} else {
			out[i] = *v
		}
	}
	*c = out
	return nil
}

// Encode renders rec as a column-oriented JSON object. Every column has one
// entry per bar; slope columns are named Slope<window>.
func Encode(rec *model.Record) ([]byte, error) {
	n := len(rec.Bars)
	dates := make([]string, n)
	open, high, low, closes, adj, vol := make(column, n), make(column, n), make(column, n),
		make(column, n), make(column, n), make(column, n)
	for i, b := range rec.Bars {
		dates[i] = b.Date.Format(model.DateFormat)
		open[i], high[i], low[i], closes[i] = b.Open, b.High, b.Low, b.Close
		adj[i], vol[i] = b.AdjClose, b.Volume
	}
	doc := map[string]any{
		colDate:     dates,
		colOpen:     open,
		colHigh:     high,
		colLow:      low,
		colClose:    closes,
		colAdjClose: adj,
		colVolume:   vol,
	}
	if rec.PriceProxy != "" {
		doc[colProxy] = rec.PriceProxy
	}
	if rec.Anchor != "" {
		doc[colAnchor] = rec.Anchor
	}
	for w, col := range rec.Slopes {
		if len(col) != n {
			return nil, fmt.Errorf("slope column %d has %d rows, record has %d", w, len(col), n)
		}
		doc[slopePrefix+strconv.Itoa(w)] = column(col)
	}
	return json.MarshalIndent(doc, "", "    ")
}

// Decode parses a record written by Encode. Slope columns whose length does not
// match the bars are dropped since they are recomputed on every run.
func Decode(data []byte) (*model.Record, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	rawDates, ok := doc[colDate]
	if !ok {
		return nil, fmt.Errorf("%w: missing %s column", ErrMalformed, colDate)
	}
	var dates []string
	if err := json.Unmarshal(rawDates, &dates); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, colDate, err)
	}
	n := len(dates)

	read := func(name string, required bool) (column, error) {
		raw, ok := doc[name]
		if !ok {
			if required {
				return nil, fmt.Errorf("%w: missing %s column", ErrMalformed, name)
			}
			return nil, nil
		}
		var c column
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
		}
		if len(c) != n {
			return nil, fmt.Errorf("%w: %s has %d rows, %s has %d", ErrMalformed, name, len(c), colDate, n)
		}
		return c, nil
	}

	cols := map[string]column{}
	for _, name := range []string{colOpen, colHigh, colLow, colClose, colVolume} {
		c, err := read(name, true)
		if err != nil {
			return nil, err
		}
		cols[name] = c
	}
	adj, err := read(colAdjClose, false)
	if err != nil {
		return nil, err
	}

	rec := model.NewRecord("")
	rec.Bars = make([]model.Bar, n)
	for i, ds := range dates {
		d, err := model.ParseDate(ds)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrMalformed, i, err)
		}
		if i > 0 && !d.After(rec.Bars[i-1].Date) {
			return nil, fmt.Errorf("%w: row %d: dates not strictly ascending", ErrMalformed, i)
		}
		b := model.Bar{
			Date:   d,
			Open:   cols[colOpen][i],
			High:   cols[colHigh][i],
			Low:    cols[colLow][i],
			Close:  cols[colClose][i],
			Volume: cols[colVolume][i],
		}
		b.AdjClose = b.Close
		if adj != nil {
			b.AdjClose = adj[i]
		}
		rec.Bars[i] = b
	}

	if raw, ok := doc[colProxy]; ok {
		var p model.PriceProxy
		if err := json.Unmarshal(raw, &p); err == nil && p.Valid() {
			rec.PriceProxy = p
		}
	}
	if raw, ok := doc[colAnchor]; ok {
		var a model.CostAnchor
		if err := json.Unmarshal(raw, &a); err == nil && a.Valid() {
			rec.Anchor = a
		}
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		w, err := strconv.Atoi(strings.TrimPrefix(k, slopePrefix))
		if !strings.HasPrefix(k, slopePrefix) || err != nil || w <= 0 {
			continue
		}
		var c column
		if err := json.Unmarshal(doc[k], &c); err != nil || len(c) != n {
			continue
		}
		rec.Slopes[w] = c
	}
	return rec, nil
}
