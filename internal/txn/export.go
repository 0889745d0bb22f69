package txn

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"TrendScope/internal/model"
)

// Brokerage export column names.
const (
	colDate        = "Datum"
	colKind        = "Typ av transaktion"
	colDescription = "Värdepapper/beskrivning"

	kindBuy  = "Köp"
	kindSell = "Sälj"
)

// Entry is a buy or sell row of a brokerage export.
type Entry struct {
	Date        time.Time
	Side        model.Side
	Description string // security name as the broker spells it
}

// Resolver maps a broker's security name to a ticker.
type Resolver interface {
	FindByName(name string) (model.Ticker, bool)
}

// ReadExport reads a ';'-separated brokerage export and keeps its buy and sell
// rows. Other transaction kinds (dividends, deposits, fees) are dropped.
func ReadExport(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	return readEntries(cr, func(kind string) (model.Side, bool) {
		switch {
		case strings.Contains(kind, kindBuy):
			return model.SideBuy, true
		case strings.Contains(kind, kindSell):
			return model.SideSell, true
		}
		return "", false
	})
}

// ReadState reads the ','-separated consolidated state written by WriteState.
func ReadState(r io.Reader) ([]Entry, error) {
	return readEntries(csv.NewReader(r), func(kind string) (model.Side, bool) {
		s := model.Side(kind)
		return s, s == model.SideBuy || s == model.SideSell
	})
}

func readEntries(cr *csv.Reader, side func(string) (model.Side, bool)) ([]Entry, error) {
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, c := range []string{colDate, colKind, colDescription} {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var out []Entry
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		get := func(c string) string {
			if i := idx[c]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		s, ok := side(get(colKind))
		if !ok {
			continue
		}
		d, err := model.ParseDate(get(colDate))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		out = append(out, Entry{Date: d, Side: s, Description: get(colDescription)})
	}
	return out, nil
}

// WriteState writes entries as a ','-separated CSV with the export's column names.
func WriteState(w io.Writer, entries []Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{colDate, colKind, colDescription}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Date.Format(model.DateFormat), string(e.Side), e.Description}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Consolidate concatenates prior and fresh entries, drops duplicates, sorts by
// date and keeps entries dated on or after since (zero since keeps all).
func Consolidate(prior, fresh []Entry, since time.Time) []Entry {
	seen := map[Entry]bool{}
	var out []Entry
	for _, e := range append(append([]Entry(nil), prior...), fresh...) {
		if seen[e] {
			continue
		}
		seen[e] = true
		if !since.IsZero() && e.Date.Before(since) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// Resolve maps entries to transactions. Entries whose description matches no
// ticker name are returned as unmatched descriptions.
func Resolve(entries []Entry, r Resolver) (txns []model.Transaction, unmatched []string) {
	for _, e := range entries {
		t, ok := r.FindByName(e.Description)
		if !ok {
			unmatched = append(unmatched, e.Description)
			continue
		}
		txns = append(txns, model.Transaction{Date: e.Date, Ticker: t.Key(), Side: e.Side})
	}
	return txns, unmatched
}

// ImportResult summarizes an Import.
type ImportResult struct {
	Entries      int
	Transactions int
	Unmatched    []string
}

// Import merges the brokerage export at exportPath into the state CSV at
// statePath and rewrites the transaction log at logPath from the result.
func Import(exportPath, statePath, logPath string, since time.Time, r Resolver) (*ImportResult, error) {
	ef, err := os.Open(exportPath)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	fresh, err := ReadExport(ef)
	ef.Close()
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", exportPath, err)
	}

	var prior []Entry
	if sf, err := os.Open(statePath); err == nil {
		prior, err = ReadState(sf)
		sf.Close()
		if err != nil {
			return nil, fmt.Errorf("read state %s: %w", statePath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open state: %w", err)
	}

	entries := Consolidate(prior, fresh, since)
	if err := writeFile(statePath, func(w io.Writer) error { return WriteState(w, entries) }); err != nil {
		return nil, fmt.Errorf("write state: %w", err)
	}
	txns, unmatched := Resolve(entries, r)
	if err := writeFile(logPath, func(w io.Writer) error { return Write(w, txns) }); err != nil {
		return nil, fmt.Errorf("write transaction log: %w", err)
	}
	return &ImportResult{Entries: len(entries), Transactions: len(txns), Unmatched: unmatched}, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
