// Package universe loads the configured exchange/ticker list.
//
// The list is a text file with one ticker per line:
//
//	ST BOL Boliden
//	ST VOLV-B [Volvo B, AB Volvo ser. B]
//	US AAPL Apple
//
// The first field is the exchange suffix, the second the symbol, and the rest
// either a single display name or a bracketed, comma-separated list of names.
package universe

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"TrendScope/internal/model"
)

// ErrUnknownTicker is returned by Lookup for keys outside the universe.
var ErrUnknownTicker = errors.New("unknown ticker")

// Universe is an immutable set of tickers grouped by exchange.
type Universe struct {
	exchanges  []string
	byExchange map[string][]model.Ticker
	byKey      map[string]model.Ticker
}

// Parse reads a ticker list. Blank lines are ignored; duplicate keys keep the
// first entry.
func Parse(r io.Reader) (*Universe, error) {
	u := &Universe{byExchange: map[string][]model.Ticker{}, byKey: map[string]model.Ticker{}}
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		t, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if _, dup := u.byKey[t.Key()]; dup {
			continue
		}
		if _, seen := u.byExchange[t.Exchange]; !seen {
			u.exchanges = append(u.exchanges, t.Exchange)
		}
		u.byExchange[t.Exchange] = append(u.byExchange[t.Exchange], t)
		u.byKey[t.Key()] = t
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ticker list: %w", err)
	}
	return u, nil
}

func parseLine(line string) (model.Ticker, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return model.Ticker{}, fmt.Errorf("expected \"EXCHANGE SYMBOL [NAMES]\", got %q", line)
	}
	t := model.Ticker{Exchange: fields[0], Symbol: fields[1]}
	rest := strings.TrimSpace(line)
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
	rest = strings.TrimSpace(strings.TrimPrefix(rest, fields[1]))
	if rest == "" {
		return t, nil
	}
	if strings.HasPrefix(rest, "[") {
		for _, n := range strings.Split(strings.Trim(rest, "[]"), ",") {
			if n = strings.TrimSpace(n); n != "" {
				t.Names = append(t.Names, n)
			}
		}
		return t, nil
	}
	t.Names = []string{rest}
	return t, nil
}

// Load reads the ticker list at path.
func Load(path string) (*Universe, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker list: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Exchanges returns the exchanges in order of first appearance.
func (u *Universe) Exchanges() []string { return append([]string(nil), u.exchanges...) }

// Tickers returns every ticker, grouped by exchange in file order.
func (u *Universe) Tickers() []model.Ticker {
	var out []model.Ticker
	for _, ex := range u.exchanges {
		out = append(out, u.byExchange[ex]...)
	}
	return out
}

// Exchange returns the tickers listed under ex.
func (u *Universe) Exchange(ex string) []model.Ticker {
	return append([]model.Ticker(nil), u.byExchange[ex]...)
}

// Keys returns every ticker key, in Tickers order.
func (u *Universe) Keys() []string {
	ts := u.Tickers()
	keys := make([]string, len(ts))
	for i, t := range ts {
		keys[i] = t.Key()
	}
	return keys
}

func (u *Universe) Len() int { return len(u.byKey) }

// Lookup finds the ticker with the given "SYMBOL.EXCHANGE" key.
func (u *Universe) Lookup(key string) (model.Ticker, error) {
	t, ok := u.byKey[key]
	if !ok {
		return model.Ticker{}, fmt.Errorf("%s: %w", key, ErrUnknownTicker)
	}
	return t, nil
}

// Complete returns the keys starting with prefix, sorted.
func (u *Universe) Complete(prefix string) []string {
	var out []string
	for key := range u.byKey {
		if strings.HasPrefix(key, prefix) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// FindByName returns the first ticker one of whose names equals name.
func (u *Universe) FindByName(name string) (model.Ticker, bool) {
	for _, t := range u.Tickers() {
		for _, n := range t.Names {
			if n == name {
				return t, true
			}
		}
	}
	return model.Ticker{}, false
}

// SortFile rewrites the ticker list at path with its non-blank lines sorted by
// exchange, then symbol.
func SortFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ticker list: %w", err)
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, strings.TrimRight(l, "\r"))
		}
	}
	sort.SliceStable(lines, func(i, j int) bool {
		a, b := strings.Fields(lines[i]), strings.Fields(lines[j])
		if a[0] != b[0] {
			return a[0] < b[0]
		}
		return field(a, 1) < field(b, 1)
	})
	out := strings.Join(lines, "\n")
	if len(lines) > 0 {
		out += "\n"
	}
	return os.WriteFile(path, []byte(out), 0o644)
}

func field(f []string, i int) string {
	if i < len(f) {
		return f[i]
	}
	return ""
}
