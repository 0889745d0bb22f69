// Package txn reads and writes the transaction log used to annotate ticker
// series, and converts brokerage exports into it.
//
// The log holds one transaction per line: "2024-06-03 BOL.ST BUY".
package txn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"TrendScope/internal/model"
)

// ParseLine parses one "date ticker SIDE" line.
func ParseLine(line string) (model.Transaction, error) {
	f := strings.Fields(line)
	if len(f) != 3 {
		return model.Transaction{}, fmt.Errorf("expected \"date ticker SIDE\", got %q", line)
	}
	d, err := model.ParseDate(f[0])
	if err != nil {
		return model.Transaction{}, err
	}
	side := model.Side(strings.ToUpper(f[2]))
	if side != model.SideBuy && side != model.SideSell {
		return model.Transaction{}, fmt.Errorf("unknown side %q", f[2])
	}
	return model.Transaction{Date: d, Ticker: f[1], Side: side}, nil
}

// Read parses every non-blank line of r.
func Read(r io.Reader) ([]model.Transaction, error) {
	return scan(r, func(string) bool { return true })
}

// ReadMatching parses the lines of r that contain key anywhere in the line.
// The match is a substring match, so keys that are substrings of other keys
// also pick up those lines.
func ReadMatching(r io.Reader, key string) ([]model.Transaction, error) {
	return scan(r, func(line string) bool { return strings.Contains(line, key) })
}

func scan(r io.Reader, keep func(string) bool) ([]model.Transaction, error) {
	var out []model.Transaction
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || !keep(line) {
			continue
		}
		tx, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, tx)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return out, nil
}

// LoadMatching reads the transactions of key from the log at path. A missing
// log has no transactions.
func LoadMatching(path, key string) ([]model.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open transaction log: %w", err)
	}
	defer f.Close()
	return ReadMatching(f, key)
}

// Write renders txns one per line.
func Write(w io.Writer, txns []model.Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txns {
		if _, err := fmt.Fprintf(bw, "%s %s %s\n", tx.Date.Format(model.DateFormat), tx.Ticker, tx.Side); err != nil {
			return err
		}
	}
	return bw.Flush()
}
