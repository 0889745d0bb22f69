// Package report builds the recommendation table from evaluated signals.
package report

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"TrendScope/internal/model"
)

// Row is one line of the recommendation table.
type Row struct {
	Ticker string
	Name   string
	Label  model.Label
}

// Build keeps the non-neutral signals and orders them by label, then name.
// Ordering is lexicographic on the label text, so "+" sorts before "++"
// and every buy label sorts before every sell label.
func Build(signals []model.Signal) []Row {
	var rows []Row
	for _, s := range signals {
		if s.Label == model.LabelNeutral || s.Label == "" {
			continue
		}
		name := s.Name
		if name == "" {
			name = s.Ticker
		}
		rows = append(rows, Row{Ticker: s.Ticker, Name: name, Label: s.Label})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Label != rows[j].Label {
			return rows[i].Label < rows[j].Label
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// Render writes rows as an aligned two-column table headed "Name" and
// "Rec<window>".
func Render(w io.Writer, rows []Row, window int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\tRec%d\n", window)
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.Name, r.Label)
	}
	return tw.Flush()
}
