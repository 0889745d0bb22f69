package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"TrendScope/internal/model"
	"TrendScope/internal/report"
)

// FormatReport formats the recommendation table into a Telegram message.
func FormatReport(rows []report.Row, window int, date time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>TrendScope</b> | %s\n\n", date.Format(model.DateFormat)))
	if len(rows) == 0 {
		b.WriteString("No tickers near a trend extreme.")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("<b>Rec%d</b>\n<pre>", window))
	for _, r := range rows {
		b.WriteString(fmt.Sprintf("%-4s %s\n", html.EscapeString(string(r.Label)), html.EscapeString(r.Name)))
	}
	b.WriteString("</pre>")
	return b.String()
}

// FormatSignal formats a single ticker's signal.
func FormatSignal(s model.Signal) string {
	var b strings.Builder
	name := s.Name
	if name == "" {
		name = s.Ticker
	}
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s)\n", html.EscapeString(name), html.EscapeString(s.Ticker)))
	b.WriteString(fmt.Sprintf("Rec%d: %s\n", s.Window, html.EscapeString(string(s.Label))))
	if !math.IsNaN(s.Latest) {
		b.WriteString(fmt.Sprintf("Slope: %+.4f (min %+.4f, max %+.4f)\n", s.Latest, s.Min, s.Max))
	}
	if !s.AsOf.IsZero() {
		b.WriteString(fmt.Sprintf("As of: %s\n", s.AsOf.Format(model.DateFormat)))
	}
	return b.String()
}
