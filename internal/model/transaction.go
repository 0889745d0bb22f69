package model

import "time"

// Side is the direction of a recorded trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Transaction is one recorded buy or sell, used to annotate a ticker's series.
type Transaction struct {
	Date   time.Time
	Ticker string
	Side   Side
}
