package model

import "time"

// Label is the proximity-to-extremes recommendation bucket.
type Label string

const (
	LabelStrongBuy  Label = "+++"
	LabelBuy        Label = "++"
	LabelWeakBuy    Label = "+"
	LabelWeakSell   Label = "-"
	LabelSell       Label = "--"
	LabelStrongSell Label = "---"
	LabelNeutral    Label = "neutral"
)

// Signal is the classified state of one ticker's rolling-slope series.
type Signal struct {
	Ticker string
	Name   string
	Window int
	Label  Label
	Latest float64 // latest finite slope
	Min    float64
	Max    float64
	AsOf   time.Time // date of the bar the latest slope belongs to
}
