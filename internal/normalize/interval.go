package normalize

import (
	"time"

	"opsboard/internal/timeparse"
)

// Interval is a concrete start/end instant pair on a calendar date.
// End is never before Start.
type Interval struct {
	Start time.Time
	End   time.Time
}

// BuildInterval anchors two clock values on a date. When the end clock
// numerically precedes the start clock the span crosses midnight, and the
// end instant is advanced by exactly one calendar day.
func BuildInterval(date time.Time, start, end timeparse.Clock) Interval {
	s := time.Date(date.Year(), date.Month(), date.Day(), start.Hour, start.Minute, 0, 0, date.Location())
	e := time.Date(date.Year(), date.Month(), date.Day(), end.Hour, end.Minute, 0, 0, date.Location())
	if e.Before(s) {
		e = e.AddDate(0, 0, 1)
	}
	return Interval{Start: s, End: e}
}

// Hours returns the interval duration in hours.
func (iv Interval) Hours() float64 {
	return iv.End.Sub(iv.Start).Hours()
}

// Minutes returns the interval duration in minutes.
func (iv Interval) Minutes() float64 {
	return iv.End.Sub(iv.Start).Minutes()
}
