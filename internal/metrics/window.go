// Package metrics computes the KPI scalars, category breakdowns and weekday
// distributions over canonical record sets filtered to a date range.
package metrics

import (
	"fmt"
	"time"

	"opsboard/internal/timeparse"
)

// RangeError rejects an invalid caller-supplied date selection. It is
// surfaced, never silently defaulted.
type RangeError struct {
	Start time.Time
	End   time.Time
	Why   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid date range %s..%s: %s",
		e.Start.Format("2006-01-02"), e.End.Format("2006-01-02"), e.Why)
}

// DateRange is an inclusive calendar-date selection.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange normalizes both bounds to midnight and rejects inverted
// ranges.
func NewDateRange(start, end time.Time) (DateRange, error) {
	start = timeparse.DateOnly(start)
	end = timeparse.DateOnly(end)
	if start.IsZero() || end.IsZero() {
		return DateRange{}, &RangeError{Start: start, End: end, Why: "bounds must be set"}
	}
	if start.After(end) {
		return DateRange{}, &RangeError{Start: start, End: end, Why: "start after end"}
	}
	return DateRange{Start: start, End: end}, nil
}

// SpanDays returns the inclusive day count; at least 1 for any valid range.
func (r DateRange) SpanDays() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains reports whether a date falls inside the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	d := timeparse.DateOnly(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days lists every calendar date in the range, in order.
func (r DateRange) Days() []time.Time {
	days := make([]time.Time, 0, r.SpanDays())
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
