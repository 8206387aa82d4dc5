// Package correlate joins the roster and dispatch record sets by day and by
// time-of-day overlap.
package correlate

import (
	"slices"
	"time"

	"opsboard/internal/metrics"
	"opsboard/internal/normalize"
)

// MaxReliableSpanDays is the advisory span ceiling for the daily join.
// The engine still computes beyond it; results are flagged Unreliable and
// callers decide whether to show them.
const MaxReliableSpanDays = 31

// DailyJoin counts both record kinds on one calendar date. Ratio is
// undefined (JSON null) when the day has no shifts; it is never coerced to
// zero or infinity.
type DailyJoin struct {
	Date         time.Time      `json:"date"`
	ShiftCount   int            `json:"shift_count"`
	ServiceCount int            `json:"service_count"`
	Ratio        metrics.Scalar `json:"ratio"`
}

// Result is the full correlation report for one date selection.
type Result struct {
	Days            []DailyJoin `json:"days"`
	MatchedServices int         `json:"matched_services"`
	TotalServices   int         `json:"total_services"`
	CoveragePct     float64     `json:"coverage_pct"`
	SpanDays        int         `json:"span_days"`
	Unreliable      bool        `json:"unreliable"`
}

// Correlate builds the per-day join and the overlap coverage for record
// sets already filtered to rng.
func Correlate(shifts []normalize.ShiftRecord, services []normalize.ServiceRecord, rng metrics.DateRange) Result {
	span := rng.SpanDays()
	result := Result{
		Days:       buildDailyJoin(shifts, services),
		SpanDays:   span,
		Unreliable: span > MaxReliableSpanDays,
	}

	result.MatchedServices, result.TotalServices = matchCoverage(shifts, services)
	// Coverage is a summary statistic callers always expect a number for:
	// an empty selection reports 0, unlike the per-day ratio.
	if result.TotalServices > 0 {
		result.CoveragePct = float64(result.MatchedServices) / float64(result.TotalServices) * 100
	}

	return result
}

// buildDailyJoin unions the dates present in either set; a date carried by
// only one side is zero-filled on the other, never dropped.
func buildDailyJoin(shifts []normalize.ShiftRecord, services []normalize.ServiceRecord) []DailyJoin {
	type counts struct{ shifts, services int }
	byDate := make(map[time.Time]*counts)

	bucket := func(date time.Time) *counts {
		c, ok := byDate[date]
		if !ok {
			c = &counts{}
			byDate[date] = c
		}
		return c
	}

	for _, s := range shifts {
		bucket(s.Date).shifts++
	}
	for _, s := range services {
		bucket(s.Date).services++
	}

	days := make([]DailyJoin, 0, len(byDate))
	for date, c := range byDate {
		join := DailyJoin{Date: date, ShiftCount: c.shifts, ServiceCount: c.services}
		if c.shifts > 0 {
			join.Ratio = metrics.ScalarOf(float64(c.services) / float64(c.shifts))
		}
		days = append(days, join)
	}

	slices.SortFunc(days, func(a, b DailyJoin) int {
		return a.Date.Compare(b.Date)
	})
	return days
}

// clockWindow is a shift's time-of-day span, in minutes since midnight.
// wraps marks windows that cross midnight after rollover correction.
type clockWindow struct {
	weekday    time.Weekday
	start, end int
	wraps      bool
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func (w clockWindow) contains(minute int) bool {
	if w.wraps {
		return minute >= w.start || minute <= w.end
	}
	return minute >= w.start && minute <= w.end
}

// matchCoverage counts the services whose departure time of day falls
// within the [start, end] window of any shift on a matching weekday. The
// first containing shift wins; one is enough.
func matchCoverage(shifts []normalize.ShiftRecord, services []normalize.ServiceRecord) (matched, total int) {
	windows := make([]clockWindow, len(shifts))
	for i, s := range shifts {
		start := minuteOfDay(s.Start)
		end := minuteOfDay(s.End)
		windows[i] = clockWindow{
			weekday: s.Date.Weekday(),
			start:   start,
			end:     end,
			wraps:   end < start,
		}
	}

	// Row-by-row containment is fine at this scale (thousands of rows);
	// a per-weekday bucketed index would be the next step if it grew.
	for _, svc := range services {
		total++
		weekday := svc.Date.Weekday()
		departure := minuteOfDay(svc.Departure)
		for _, w := range windows {
			if w.weekday != weekday {
				continue
			}
			if w.contains(departure) {
				matched++
				break
			}
		}
	}
	return matched, total
}
