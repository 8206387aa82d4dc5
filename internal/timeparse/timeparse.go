// Package timeparse turns raw spreadsheet date and time-of-day cells into
// canonical values. Parsing is pure and stateless: the same cell always
// yields the same value or the same error.
package timeparse

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"opsboard/internal/source"
)

// Clock is a time of day, independent of any date.
type Clock struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the clock position as minutes since midnight.
func (c Clock) MinuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

var clockRe = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// dateTimeClockLayouts cover cells that carry a full timestamp where only
// the time of day is wanted (the roster export writes "Inizio" that way).
var dateTimeClockLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04",
	"01/02/2006 15:04",
}

// sheet serial dates count days from this epoch.
var sheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseClock parses a time-of-day cell. Accepted forms:
//   - "HH:MM" and "HH:MM:SS"
//   - bare hours: "8" -> 08:00
//   - decimal hours with dot or comma: "8.5" -> 08:30
//     (the fraction is minutes as a fraction of an hour, minute = round(frac*60))
//   - numeric cells: values below 1 are a sheet fraction-of-day
//     (0.5 -> 12:00), values in [1, 24) are decimal hours, and values of
//     datetime-serial magnitude carry the clock in their fractional part;
//     anything between 24 and that magnitude is rejected
//   - full timestamps, from which the clock is extracted
func ParseClock(cell source.Cell) (Clock, error) {
	switch cell.Kind {
	case source.CellMissing:
		return Clock{}, errors.New("empty time value")
	case source.CellNumber:
		return clockFromNumber(cell.Number)
	}

	raw := strings.TrimSpace(cell.Raw)

	if m := clockRe.FindStringSubmatch(raw); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		if hour > 23 || minute > 59 {
			return Clock{}, fmt.Errorf("time out of range: %q", raw)
		}
		return Clock{Hour: hour, Minute: minute}, nil
	}

	for _, layout := range dateTimeClockLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}

	// Decimal or integer hours; the exports use both comma and dot.
	if v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64); err == nil {
		return clockFromNumber(v)
	}

	return Clock{}, fmt.Errorf("unsupported time format: %q", raw)
}

// minClockSerial is the smallest numeric value read as a datetime serial
// rather than an hour count. Values between 24 and this bound cannot be a
// clock under any convention and are rejected, so a typo'd "25" fails
// instead of parsing as midnight.
const minClockSerial = 365

func clockFromNumber(v float64) (Clock, error) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Clock{}, fmt.Errorf("time value out of range: %v", v)
	}
	// Sheet cells formatted as time serialize as a fraction of a day;
	// full datetime serials carry the clock in their fractional part.
	if v < 1 || v >= minClockSerial {
		frac := v - math.Floor(v)
		totalMinutes := int(math.Round(frac * 24 * 60))
		if totalMinutes == 24*60 {
			totalMinutes = 0
		}
		return Clock{Hour: totalMinutes / 60, Minute: totalMinutes % 60}, nil
	}
	if v >= 24 {
		return Clock{}, fmt.Errorf("time value out of range: %v", v)
	}

	hour := int(v)
	minute := int(math.Round((v - float64(hour)) * 60))
	if minute == 60 {
		hour++
		minute = 0
	}
	if hour > 23 {
		return Clock{}, fmt.Errorf("time value out of range: %v", v)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}

// isoDateLayouts are unambiguous and always tried first.
var isoDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2/1/2006 15:04",
	"2/1/06",
}

var monthFirstLayouts = []string{
	"1/2/2006",
	"1-2-2006",
	"1/2/2006 15:04",
	"1/2/06",
}

// ParseDate parses a date cell. ISO forms win outright; ambiguous slash
// dates follow the day-first convention when dayFirst is set, otherwise
// month-first is preferred. Numeric cells are sheet serial dates. An
// unparseable cell is an error, never a fabricated date.
func ParseDate(cell source.Cell, dayFirst bool) (time.Time, error) {
	switch cell.Kind {
	case source.CellMissing:
		return time.Time{}, errors.New("empty date value")
	case source.CellNumber:
		return dateFromSerial(cell.Number)
	}

	raw := strings.TrimSpace(cell.Raw)

	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOnly(t), nil
		}
	}

	primary, secondary := dayFirstLayouts, monthFirstLayouts
	if !dayFirst {
		primary, secondary = monthFirstLayouts, dayFirstLayouts
	}
	for _, layout := range primary {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOnly(t), nil
		}
	}
	for _, layout := range secondary {
		if t, err := time.Parse(layout, raw); err == nil {
			return DateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

// dateFromSerial converts a spreadsheet day serial (days since 1899-12-30)
// into a calendar date. Serials below 1 carry no date part.
func dateFromSerial(v float64) (time.Time, error) {
	if v < 1 || math.IsNaN(v) || math.IsInf(v, 0) {
		return time.Time{}, fmt.Errorf("date serial out of range: %v", v)
	}
	days := int(v)
	return sheetEpoch.AddDate(0, 0, days), nil
}

// ParseDateTime resolves a cell holding a full timestamp into both its date
// and clock parts. Used when a single column carries "start" as a datetime.
func ParseDateTime(cell source.Cell, dayFirst bool) (time.Time, Clock, error) {
	date, err := ParseDate(cell, dayFirst)
	if err != nil {
		return time.Time{}, Clock{}, err
	}
	clock, err := ParseClock(cell)
	if err != nil {
		return time.Time{}, Clock{}, err
	}
	return date, clock, nil
}

// DateOnly truncates a timestamp to midnight, preserving the location.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
