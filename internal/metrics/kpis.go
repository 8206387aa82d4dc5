package metrics

import (
	"time"

	"opsboard/internal/normalize"
)

// ShiftKPIs are the roster aggregates for one filtered selection.
type ShiftKPIs struct {
	Count      int     `json:"shift_count"`
	HoursTotal float64 `json:"shift_hours_total"`
	HoursMean  Scalar  `json:"shift_hours_mean"`
	PerDayMean float64 `json:"shifts_per_day_mean"`
}

// ComputeShiftKPIs aggregates an already-filtered shift set over a span of
// spanDays calendar days. A span below one day is a range error, not a
// division by zero.
func ComputeShiftKPIs(shifts []normalize.ShiftRecord, spanDays int) (ShiftKPIs, error) {
	if spanDays < 1 {
		return ShiftKPIs{}, &RangeError{Why: "span must cover at least one day"}
	}

	hours := make([]float64, len(shifts))
	total := 0.0
	for i, s := range shifts {
		hours[i] = s.Hours()
		total += hours[i]
	}

	return ShiftKPIs{
		Count:      len(shifts),
		HoursTotal: total,
		HoursMean:  Mean(hours),
		PerDayMean: float64(len(shifts)) / float64(spanDays),
	}, nil
}

// ServiceKPIs are the dispatch aggregates for one filtered selection.
// Distance means only consider records whose distance cell parsed.
type ServiceKPIs struct {
	Count           int     `json:"service_count"`
	KMTotal         float64 `json:"service_km_total"`
	KMMean          Scalar  `json:"service_km_mean"`
	DurationMeanMin Scalar  `json:"service_duration_mean_min"`
	DurationMedian  Scalar  `json:"service_duration_median_min"`
	PerDayMean      float64 `json:"services_per_day_mean"`
}

// ComputeServiceKPIs aggregates an already-filtered service set.
func ComputeServiceKPIs(services []normalize.ServiceRecord, spanDays int) (ServiceKPIs, error) {
	if spanDays < 1 {
		return ServiceKPIs{}, &RangeError{Why: "span must cover at least one day"}
	}

	durations := make([]float64, len(services))
	var distances []float64
	kmTotal := 0.0
	for i, s := range services {
		durations[i] = s.Minutes()
		if s.DistanceValid {
			distances = append(distances, s.DistanceKM)
			kmTotal += s.DistanceKM
		}
	}

	return ServiceKPIs{
		Count:           len(services),
		KMTotal:         kmTotal,
		KMMean:          Mean(distances),
		DurationMeanMin: Mean(durations),
		DurationMedian:  Median(durations),
		PerDayMean:      float64(len(services)) / float64(spanDays),
	}, nil
}

// ShiftDates projects the record dates, for weekday distributions.
func ShiftDates(shifts []normalize.ShiftRecord) []time.Time {
	dates := make([]time.Time, len(shifts))
	for i, s := range shifts {
		dates[i] = s.Date
	}
	return dates
}

// ServiceDates projects the record dates, for weekday distributions.
func ServiceDates(services []normalize.ServiceRecord) []time.Time {
	dates := make([]time.Time, len(services))
	for i, s := range services {
		dates[i] = s.Date
	}
	return dates
}
