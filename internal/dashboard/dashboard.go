// Package dashboard orchestrates one full query: normalize both raw
// datasets, apply the date/category/vehicle filters, and compute every
// output section. Each call recomputes from the raw rows; nothing here
// holds state between queries.
package dashboard

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"opsboard/internal/correlate"
	"opsboard/internal/metrics"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

// Query selects what a report covers.
type Query struct {
	Range      metrics.DateRange `json:"range"`
	Categories []string          `json:"categories,omitempty"`
	Vehicles   []string          `json:"vehicles,omitempty"`
}

// Report is the complete computed output for one query.
type Report struct {
	RunID       string    `json:"run_id"`
	GeneratedAt time.Time `json:"generated_at"`

	Range    metrics.DateRange `json:"range"`
	SpanDays int               `json:"span_days"`

	Shifts         metrics.ShiftKPIs   `json:"shift_kpis"`
	Services       metrics.ServiceKPIs `json:"service_kpis"`
	EmergencySplit metrics.Partition   `json:"emergency_split"`

	ShiftCategories   []metrics.CategoryAggregate `json:"shift_categories"`
	ServiceCategories []metrics.CategoryAggregate `json:"service_categories"`
	Weekdays          []metrics.WeekdayCount      `json:"service_weekdays"`

	// Correlation is present only when the span stays within the advisory
	// reliability ceiling; the engine itself computes for any span.
	Correlation *correlate.Result `json:"correlation,omitempty"`

	ShiftQuality   *normalize.Report `json:"shift_quality,omitempty"`
	ServiceQuality *normalize.Report `json:"service_quality,omitempty"`

	// Problems lists dataset-level failures (schema mismatches) that
	// suppressed a section without aborting the whole report.
	Problems []string `json:"problems,omitempty"`
}

// IsEmergency classifies a service as an emergency dispatch by its resolved
// category, splitting the rescue labels from ordinary transports.
func IsEmergency(s normalize.ServiceRecord) bool {
	return strings.HasPrefix(s.Category, "Soccorso")
}

// Build computes a full report. A schema failure on one dataset suppresses
// that dataset's sections and is noted in Problems; the other dataset still
// renders. Row-level failures never stop anything: they land in the quality
// reports.
func Build(shiftsDS, servicesDS *source.Dataset, cmap normalize.CategoryMap, opts normalize.Options, q Query) (*Report, error) {
	if q.Range.Start.IsZero() || q.Range.End.IsZero() {
		return nil, &metrics.RangeError{Why: "query range is not set"}
	}
	spanDays := q.Range.SpanDays()

	report := &Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Range:       q.Range,
		SpanDays:    spanDays,
	}

	filter := metrics.Filter{Range: q.Range, Categories: q.Categories, Vehicles: q.Vehicles}

	var shifts []normalize.ShiftRecord
	shiftsOK := false
	if shiftsDS != nil {
		all, quality, err := normalize.NormalizeShifts(shiftsDS, cmap, opts)
		if err != nil {
			report.Problems = append(report.Problems, err.Error())
			log.Error().Err(err).Msg("Shift dataset rejected")
		} else {
			report.ShiftQuality = quality
			shifts = metrics.FilterShifts(all, filter)
			kpis, err := metrics.ComputeShiftKPIs(shifts, spanDays)
			if err != nil {
				return nil, err
			}
			report.Shifts = kpis
			report.ShiftCategories = metrics.ShiftCategoryBreakdown(shifts)
			shiftsOK = true
		}
	}

	var services []normalize.ServiceRecord
	servicesOK := false
	if servicesDS != nil {
		all, quality, err := normalize.NormalizeServices(servicesDS, cmap, opts)
		if err != nil {
			report.Problems = append(report.Problems, err.Error())
			log.Error().Err(err).Msg("Service dataset rejected")
		} else {
			report.ServiceQuality = quality
			services = metrics.FilterServices(all, filter)
			kpis, err := metrics.ComputeServiceKPIs(services, spanDays)
			if err != nil {
				return nil, err
			}
			report.Services = kpis
			report.ServiceCategories = metrics.ServiceCategoryBreakdown(services)
			report.Weekdays = metrics.WeekdayDistribution(metrics.ServiceDates(services))
			report.EmergencySplit = metrics.PartitionServices(services, IsEmergency)
			servicesOK = true
		}
	}

	if shiftsOK && servicesOK && spanDays <= correlate.MaxReliableSpanDays {
		result := correlate.Correlate(shifts, services, q.Range)
		report.Correlation = &result
	}

	log.Debug().
		Str("run", report.RunID).
		Int("span_days", spanDays).
		Int("shifts", len(shifts)).
		Int("services", len(services)).
		Msg("Report computed")

	return report, nil
}

// BoundsFromDatasets derives the default query range: the intersection of
// both datasets' date extents (the widest span where both have data). When
// one set is empty, the other's extent is used; with no dated records at
// all there is nothing to derive.
func BoundsFromDatasets(shifts []normalize.ShiftRecord, services []normalize.ServiceRecord) (metrics.DateRange, error) {
	extent := func(dates []time.Time) (time.Time, time.Time) {
		var min, max time.Time
		for _, d := range dates {
			if min.IsZero() || d.Before(min) {
				min = d
			}
			if max.IsZero() || d.After(max) {
				max = d
			}
		}
		return min, max
	}

	shiftMin, shiftMax := extent(metrics.ShiftDates(shifts))
	svcMin, svcMax := extent(metrics.ServiceDates(services))

	switch {
	case shiftMin.IsZero() && svcMin.IsZero():
		return metrics.DateRange{}, errors.New("no dated records to derive a range from")
	case shiftMin.IsZero():
		return metrics.NewDateRange(svcMin, svcMax)
	case svcMin.IsZero():
		return metrics.NewDateRange(shiftMin, shiftMax)
	}

	start, end := shiftMin, shiftMax
	if svcMin.After(start) {
		start = svcMin
	}
	if svcMax.Before(end) {
		end = svcMax
	}
	return metrics.NewDateRange(start, end)
}
