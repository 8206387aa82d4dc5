// Package normalize repairs raw roster and dispatch rows into canonical
// records: parsed dates, rollover-corrected intervals, and resolved
// categories. Individual bad rows never abort a batch; they end up in a
// diagnostics report instead.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"opsboard/internal/source"
	"opsboard/internal/timeparse"
)

// Options tune normalization behavior for both record kinds.
type Options struct {
	// DayFirst selects the day-first convention for ambiguous dates.
	DayFirst bool
}

// Column aliases, matched by normalized header name. The first list entry
// is the canonical name used in schema errors.
var (
	shiftDateAliases     = []string{"Data", "Date", "Giorno", "GG"}
	shiftStartAliases    = []string{"Inizio", "Start", "StartTime", "Ora Inizio"}
	shiftEndAliases      = []string{"Fine", "End", "EndTime", "Ora Fine"}
	shiftCategoryAliases = []string{"Categoria", "Category", "CategoryLabel"}

	serviceDateAliases         = []string{"GG", "Data", "Date"}
	serviceDepartureAliases    = []string{"[P]Ore", "Partenza", "Departure", "DepartureTime"}
	serviceArrivalAliases      = []string{"[A]Ore", "Arrivo", "Arrival", "ArrivalTime"}
	serviceDistanceAliases     = []string{"Km effet.", "Km effettivi", "Km", "Distance", "Distanza"}
	serviceVehicleAliases      = []string{"Mezzo", "Vehicle", "Automezzo"}
	serviceInterventionAliases = []string{"Intervento", "Intervention", "InterventionLabel"}
)

type shiftColumns struct {
	date, start, end, category int
}

type serviceColumns struct {
	date, departure, arrival, distance, vehicle, intervention int
}

func bindColumn(ds *source.Dataset, aliases []string) (int, error) {
	if idx, ok := ds.ColumnIndex(aliases...); ok {
		return idx, nil
	}
	return -1, &SchemaError{Dataset: ds.SourceID, Column: aliases[0]}
}

func bindShiftColumns(ds *source.Dataset) (shiftColumns, error) {
	var cols shiftColumns
	var err error
	if cols.date, err = bindColumn(ds, shiftDateAliases); err != nil {
		return cols, err
	}
	if cols.start, err = bindColumn(ds, shiftStartAliases); err != nil {
		return cols, err
	}
	if cols.end, err = bindColumn(ds, shiftEndAliases); err != nil {
		return cols, err
	}
	if cols.category, err = bindColumn(ds, shiftCategoryAliases); err != nil {
		return cols, err
	}
	return cols, nil
}

func bindServiceColumns(ds *source.Dataset) (serviceColumns, error) {
	var cols serviceColumns
	var err error
	if cols.date, err = bindColumn(ds, serviceDateAliases); err != nil {
		return cols, err
	}
	if cols.departure, err = bindColumn(ds, serviceDepartureAliases); err != nil {
		return cols, err
	}
	if cols.arrival, err = bindColumn(ds, serviceArrivalAliases); err != nil {
		return cols, err
	}
	if cols.distance, err = bindColumn(ds, serviceDistanceAliases); err != nil {
		return cols, err
	}
	if cols.vehicle, err = bindColumn(ds, serviceVehicleAliases); err != nil {
		return cols, err
	}
	if cols.intervention, err = bindColumn(ds, serviceInterventionAliases); err != nil {
		return cols, err
	}
	return cols, nil
}

// sourceRow converts a data row index into the 1-based spreadsheet row
// number users see (header is row 1).
func sourceRow(i int) int {
	return i + 2
}

// NormalizeShifts converts a raw roster dataset into canonical ShiftRecords.
// A missing required column returns a SchemaError and no records; individual
// unparseable rows are reported and skipped while the batch continues.
func NormalizeShifts(ds *source.Dataset, cmap CategoryMap, opts Options) ([]ShiftRecord, *Report, error) {
	cols, err := bindShiftColumns(ds)
	if err != nil {
		return nil, nil, err
	}

	report := newReport(ds.SourceID)
	report.Total = ds.Len()
	records := make([]ShiftRecord, 0, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		dateCell := ds.Cell(i, cols.date)
		if dateCell.IsMissing() {
			report.record(sourceRow(i), shiftDateAliases[0], ReasonMissingDate, "")
			report.Invalid++
			continue
		}
		date, err := timeparse.ParseDate(dateCell, opts.DayFirst)
		if err != nil {
			report.record(sourceRow(i), shiftDateAliases[0], ReasonBadDate, dateCell.Text())
			report.Invalid++
			continue
		}

		startClock, err := timeparse.ParseClock(ds.Cell(i, cols.start))
		if err != nil {
			report.record(sourceRow(i), shiftStartAliases[0], ReasonBadStart, ds.Cell(i, cols.start).Text())
			report.Invalid++
			continue
		}
		endClock, err := timeparse.ParseClock(ds.Cell(i, cols.end))
		if err != nil {
			report.record(sourceRow(i), shiftEndAliases[0], ReasonBadEnd, ds.Cell(i, cols.end).Text())
			report.Invalid++
			continue
		}

		interval := BuildInterval(date, startClock, endClock)
		categoryRaw := ds.Cell(i, cols.category).Text()

		records = append(records, ShiftRecord{
			Date:        date,
			Start:       interval.Start,
			End:         interval.End,
			CategoryRaw: categoryRaw,
			Category:    cmap.Resolve(categoryRaw),
		})
	}

	report.Valid = len(records)
	return records, report, nil
}

// NormalizeServices converts a raw dispatch dataset into canonical
// ServiceRecords. Distance problems do not reject the row: the record is
// kept with an invalid distance and the issue is reported.
func NormalizeServices(ds *source.Dataset, cmap CategoryMap, opts Options) ([]ServiceRecord, *Report, error) {
	cols, err := bindServiceColumns(ds)
	if err != nil {
		return nil, nil, err
	}

	report := newReport(ds.SourceID)
	report.Total = ds.Len()
	records := make([]ServiceRecord, 0, ds.Len())

	for i := 0; i < ds.Len(); i++ {
		dateCell := ds.Cell(i, cols.date)
		if dateCell.IsMissing() {
			report.record(sourceRow(i), serviceDateAliases[0], ReasonMissingDate, "")
			report.Invalid++
			continue
		}
		date, err := timeparse.ParseDate(dateCell, opts.DayFirst)
		if err != nil {
			report.record(sourceRow(i), serviceDateAliases[0], ReasonBadDate, dateCell.Text())
			report.Invalid++
			continue
		}

		depClock, err := timeparse.ParseClock(ds.Cell(i, cols.departure))
		if err != nil {
			report.record(sourceRow(i), serviceDepartureAliases[0], ReasonBadStart, ds.Cell(i, cols.departure).Text())
			report.Invalid++
			continue
		}
		arrClock, err := timeparse.ParseClock(ds.Cell(i, cols.arrival))
		if err != nil {
			report.record(sourceRow(i), serviceArrivalAliases[0], ReasonBadEnd, ds.Cell(i, cols.arrival).Text())
			report.Invalid++
			continue
		}

		interval := BuildInterval(date, depClock, arrClock)

		distance, distanceValid := parseDistance(ds.Cell(i, cols.distance))
		if !distanceValid && !ds.Cell(i, cols.distance).IsMissing() {
			report.record(sourceRow(i), serviceDistanceAliases[0], ReasonBadDistance, ds.Cell(i, cols.distance).Text())
		}

		interventionRaw := ds.Cell(i, cols.intervention).Text()

		records = append(records, ServiceRecord{
			Date:            date,
			Departure:       interval.Start,
			Arrival:         interval.End,
			DistanceKM:      distance,
			DistanceValid:   distanceValid,
			Vehicle:         ds.Cell(i, cols.vehicle).Text(),
			InterventionRaw: interventionRaw,
			Category:        cmap.Resolve(interventionRaw),
		})
	}

	report.Valid = len(records)
	return records, report, nil
}

// parseDistance accepts numeric cells and comma-decimal text. Negative and
// non-finite values are invalid; a missing cell is simply absent data.
func parseDistance(cell source.Cell) (float64, bool) {
	switch cell.Kind {
	case source.CellMissing:
		return 0, false
	case source.CellNumber:
		if cell.Number < 0 || math.IsNaN(cell.Number) || math.IsInf(cell.Number, 0) {
			return 0, false
		}
		return cell.Number, true
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(cell.Raw), ",", "."), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
