package dashboard

import (
	"strings"
	"testing"
	"time"

	"opsboard/internal/metrics"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

const shiftsCSV = "Data,Inizio,Fine,Categoria\n" +
	"2024-01-01,08:00,14:00,[ORDINARIO] Mattina\n" +
	"2024-01-01,14:00,20:00,[ORDINARIO] Pomeriggio\n" +
	"2024-01-02,23:00,01:00,[TS] Notturno\n" +
	"2024-01-03,rotto,14:00,[TS] Guasto\n"

const servicesCSV = "GG,[P]Ore,[A]Ore,Km effet.,Mezzo,Intervento\n" +
	"2024-01-01,09:00,09:45,15,ECHO-1,[TS] Soccorso\n" +
	"2024-01-01,16:30,17:00,\"8,5\",ECHO-2,[ORDINARIO] Trasporto\n" +
	"2024-01-02,23:30,00:10,20,ECHO-1,[TS] Soccorso\n" +
	"2024-01-05,10:00,11:00,,ECHO-2,[DIA] Dialisi\n"

func decode(t *testing.T, id, csv string) *source.Dataset {
	t.Helper()
	ds, err := source.DecodeCSV(strings.NewReader(csv), id)
	if err != nil {
		t.Fatalf("DecodeCSV: %v", err)
	}
	return ds
}

func mustQuery(t *testing.T, startDay, endDay int) Query {
	t.Helper()
	rng, err := metrics.NewDateRange(
		time.Date(2024, 1, startDay, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, endDay, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatalf("NewDateRange: %v", err)
	}
	return Query{Range: rng}
}

func TestBuildFullReport(t *testing.T) {
	report, err := Build(
		decode(t, "shifts", shiftsCSV),
		decode(t, "services", servicesCSV),
		normalize.DefaultCategoryMap(),
		normalize.Options{DayFirst: true},
		mustQuery(t, 1, 7),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if report.RunID == "" {
		t.Error("report must carry a run ID")
	}
	if report.SpanDays != 7 {
		t.Errorf("SpanDays = %d, want 7", report.SpanDays)
	}

	// One shift row is broken; three survive.
	if report.Shifts.Count != 3 {
		t.Errorf("shift count = %d, want 3", report.Shifts.Count)
	}
	if report.Shifts.HoursTotal != 14 {
		t.Errorf("shift hours = %v, want 14 (6+6+2 with rollover)", report.Shifts.HoursTotal)
	}
	if report.ShiftQuality == nil || report.ShiftQuality.Invalid != 1 {
		t.Errorf("shift quality = %+v, want 1 invalid row", report.ShiftQuality)
	}

	if report.Services.Count != 4 {
		t.Errorf("service count = %d, want 4", report.Services.Count)
	}
	// 15 + 8.5 + 20; the missing distance contributes nothing.
	if report.Services.KMTotal != 43.5 {
		t.Errorf("km total = %v, want 43.5", report.Services.KMTotal)
	}
	if report.EmergencySplit.Matched != 2 || report.EmergencySplit.Rest != 2 {
		t.Errorf("emergency split = %+v, want 2/2", report.EmergencySplit)
	}
	if report.EmergencySplit.Matched+report.EmergencySplit.Rest != report.Services.Count {
		t.Error("partition must sum to the filtered total")
	}

	if len(report.Weekdays) != 7 {
		t.Fatalf("weekday table has %d entries, want 7", len(report.Weekdays))
	}
	sum := 0
	for _, w := range report.Weekdays {
		sum += w.Count
	}
	if sum != report.Services.Count {
		t.Errorf("weekday counts sum to %d, want %d", sum, report.Services.Count)
	}

	if report.Correlation == nil {
		t.Fatal("7-day span must include correlation")
	}
	if len(report.Correlation.Days) != 3 {
		t.Errorf("correlation days = %d, want 3 (union of dated records)", len(report.Correlation.Days))
	}
}

func TestBuildRespectsFilters(t *testing.T) {
	q := mustQuery(t, 1, 7)
	q.Vehicles = []string{"ECHO-1"}

	report, err := Build(
		decode(t, "shifts", shiftsCSV),
		decode(t, "services", servicesCSV),
		normalize.DefaultCategoryMap(),
		normalize.Options{DayFirst: true},
		q,
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Services.Count != 2 {
		t.Errorf("vehicle-filtered count = %d, want 2", report.Services.Count)
	}
}

func TestBuildDateRangeFilter(t *testing.T) {
	report, err := Build(
		decode(t, "shifts", shiftsCSV),
		decode(t, "services", servicesCSV),
		normalize.DefaultCategoryMap(),
		normalize.Options{DayFirst: true},
		mustQuery(t, 1, 1),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.Shifts.Count != 2 || report.Services.Count != 2 {
		t.Errorf("single-day counts = %d/%d, want 2/2", report.Shifts.Count, report.Services.Count)
	}
}

func TestBuildSchemaFailureIsPartial(t *testing.T) {
	badShifts := decode(t, "shifts", "Data,Inizio,Categoria\n2024-01-01,08:00,[TS] x\n")

	report, err := Build(
		badShifts,
		decode(t, "services", servicesCSV),
		normalize.DefaultCategoryMap(),
		normalize.Options{DayFirst: true},
		mustQuery(t, 1, 7),
	)
	if err != nil {
		t.Fatalf("Build must not fail outright on one bad dataset: %v", err)
	}
	if len(report.Problems) != 1 {
		t.Fatalf("Problems = %v, want the shift schema failure", report.Problems)
	}
	if report.Shifts.Count != 0 {
		t.Error("rejected dataset must contribute nothing")
	}
	if report.Services.Count != 4 {
		t.Errorf("service side must still render, got %d", report.Services.Count)
	}
	if report.Correlation != nil {
		t.Error("correlation needs both datasets")
	}
}

func TestBuildLongSpanSkipsCorrelation(t *testing.T) {
	report, err := Build(
		decode(t, "shifts", shiftsCSV),
		decode(t, "services", servicesCSV),
		normalize.DefaultCategoryMap(),
		normalize.Options{DayFirst: true},
		mustQuery(t, 1, 31+14),
	)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if report.SpanDays != 45 {
		t.Fatalf("SpanDays = %d, want 45", report.SpanDays)
	}
	if report.Correlation != nil {
		t.Error("spans past the advisory ceiling must omit correlation from the report")
	}
}

func TestBoundsFromDatasets(t *testing.T) {
	shifts, _, err := normalize.NormalizeShifts(decode(t, "shifts", shiftsCSV), normalize.DefaultCategoryMap(), normalize.Options{DayFirst: true})
	if err != nil {
		t.Fatal(err)
	}
	services, _, err := normalize.NormalizeServices(decode(t, "services", servicesCSV), normalize.DefaultCategoryMap(), normalize.Options{DayFirst: true})
	if err != nil {
		t.Fatal(err)
	}

	rng, err := BoundsFromDatasets(shifts, services)
	if err != nil {
		t.Fatalf("BoundsFromDatasets: %v", err)
	}
	// Shifts span Jan 1-2, services Jan 1-5: the intersection ends at the
	// shorter extent.
	if !rng.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want Jan 1", rng.Start)
	}
	if !rng.End.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v, want Jan 2", rng.End)
	}

	if _, err := BoundsFromDatasets(nil, nil); err == nil {
		t.Error("expected error with no records")
	}
}
