package metrics

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"opsboard/internal/normalize"
)

func shift(dateStr, category string, hours float64) normalize.ShiftRecord {
	d, _ := time.Parse("2006-01-02", dateStr)
	return normalize.ShiftRecord{
		Date:     d,
		Start:    d.Add(8 * time.Hour),
		End:      d.Add(8*time.Hour + time.Duration(hours*float64(time.Hour))),
		Category: category,
	}
}

func service(dateStr, category, vehicle string, minutes, km float64, kmValid bool) normalize.ServiceRecord {
	d, _ := time.Parse("2006-01-02", dateStr)
	return normalize.ServiceRecord{
		Date:          d,
		Departure:     d.Add(9 * time.Hour),
		Arrival:       d.Add(9*time.Hour + time.Duration(minutes*float64(time.Minute))),
		DistanceKM:    km,
		DistanceValid: kmValid,
		Vehicle:       vehicle,
		Category:      category,
	}
}

func TestComputeShiftKPIs(t *testing.T) {
	shifts := []normalize.ShiftRecord{
		shift("2024-01-01", "Ordinari", 6),
		shift("2024-01-02", "Ordinari", 8),
		shift("2024-01-03", "Soccorso ECHO", 10),
	}

	kpis, err := ComputeShiftKPIs(shifts, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kpis.Count != 3 {
		t.Errorf("Count = %d, want 3", kpis.Count)
	}
	if kpis.HoursTotal != 24 {
		t.Errorf("HoursTotal = %v, want 24", kpis.HoursTotal)
	}
	if !kpis.HoursMean.Valid || kpis.HoursMean.Value != 8 {
		t.Errorf("HoursMean = %+v, want 8", kpis.HoursMean)
	}
	if kpis.PerDayMean != 0.75 {
		t.Errorf("PerDayMean = %v, want 0.75", kpis.PerDayMean)
	}
}

func TestComputeShiftKPIsEmpty(t *testing.T) {
	kpis, err := ComputeShiftKPIs(nil, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kpis.Count != 0 || kpis.HoursTotal != 0 || kpis.PerDayMean != 0 {
		t.Errorf("empty counts should be zero: %+v", kpis)
	}
	if kpis.HoursMean.Valid {
		t.Error("mean over empty set must be undefined, not zero")
	}

	// The undefined mean must survive JSON encoding as null.
	data, err := json.Marshal(kpis)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"shift_hours_mean":null`) {
		t.Errorf("expected null mean in %s", data)
	}
}

func TestComputeShiftKPIsZeroSpan(t *testing.T) {
	_, err := ComputeShiftKPIs(nil, 0)
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected RangeError for zero span, got %v", err)
	}
}

func TestComputeServiceKPIs(t *testing.T) {
	services := []normalize.ServiceRecord{
		service("2024-01-01", "Soccorso ECHO", "ECHO-1", 30, 10, true),
		service("2024-01-01", "Ordinari", "ECHO-2", 60, 20, true),
		service("2024-01-02", "Ordinari", "ECHO-1", 90, 0, false),
	}

	kpis, err := ComputeServiceKPIs(services, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kpis.Count != 3 {
		t.Errorf("Count = %d, want 3", kpis.Count)
	}
	if kpis.KMTotal != 30 {
		t.Errorf("KMTotal = %v, want 30", kpis.KMTotal)
	}
	// Invalid distances are excluded from the mean, not coerced to zero.
	if !kpis.KMMean.Valid || kpis.KMMean.Value != 15 {
		t.Errorf("KMMean = %+v, want 15", kpis.KMMean)
	}
	if !kpis.DurationMeanMin.Valid || kpis.DurationMeanMin.Value != 60 {
		t.Errorf("DurationMeanMin = %+v, want 60", kpis.DurationMeanMin)
	}
	if !kpis.DurationMedian.Valid || kpis.DurationMedian.Value != 60 {
		t.Errorf("DurationMedian = %+v, want 60", kpis.DurationMedian)
	}
	if kpis.PerDayMean != 1.5 {
		t.Errorf("PerDayMean = %v, want 1.5", kpis.PerDayMean)
	}
}

func TestComputeServiceKPIsNoDistances(t *testing.T) {
	services := []normalize.ServiceRecord{
		service("2024-01-01", "Ordinari", "ECHO-1", 30, 0, false),
	}
	kpis, err := ComputeServiceKPIs(services, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kpis.KMMean.Valid {
		t.Error("distance mean with no valid distances must be undefined")
	}
	if kpis.KMTotal != 0 {
		t.Errorf("KMTotal = %v, want 0", kpis.KMTotal)
	}
}
