package metrics

import "opsboard/internal/normalize"

// Filter narrows a canonical record set to a date range plus optional
// inclusion lists. Empty lists include everything.
type Filter struct {
	Range      DateRange
	Categories []string
	Vehicles   []string
}

func inclusionSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// FilterShifts returns the shifts matching the filter.
func FilterShifts(records []normalize.ShiftRecord, f Filter) []normalize.ShiftRecord {
	categories := inclusionSet(f.Categories)

	filtered := make([]normalize.ShiftRecord, 0, len(records))
	for _, r := range records {
		if !f.Range.Contains(r.Date) {
			continue
		}
		if categories != nil && !categories[r.Category] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// FilterServices returns the services matching the filter.
func FilterServices(records []normalize.ServiceRecord, f Filter) []normalize.ServiceRecord {
	categories := inclusionSet(f.Categories)
	vehicles := inclusionSet(f.Vehicles)

	filtered := make([]normalize.ServiceRecord, 0, len(records))
	for _, r := range records {
		if !f.Range.Contains(r.Date) {
			continue
		}
		if categories != nil && !categories[r.Category] {
			continue
		}
		if vehicles != nil && !vehicles[r.Vehicle] {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}
