package metrics

import (
	"slices"
	"strings"
	"time"

	"opsboard/internal/normalize"
)

// CategoryAggregate is one row of a per-category breakdown. Total carries
// hours for shifts and minutes for services.
type CategoryAggregate struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

func sortAggregates(rows []CategoryAggregate) {
	// Descending by total; category name breaks ties deterministically.
	slices.SortFunc(rows, func(a, b CategoryAggregate) int {
		switch {
		case a.Total > b.Total:
			return -1
		case a.Total < b.Total:
			return 1
		}
		return strings.Compare(a.Category, b.Category)
	})
}

// ShiftCategoryBreakdown groups shifts by category and sums hours,
// descending by the sum.
func ShiftCategoryBreakdown(shifts []normalize.ShiftRecord) []CategoryAggregate {
	buckets := make(map[string]*CategoryAggregate)
	for _, s := range shifts {
		agg, ok := buckets[s.Category]
		if !ok {
			agg = &CategoryAggregate{Category: s.Category}
			buckets[s.Category] = agg
		}
		agg.Count++
		agg.Total += s.Hours()
	}

	rows := make([]CategoryAggregate, 0, len(buckets))
	for _, agg := range buckets {
		rows = append(rows, *agg)
	}
	sortAggregates(rows)
	return rows
}

// ServiceCategoryBreakdown groups services by category and sums minutes,
// descending by the sum.
func ServiceCategoryBreakdown(services []normalize.ServiceRecord) []CategoryAggregate {
	buckets := make(map[string]*CategoryAggregate)
	for _, s := range services {
		agg, ok := buckets[s.Category]
		if !ok {
			agg = &CategoryAggregate{Category: s.Category}
			buckets[s.Category] = agg
		}
		agg.Count++
		agg.Total += s.Minutes()
	}

	rows := make([]CategoryAggregate, 0, len(buckets))
	for _, agg := range buckets {
		rows = append(rows, *agg)
	}
	sortAggregates(rows)
	return rows
}

// WeekdayCount is one entry of the canonical Monday..Sunday distribution.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// weekOrder anchors Monday first; Go's time.Weekday starts at Sunday.
var weekOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeekdayDistribution counts dates per weekday. The result always has
// exactly 7 entries in Monday..Sunday order, zero-filled, and the counts
// sum to len(dates).
func WeekdayDistribution(dates []time.Time) []WeekdayCount {
	counts := make(map[time.Weekday]int, 7)
	for _, d := range dates {
		counts[d.Weekday()]++
	}

	rows := make([]WeekdayCount, 0, 7)
	for _, wd := range weekOrder {
		rows = append(rows, WeekdayCount{Weekday: wd.String(), Count: counts[wd]})
	}
	return rows
}

// Partition splits a filtered service set by a predicate and reports both
// sizes. The two sides always sum exactly to the input length.
type Partition struct {
	Matched int `json:"matched"`
	Rest    int `json:"rest"`
}

// PartitionServices counts services matching pred versus the rest.
func PartitionServices(services []normalize.ServiceRecord, pred func(normalize.ServiceRecord) bool) Partition {
	var p Partition
	for _, s := range services {
		if pred(s) {
			p.Matched++
		} else {
			p.Rest++
		}
	}
	return p
}
