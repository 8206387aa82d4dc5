// Package visuals renders report sections as Mermaid charts (for MCP text
// surfaces) and as a standalone HTML page.
package visuals

import (
	"fmt"
	"math"
	"strings"

	"opsboard/internal/correlate"
	"opsboard/internal/metrics"
)

// GenerateDailyJoinChart creates a Mermaid xychart for the shift/service
// correlation: one line per series over the joined days.
func GenerateDailyJoinChart(days []correlate.DailyJoin) string {
	if len(days) == 0 {
		return ""
	}

	// Subsample points if the chart is too wide for Mermaid's layout engine.
	// xychart starts overflowing/overlapping text around 60 points.
	subsampleRate := 1
	if len(days) > 60 {
		subsampleRate = int(math.Ceil(float64(len(days)) / 60.0))
	}

	var labels []string
	var shifts []string
	var services []string
	maxVal := 0

	for i, day := range days {
		if i%subsampleRate != 0 && i != len(days)-1 {
			continue
		}
		labels = append(labels, fmt.Sprintf("\"%s\"", day.Date.Format("Jan02")))
		shifts = append(shifts, fmt.Sprintf("%d", day.ShiftCount))
		services = append(services, fmt.Sprintf("%d", day.ServiceCount))
		if day.ShiftCount > maxVal {
			maxVal = day.ShiftCount
		}
		if day.ServiceCount > maxVal {
			maxVal = day.ServiceCount
		}
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Shifts vs Services per Day\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Count\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(shifts, ", ")))
	sb.WriteString(fmt.Sprintf("    line [%s]\n", strings.Join(services, ", ")))
	sb.WriteString("```")
	return sb.String()
}

// GenerateWeekdayChart creates a Mermaid bar chart of services per weekday.
func GenerateWeekdayChart(weekdays []metrics.WeekdayCount) string {
	if len(weekdays) == 0 {
		return ""
	}

	var labels []string
	var values []string
	maxVal := 0

	for _, w := range weekdays {
		labels = append(labels, fmt.Sprintf("\"%s\"", shortDay(w.Weekday)))
		values = append(values, fmt.Sprintf("%d", w.Count))
		if w.Count > maxVal {
			maxVal = w.Count
		}
	}
	if maxVal == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString("xychart-beta\n")
	sb.WriteString("    title \"Services per Weekday\"\n")
	sb.WriteString(fmt.Sprintf("    x-axis [%s]\n", strings.Join(labels, ", ")))
	sb.WriteString(fmt.Sprintf("    y-axis \"Services\" 0 --> %d\n", maxVal+int(math.Max(1, float64(maxVal)*0.2))))
	sb.WriteString(fmt.Sprintf("    bar [%s]\n", strings.Join(values, ", ")))
	sb.WriteString("```")
	return sb.String()
}

func shortDay(name string) string {
	if len(name) > 3 {
		return name[:3]
	}
	return name
}

// GenerateCategoryPie creates a Mermaid pie chart of record counts per
// resolved category. Limited to the top slices so the legend stays readable.
func GenerateCategoryPie(title string, categories []metrics.CategoryAggregate) string {
	if len(categories) == 0 {
		return ""
	}

	limit := len(categories)
	if limit > 8 {
		limit = 8
	}

	var sb strings.Builder
	sb.WriteString("```mermaid\n")
	sb.WriteString(fmt.Sprintf("pie title %s\n", title))
	rest := 0
	for i, cat := range categories {
		if i < limit {
			sb.WriteString(fmt.Sprintf("    \"%s\" : %d\n", cat.Category, cat.Count))
			continue
		}
		rest += cat.Count
	}
	if rest > 0 {
		sb.WriteString(fmt.Sprintf("    \"(altre)\" : %d\n", rest))
	}
	sb.WriteString("```")
	return sb.String()
}
