package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"opsboard/internal/dashboard"
	"opsboard/internal/metrics"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
	"opsboard/internal/visuals"
)

var (
	reportFrom       string
	reportTo         string
	reportCategories []string
	reportVehicles   []string
	reportJSON       bool
	reportHTML       string
	reportOpen       bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute a one-shot report and print it",
	Long: `Loads both datasets, computes the full report for the requested range
(default: the overlap of both datasets), and prints it as text, JSON, or a
standalone HTML page.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.FetchTimeout+time.Minute)
		defer cancel()

		shiftsDS, servicesDS, err := store.LoadBoth(ctx, cfg.ShiftsSource, cfg.ServicesSource)
		if err != nil {
			return err
		}

		opts := normalize.Options{DayFirst: cfg.DayFirst}
		q := dashboard.Query{Categories: reportCategories, Vehicles: reportVehicles}
		q.Range, err = resolveRange(shiftsDS, servicesDS, opts)
		if err != nil {
			return err
		}

		report, err := dashboard.Build(shiftsDS, servicesDS, cmap, opts, q)
		if err != nil {
			return err
		}

		if reportJSON {
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		if reportHTML != "" {
			page, err := visuals.RenderHTML(report)
			if err != nil {
				return err
			}
			if err := os.WriteFile(reportHTML, []byte(page), 0644); err != nil {
				return err
			}
			log.Info().Str("path", reportHTML).Msg("HTML report written")
			if reportOpen {
				if err := browser.OpenFile(reportHTML); err != nil {
					log.Warn().Err(err).Msg("Could not open browser")
				}
			}
			return nil
		}

		printReport(report)
		return nil
	},
}

func resolveRange(shiftsDS, servicesDS *source.Dataset, opts normalize.Options) (metrics.DateRange, error) {
	if reportFrom != "" || reportTo != "" {
		if reportFrom == "" || reportTo == "" {
			return metrics.DateRange{}, fmt.Errorf("--from and --to must be given together")
		}
		from, err := time.Parse("2006-01-02", reportFrom)
		if err != nil {
			return metrics.DateRange{}, fmt.Errorf("invalid --from: %w", err)
		}
		to, err := time.Parse("2006-01-02", reportTo)
		if err != nil {
			return metrics.DateRange{}, fmt.Errorf("invalid --to: %w", err)
		}
		return metrics.NewDateRange(from, to)
	}
	return defaultRange(shiftsDS, servicesDS, opts)
}

// defaultRange derives the range from the overlap of both datasets' extents
// when no explicit --from/--to is given.
func defaultRange(shiftsDS, servicesDS *source.Dataset, opts normalize.Options) (metrics.DateRange, error) {
	shifts, _, shiftErr := normalize.NormalizeShifts(shiftsDS, cmap, opts)
	services, _, svcErr := normalize.NormalizeServices(servicesDS, cmap, opts)
	if shiftErr != nil && svcErr != nil {
		return metrics.DateRange{}, fmt.Errorf("no usable dataset: %v; %v", shiftErr, svcErr)
	}
	return dashboard.BoundsFromDatasets(shifts, services)
}

func printReport(report *dashboard.Report) {
	fmt.Println("Opsboard Operations Report")
	fmt.Println(strings.Repeat("=", 38))
	fmt.Printf("Range: %s to %s (%d days)\n",
		report.Range.Start.Format("2006-01-02"),
		report.Range.End.Format("2006-01-02"),
		report.SpanDays,
	)

	for _, problem := range report.Problems {
		fmt.Printf("PROBLEM: %s\n", problem)
	}

	fmt.Println("\nShifts")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Printf("Count: %d | Hours total: %.1f | Hours mean: %s | Per day: %.2f\n",
		report.Shifts.Count,
		report.Shifts.HoursTotal,
		scalarString(report.Shifts.HoursMean),
		report.Shifts.PerDayMean,
	)
	for _, cat := range report.ShiftCategories {
		fmt.Printf("%s | shifts %d | hours %.1f\n", cat.Category, cat.Count, cat.Total)
	}
	if report.ShiftQuality != nil && report.ShiftQuality.Invalid > 0 {
		fmt.Printf("Invalid rows skipped: %d\n", report.ShiftQuality.Invalid)
	}

	fmt.Println("\nServices")
	fmt.Println(strings.Repeat("-", 38))
	fmt.Printf("Count: %d | Km total: %.1f | Km mean: %s | Duration mean: %s min | Per day: %.2f\n",
		report.Services.Count,
		report.Services.KMTotal,
		scalarString(report.Services.KMMean),
		scalarString(report.Services.DurationMeanMin),
		report.Services.PerDayMean,
	)
	fmt.Printf("Emergency: %d | Other: %d\n", report.EmergencySplit.Matched, report.EmergencySplit.Rest)
	for _, cat := range report.ServiceCategories {
		fmt.Printf("%s | services %d | minutes %.0f\n", cat.Category, cat.Count, cat.Total)
	}
	if report.ServiceQuality != nil && report.ServiceQuality.Invalid > 0 {
		fmt.Printf("Invalid rows skipped: %d\n", report.ServiceQuality.Invalid)
	}

	if len(report.Weekdays) > 0 {
		fmt.Println("\nServices per weekday")
		fmt.Println(strings.Repeat("-", 38))
		for _, w := range report.Weekdays {
			fmt.Printf("%-9s %d\n", w.Weekday, w.Count)
		}
	}

	if report.Correlation != nil {
		fmt.Println("\nRoster / dispatch correlation")
		fmt.Println(strings.Repeat("-", 38))
		fmt.Printf("Coverage: %.1f%% (%d of %d services inside a matching shift window)\n",
			report.Correlation.CoveragePct,
			report.Correlation.MatchedServices,
			report.Correlation.TotalServices,
		)
		if report.Correlation.Unreliable {
			fmt.Println("WARNING: span exceeds the reliable correlation window; treat as indicative only.")
		}
		fmt.Println(visuals.GenerateDailyJoinChart(report.Correlation.Days))
	}
}

func scalarString(s metrics.Scalar) string {
	if !s.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", s.Value)
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "start date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "end date (YYYY-MM-DD), inclusive")
	reportCmd.Flags().StringSliceVar(&reportCategories, "categories", nil, "restrict to these resolved categories")
	reportCmd.Flags().StringSliceVar(&reportVehicles, "vehicles", nil, "restrict services to these vehicles")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print the full report as JSON")
	reportCmd.Flags().StringVar(&reportHTML, "html", "", "write a standalone HTML report to this path")
	reportCmd.Flags().BoolVar(&reportOpen, "open", false, "open the HTML report in the default browser")

	rootCmd.AddCommand(reportCmd)
}
