package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"opsboard/internal/correlate"
	"opsboard/internal/dashboard"
	"opsboard/internal/metrics"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

func (s *Server) options() normalize.Options {
	return normalize.Options{DayFirst: s.cfg.DayFirst}
}

// buildReport is the common path of the query-shaped tools: load both
// datasets, resolve the range, compute the full report.
func (s *Server) buildReport(ctx context.Context, args queryArgs) (*dashboard.Report, error) {
	shiftsDS, servicesDS, err := s.store.LoadBoth(ctx, s.cfg.ShiftsSource, s.cfg.ServicesSource)
	if err != nil {
		return nil, err
	}
	q, err := s.resolveQuery(args, shiftsDS, servicesDS)
	if err != nil {
		return nil, err
	}
	return dashboard.Build(shiftsDS, servicesDS, s.cmap, s.options(), q)
}

// resolveQuery turns tool arguments into a concrete query. An absent range
// defaults to the overlap of both datasets' date extents.
func (s *Server) resolveQuery(args queryArgs, shiftsDS, servicesDS *source.Dataset) (dashboard.Query, error) {
	q := dashboard.Query{Categories: args.Categories, Vehicles: args.Vehicles}

	if args.From == "" && args.To == "" {
		rng, err := s.defaultRange(shiftsDS, servicesDS)
		if err != nil {
			return q, err
		}
		q.Range = rng
		return q, nil
	}
	if args.From == "" || args.To == "" {
		return q, fmt.Errorf("'from' and 'to' must be given together")
	}

	from, err := parseDay(args.From)
	if err != nil {
		return q, fmt.Errorf("invalid 'from': %w", err)
	}
	to, err := parseDay(args.To)
	if err != nil {
		return q, fmt.Errorf("invalid 'to': %w", err)
	}
	rng, err := metrics.NewDateRange(from, to)
	if err != nil {
		return q, err
	}
	q.Range = rng
	return q, nil
}

func (s *Server) defaultRange(shiftsDS, servicesDS *source.Dataset) (metrics.DateRange, error) {
	shifts, _, shiftErr := normalize.NormalizeShifts(shiftsDS, s.cmap, s.options())
	services, _, svcErr := normalize.NormalizeServices(servicesDS, s.cmap, s.options())
	if shiftErr != nil && svcErr != nil {
		return metrics.DateRange{}, fmt.Errorf("no usable dataset: %v; %v", shiftErr, svcErr)
	}
	return dashboard.BoundsFromDatasets(shifts, services)
}

func (s *Server) qualityFor(ds *source.Dataset, isShifts bool) any {
	var report *normalize.Report
	var err error
	if isShifts {
		_, report, err = normalize.NormalizeShifts(ds, s.cmap, s.options())
	} else {
		_, report, err = normalize.NormalizeServices(ds, s.cmap, s.options())
	}
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return report
}

func (s *Server) forceCorrelation(shiftsDS, servicesDS *source.Dataset, q dashboard.Query) *correlate.Result {
	shifts, _, err := normalize.NormalizeShifts(shiftsDS, s.cmap, s.options())
	if err != nil {
		return nil
	}
	services, _, err := normalize.NormalizeServices(servicesDS, s.cmap, s.options())
	if err != nil {
		return nil
	}
	filter := metrics.Filter{Range: q.Range, Categories: q.Categories, Vehicles: q.Vehicles}
	result := correlate.Correlate(metrics.FilterShifts(shifts, filter), metrics.FilterServices(services, filter), q.Range)
	return &result
}

func datasetArg(value, fallback string) (string, error) {
	switch value {
	case "":
		return fallback, nil
	case "shifts", "services":
		return value, nil
	default:
		return "", fmt.Errorf("unknown dataset %q, expected 'shifts' or 'services'", value)
	}
}

func parseDay(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// textResult renders a payload as indented JSON in a single text content
// block, the shape stdio clients handle best.
func textResult(payload any) *sdk.CallToolResult {
	out, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		out = []byte(fmt.Sprintf("marshal result: %v", err))
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: string(out)}},
	}
}
