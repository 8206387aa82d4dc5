package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"opsboard/internal/dashboard"
)

// queryArgs is the shared input shape of every analytical tool. All fields
// are optional: an empty range falls back to the overlap of both datasets.
type queryArgs struct {
	From       string   `json:"from,omitempty"`
	To         string   `json:"to,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Vehicles   []string `json:"vehicles,omitempty"`
}

type breakdownArgs struct {
	queryArgs
	Dataset string `json:"dataset,omitempty"`
}

type qualityArgs struct {
	Dataset string `json:"dataset,omitempty"`
}

type emptyArgs struct{}

// querySchema builds the input schema for the query-shaped tools, with the
// field semantics spelled out for the client.
func querySchema() *jsonschema.Schema {
	schema, err := jsonschema.For[queryArgs](nil)
	if err != nil {
		panic(err)
	}
	describe(schema, "from", "Start date (YYYY-MM-DD). Default: start of the overlap of both datasets.")
	describe(schema, "to", "End date (YYYY-MM-DD), inclusive. Default: end of the overlap of both datasets.")
	describe(schema, "categories", "Optional: restrict to these resolved categories (e.g. ['Soccorso ECHO']).")
	describe(schema, "vehicles", "Optional: restrict services to these vehicle identifiers.")
	return schema
}

func describe(schema *jsonschema.Schema, property, text string) {
	if prop, ok := schema.Properties[property]; ok {
		prop.Description = text
	}
}

func (s *Server) registerTools(server *sdk.Server) {
	sdk.AddTool(server, &sdk.Tool{
		Name: "get_kpis",
		Description: "Compute the headline KPIs for a date range: shift count, total and mean shift hours, " +
			"service count, total and mean kilometres, mean and median service duration, and per-day rates. " +
			"Means are null when the selection is empty. Guidance: call 'get_data_quality' first when the " +
			"source data is new, so you can report dropped rows alongside the numbers.",
		InputSchema: querySchema(),
	}, s.handleGetKPIs)

	sdk.AddTool(server, &sdk.Tool{
		Name: "get_category_breakdown",
		Description: "Break one dataset down by resolved category: per-category record counts plus total hours " +
			"(shifts) or total minutes (services), sorted by volume. Untagged rows fall into 'Altro'.",
		InputSchema: breakdownSchema(),
	}, s.handleGetCategoryBreakdown)

	sdk.AddTool(server, &sdk.Tool{
		Name: "get_weekday_distribution",
		Description: "Count services per weekday (Monday first) over a date range. All seven days are always " +
			"present, zero-filled, so the shape of the week is directly comparable across ranges.",
		InputSchema: querySchema(),
	}, s.handleGetWeekdayDistribution)

	sdk.AddTool(server, &sdk.Tool{
		Name: "get_correlation",
		Description: "Correlate the duty roster with the dispatch log: a per-day join of shift and service counts " +
			"with a services-per-shift ratio, plus the share of services that fall inside a matching shift window " +
			"(same weekday, clock containment, overnight aware). \n\n" +
			"Results for spans longer than 31 days are flagged 'unreliable': weekday and clock matching loses " +
			"meaning across schedule changes. YOU MUST surface that flag to the user instead of presenting the " +
			"coverage percentage as settled fact.",
		InputSchema: querySchema(),
	}, s.handleGetCorrelation)

	sdk.AddTool(server, &sdk.Tool{
		Name: "get_data_quality",
		Description: "Report normalization diagnostics for one or both datasets: total, valid and dropped row " +
			"counts, failure reasons, and sample offending values with their source row numbers.",
		InputSchema: qualitySchema(),
	}, s.handleGetDataQuality)

	sdk.AddTool(server, &sdk.Tool{
		Name: "reload_data",
		Description: "Revalidate both datasets against their origins and refresh the cache when the content " +
			"changed. Use this when the user says the spreadsheet was just updated.",
	}, s.handleReloadData)
}

func breakdownSchema() *jsonschema.Schema {
	schema, err := jsonschema.For[breakdownArgs](nil)
	if err != nil {
		panic(err)
	}
	describe(schema, "from", "Start date (YYYY-MM-DD). Default: start of the overlap of both datasets.")
	describe(schema, "to", "End date (YYYY-MM-DD), inclusive. Default: end of the overlap of both datasets.")
	describe(schema, "dataset", "Which dataset to break down: 'shifts' or 'services'. Default: 'services'.")
	return schema
}

func qualitySchema() *jsonschema.Schema {
	schema, err := jsonschema.For[qualityArgs](nil)
	if err != nil {
		panic(err)
	}
	describe(schema, "dataset", "Limit the report to 'shifts' or 'services'. Default: both.")
	return schema
}

func (s *Server) handleGetKPIs(ctx context.Context, req *sdk.CallToolRequest, args queryArgs) (*sdk.CallToolResult, any, error) {
	report, err := s.buildReport(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	return textResult(map[string]any{
		"range":           report.Range,
		"span_days":       report.SpanDays,
		"shift_kpis":      report.Shifts,
		"service_kpis":    report.Services,
		"emergency_split": report.EmergencySplit,
		"problems":        report.Problems,
	}), nil, nil
}

func (s *Server) handleGetCategoryBreakdown(ctx context.Context, req *sdk.CallToolRequest, args breakdownArgs) (*sdk.CallToolResult, any, error) {
	dataset, err := datasetArg(args.Dataset, "services")
	if err != nil {
		return nil, nil, err
	}
	report, err := s.buildReport(ctx, args.queryArgs)
	if err != nil {
		return nil, nil, err
	}

	out := map[string]any{
		"range":    report.Range,
		"dataset":  dataset,
		"problems": report.Problems,
	}
	if dataset == "shifts" {
		out["categories"] = report.ShiftCategories
		out["unit"] = "hours"
	} else {
		out["categories"] = report.ServiceCategories
		out["unit"] = "minutes"
	}
	return textResult(out), nil, nil
}

func (s *Server) handleGetWeekdayDistribution(ctx context.Context, req *sdk.CallToolRequest, args queryArgs) (*sdk.CallToolResult, any, error) {
	report, err := s.buildReport(ctx, args)
	if err != nil {
		return nil, nil, err
	}
	return textResult(map[string]any{
		"range":    report.Range,
		"weekdays": report.Weekdays,
		"problems": report.Problems,
	}), nil, nil
}

func (s *Server) handleGetCorrelation(ctx context.Context, req *sdk.CallToolRequest, args queryArgs) (*sdk.CallToolResult, any, error) {
	shiftsDS, servicesDS, err := s.store.LoadBoth(ctx, s.cfg.ShiftsSource, s.cfg.ServicesSource)
	if err != nil {
		return nil, nil, err
	}
	q, err := s.resolveQuery(args, shiftsDS, servicesDS)
	if err != nil {
		return nil, nil, err
	}

	report, err := dashboard.Build(shiftsDS, servicesDS, s.cmap, s.options(), q)
	if err != nil {
		return nil, nil, err
	}
	if report.Correlation == nil {
		if len(report.Problems) > 0 {
			return nil, nil, fmt.Errorf("correlation needs both datasets: %v", report.Problems)
		}
		// Long span: compute anyway so the flag travels with the numbers.
		report.Correlation = s.forceCorrelation(shiftsDS, servicesDS, q)
	}
	return textResult(map[string]any{
		"range":       report.Range,
		"span_days":   report.SpanDays,
		"correlation": report.Correlation,
	}), nil, nil
}

func (s *Server) handleGetDataQuality(ctx context.Context, req *sdk.CallToolRequest, args qualityArgs) (*sdk.CallToolResult, any, error) {
	shiftsDS, servicesDS, err := s.store.LoadBoth(ctx, s.cfg.ShiftsSource, s.cfg.ServicesSource)
	if err != nil {
		return nil, nil, err
	}

	out := make(map[string]any)
	if args.Dataset == "" || args.Dataset == "shifts" {
		out["shifts"] = s.qualityFor(shiftsDS, true)
	}
	if args.Dataset == "" || args.Dataset == "services" {
		out["services"] = s.qualityFor(servicesDS, false)
	}
	if len(out) == 0 {
		return nil, nil, fmt.Errorf("unknown dataset %q, expected 'shifts' or 'services'", args.Dataset)
	}
	return textResult(out), nil, nil
}

func (s *Server) handleReloadData(ctx context.Context, req *sdk.CallToolRequest, args emptyArgs) (*sdk.CallToolResult, any, error) {
	shiftsDS, err := s.store.Reload(ctx, "shifts", s.cfg.ShiftsSource)
	if err != nil {
		return nil, nil, fmt.Errorf("reload shifts: %w", err)
	}
	servicesDS, err := s.store.Reload(ctx, "services", s.cfg.ServicesSource)
	if err != nil {
		return nil, nil, fmt.Errorf("reload services: %w", err)
	}
	return textResult(map[string]any{
		"shifts_rows":   shiftsDS.Len(),
		"services_rows": servicesDS.Len(),
		"reloaded_at":   time.Now().UTC().Format(time.RFC3339),
	}), nil, nil
}
