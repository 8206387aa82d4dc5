package mcp

import (
	"strings"
	"testing"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"opsboard/internal/config"
	"opsboard/internal/normalize"
	"opsboard/internal/source"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.AppConfig{DayFirst: true}
	return NewServer(cfg, source.NewStore(t.TempDir(), 0), normalize.DefaultCategoryMap(), "test")
}

func testDatasets(t *testing.T) (*source.Dataset, *source.Dataset) {
	t.Helper()
	shifts, err := source.DecodeCSV(strings.NewReader(
		"Data,Inizio,Fine,Categoria\n2024-01-02,08:00,14:00,[TS] Mattina\n2024-01-10,08:00,14:00,[TS] Mattina\n"), "shifts")
	if err != nil {
		t.Fatal(err)
	}
	services, err := source.DecodeCSV(strings.NewReader(
		"GG,[P]Ore,[A]Ore,Km effet.,Mezzo,Intervento\n2024-01-01,09:00,09:45,15,ECHO-1,[TS] x\n2024-01-08,10:00,10:30,8,ECHO-1,[TS] y\n"), "services")
	if err != nil {
		t.Fatal(err)
	}
	return shifts, services
}

func TestResolveQueryExplicitRange(t *testing.T) {
	s := testServer(t)
	shifts, services := testDatasets(t)

	q, err := s.resolveQuery(queryArgs{From: "2024-01-01", To: "2024-01-07", Vehicles: []string{"ECHO-1"}}, shifts, services)
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	if q.Range.SpanDays() != 7 {
		t.Errorf("SpanDays = %d, want 7", q.Range.SpanDays())
	}
	if len(q.Vehicles) != 1 {
		t.Error("filters must pass through")
	}
}

func TestResolveQueryDefaultRange(t *testing.T) {
	s := testServer(t)
	shifts, services := testDatasets(t)

	q, err := s.resolveQuery(queryArgs{}, shifts, services)
	if err != nil {
		t.Fatalf("resolveQuery: %v", err)
	}
	// Overlap of Jan 2-10 (shifts) and Jan 1-8 (services).
	if !q.Range.Start.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Start = %v, want Jan 2", q.Range.Start)
	}
	if !q.Range.End.Equal(time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("End = %v, want Jan 8", q.Range.End)
	}
}

func TestResolveQueryRejectsHalfRange(t *testing.T) {
	s := testServer(t)
	shifts, services := testDatasets(t)

	if _, err := s.resolveQuery(queryArgs{From: "2024-01-01"}, shifts, services); err == nil {
		t.Error("expected error for 'from' without 'to'")
	}
	if _, err := s.resolveQuery(queryArgs{From: "01/02/2024", To: "2024-01-07"}, shifts, services); err == nil {
		t.Error("expected error for a non-ISO date")
	}
	if _, err := s.resolveQuery(queryArgs{From: "2024-01-07", To: "2024-01-01"}, shifts, services); err == nil {
		t.Error("expected error for an inverted range")
	}
}

func TestDatasetArg(t *testing.T) {
	tests := []struct {
		value, fallback, want string
		wantErr               bool
	}{
		{"", "services", "services", false},
		{"shifts", "services", "shifts", false},
		{"services", "services", "services", false},
		{"bogus", "services", "", true},
	}
	for _, tt := range tests {
		got, err := datasetArg(tt.value, tt.fallback)
		if (err != nil) != tt.wantErr {
			t.Errorf("datasetArg(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("datasetArg(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestTextResult(t *testing.T) {
	result := textResult(map[string]int{"rows": 3})
	if len(result.Content) != 1 {
		t.Fatalf("content blocks = %d, want 1", len(result.Content))
	}
	text, ok := result.Content[0].(*sdk.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	if !strings.Contains(text.Text, `"rows": 3`) {
		t.Errorf("payload not rendered: %s", text.Text)
	}
}

func TestQuerySchemaHasDescriptions(t *testing.T) {
	schema := querySchema()
	for _, field := range []string{"from", "to", "categories", "vehicles"} {
		prop, ok := schema.Properties[field]
		if !ok {
			t.Fatalf("schema missing property %q", field)
		}
		if prop.Description == "" {
			t.Errorf("property %q has no description", field)
		}
	}
}
