package normalize

import "fmt"

// Reason classifies why a row failed normalization.
type Reason string

const (
	ReasonMissingDate Reason = "missing_date"
	ReasonBadDate     Reason = "bad_date"
	ReasonBadStart    Reason = "bad_start"
	ReasonBadEnd      Reason = "bad_end"
	ReasonBadDistance Reason = "bad_distance"
)

// maxIssueSamples caps the retained issue samples per reason; counts are
// always complete.
const maxIssueSamples = 25

// Issue points at one failed cell in the source dataset.
type Issue struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Reason Reason `json:"reason"`
	Value  string `json:"value,omitempty"`
}

// Report is the structured diagnostics collector returned alongside a
// canonical dataset. The caller decides how, and whether, to display it.
type Report struct {
	Dataset string         `json:"dataset"`
	Total   int            `json:"total_rows"`
	Valid   int            `json:"valid_rows"`
	Invalid int            `json:"invalid_rows"`
	Counts  map[Reason]int `json:"counts,omitempty"`
	Issues  []Issue        `json:"issues,omitempty"`
}

func newReport(dataset string) *Report {
	return &Report{Dataset: dataset, Counts: make(map[Reason]int)}
}

// record notes a failed cell. Only counts grow past the sample cap.
func (r *Report) record(row int, column string, reason Reason, value string) {
	if r.Counts[reason] < maxIssueSamples {
		r.Issues = append(r.Issues, Issue{Row: row, Column: column, Reason: reason, Value: value})
	}
	r.Counts[reason]++
}

// SchemaError reports a required column missing from a dataset entirely.
// It is fatal for that dataset's load, unlike row-level issues, because it
// indicates a structural mismatch rather than dirty data.
type SchemaError struct {
	Dataset string
	Column  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %q is missing required column %q", e.Dataset, e.Column)
}
