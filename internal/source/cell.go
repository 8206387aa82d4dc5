// Package source acquires the raw tabular datasets (duty roster and dispatch
// log) from spreadsheet CSV exports or local files, and caches them keyed by
// source identity.
package source

import (
	"strconv"
	"strings"
)

// CellKind discriminates the raw value variants a spreadsheet cell can carry.
type CellKind int

const (
	CellMissing CellKind = iota
	CellText
	CellNumber
)

// Cell is a single raw cell. Consumers pattern-match on Kind instead of
// coercing; Raw always preserves the original text for diagnostics.
type Cell struct {
	Kind   CellKind
	Raw    string
	Number float64
}

// IsMissing reports whether the cell was empty in the source.
func (c Cell) IsMissing() bool {
	return c.Kind == CellMissing
}

// Text returns the trimmed raw text of the cell, "" when missing.
func (c Cell) Text() string {
	return c.Raw
}

// ClassifyCell converts one CSV field into a typed Cell. Plain numerics
// (dot decimal separator) become CellNumber; everything else stays text.
// Comma-decimal forms are left as text so the parsers can resolve them
// against the locale convention.
func ClassifyCell(field string) Cell {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return Cell{Kind: CellMissing}
	}
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Kind: CellNumber, Raw: trimmed, Number: v}
	}
	return Cell{Kind: CellText, Raw: trimmed}
}
