package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Dataset is one decoded tabular source: a header row plus typed cells.
// Row order is preserved so diagnostics can point back at source rows.
type Dataset struct {
	SourceID string
	Columns  []string
	Rows     [][]Cell

	headerIdx map[string]int
}

// DecodeCSV reads an entire CSV stream into a Dataset. Ragged rows are
// tolerated; cells beyond the header width are kept so index lookups stay
// safe either way.
func DecodeCSV(r io.Reader, sourceID string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}

	ds := &Dataset{
		SourceID:  sourceID,
		Columns:   headers,
		headerIdx: make(map[string]int, len(headers)),
	}
	for idx, header := range headers {
		normalized := NormalizeHeader(header)
		if _, exists := ds.headerIdx[normalized]; !exists {
			ds.headerIdx[normalized] = idx
		}
	}

	for {
		record, err := reader.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		if len(record) == 0 {
			continue
		}
		cells := make([]Cell, len(record))
		for i, field := range record {
			cells[i] = ClassifyCell(field)
		}
		ds.Rows = append(ds.Rows, cells)
	}

	return ds, nil
}

// ColumnIndex resolves the first alias that matches a header, by normalized
// name. Returns -1, false when none match.
func (d *Dataset) ColumnIndex(aliases ...string) (int, bool) {
	for _, alias := range aliases {
		if idx, ok := d.headerIdx[NormalizeHeader(alias)]; ok {
			return idx, true
		}
	}
	return -1, false
}

// Cell returns the cell at (row, col), or a missing cell when the row is
// shorter than the header.
func (d *Dataset) Cell(row, col int) Cell {
	if col < 0 || row < 0 || row >= len(d.Rows) {
		return Cell{Kind: CellMissing}
	}
	cells := d.Rows[row]
	if col >= len(cells) {
		return Cell{Kind: CellMissing}
	}
	return cells[col]
}

// Len returns the number of data rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// NormalizeHeader lowercases a header and strips separators and bracket
// noise, so "[P]Ore", "Km effet." and "km_effettivi" style headers all
// resolve through the same key space.
func NormalizeHeader(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, ch := range []string{" ", "_", "-", ".", "[", "]"} {
		value = strings.ReplaceAll(value, ch, "")
	}
	return value
}
