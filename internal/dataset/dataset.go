// Package dataset provides the immutable in-memory tabular dataset that
// queries are answered against. A Table is loaded once at startup and is
// never written to afterwards; every accessor returns copies so callers
// cannot reach into shared storage.
package dataset

import (
	"fmt"
	"time"
)

// Table is an ordered collection of named columns with row-aligned cells.
// Cell values are one of: string, float64, bool, time.Time, or nil.
// A Table is immutable after construction.
type Table struct {
	cols []string
	rows [][]any
}

// New creates a Table from column names and row-major cells.
// Every row must have exactly one cell per column.
func New(columns []string, rows [][]any) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset requires at least one column")
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(columns))
		}
	}

	t := &Table{
		cols: append([]string(nil), columns...),
		rows: make([][]any, len(rows)),
	}
	for i, row := range rows {
		t.rows[i] = append([]any(nil), row...)
	}
	return t, nil
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return append([]string(nil), t.cols...)
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.rows)
}

// ColumnIndex returns the position of a named column, or -1 if absent.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// Row returns a copy of the cells of row i.
func (t *Table) Row(i int) []any {
	return append([]any(nil), t.rows[i]...)
}

// Cell returns the value at (row, col) without copying. The returned value
// is one of the immutable cell types, so sharing is safe.
func (t *Table) Cell(row, col int) any {
	return t.rows[row][col]
}

// Column returns a copy of all cells in the named column.
func (t *Table) Column(name string) ([]any, error) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("unknown column %q", name)
	}
	out := make([]any, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Info summarizes a loaded dataset for callers that want to describe it
// without receiving the full contents.
type Info struct {
	Columns  []string         `json:"columns"`
	RowCount int              `json:"row_count"`
	Sample   []map[string]any `json:"sample_data"`
	// Categorical lists the distinct values of each all-string column, in
	// first-seen order, keyed by column name.
	Categorical map[string][]string `json:"categorical_values,omitempty"`
	DateRange   *DateRange          `json:"date_range,omitempty"`
}

// DateRange is the inclusive span of a date column.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

const sampleRows = 5

// Describe builds an Info summary. dateColumn names the column used for the
// date range; if it is missing or holds no time values the range is omitted.
func (t *Table) Describe(dateColumn string) Info {
	info := Info{
		Columns:  t.Columns(),
		RowCount: t.NumRows(),
	}

	n := t.NumRows()
	if n > sampleRows {
		n = sampleRows
	}
	info.Sample = make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		row := make(map[string]any, len(t.cols))
		for j, c := range t.cols {
			row[c] = RenderCell(t.rows[i][j])
		}
		info.Sample = append(info.Sample, row)
	}

	for j, c := range t.cols {
		if c == dateColumn {
			continue
		}
		if vals, ok := t.distinctStrings(j); ok {
			if info.Categorical == nil {
				info.Categorical = make(map[string][]string)
			}
			info.Categorical[c] = vals
		}
	}

	if idx := t.ColumnIndex(dateColumn); idx >= 0 {
		var lo, hi time.Time
		seen := false
		for _, row := range t.rows {
			ts, ok := row[idx].(time.Time)
			if !ok {
				continue
			}
			if !seen || ts.Before(lo) {
				lo = ts
			}
			if !seen || ts.After(hi) {
				hi = ts
			}
			seen = true
		}
		if seen {
			info.DateRange = &DateRange{
				Start: FormatTime(lo),
				End:   FormatTime(hi),
			}
		}
	}

	return info
}

// distinctStrings collects the distinct values of column j in first-seen
// order. It reports false when the column holds any non-string cell or no
// values at all, so only genuinely categorical columns are summarized.
func (t *Table) distinctStrings(j int) ([]string, bool) {
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.rows {
		cell := row[j]
		if cell == nil {
			continue
		}
		s, ok := cell.(string)
		if !ok {
			return nil, false
		}
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out, len(out) > 0
}

// RenderCell converts a cell value into a JSON-safe representation.
// Times become strings; every other cell type already serializes cleanly.
func RenderCell(v any) any {
	if ts, ok := v.(time.Time); ok {
		return FormatTime(ts)
	}
	return v
}

// FormatTime renders a timestamp, dropping the time-of-day part when it is
// midnight UTC so date-only datasets read naturally.
func FormatTime(ts time.Time) string {
	if ts.Hour() == 0 && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
		return ts.Format("2006-01-02")
	}
	return ts.Format(time.RFC3339)
}
