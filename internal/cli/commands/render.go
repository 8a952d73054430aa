package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leapstack-labs/askql/internal/sandbox"
)

// renderOutcome writes an execution outcome in the requested format.
func renderOutcome(w io.Writer, o *sandbox.Outcome, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	case "csv":
		return renderCSV(w, o)
	default:
		return renderTable(w, o)
	}
}

func renderTable(w io.Writer, o *sandbox.Outcome) error {
	switch o.Kind {
	case sandbox.KindTable:
		if len(o.Rows) == 0 {
			_, _ = fmt.Fprintln(w, "(0 rows)")
			return nil
		}
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)

		headerRow := make(table.Row, len(o.Columns))
		for i, col := range o.Columns {
			headerRow[i] = col
		}
		t.AppendHeader(headerRow)

		for _, result := range o.Rows {
			row := make(table.Row, len(o.Columns))
			for i, col := range o.Columns {
				row[i] = formatValue(result[col])
			}
			t.AppendRow(row)
		}
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(o.Rows))
		return nil

	case sandbox.KindSeries:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		name := o.Name
		if name == "" {
			name = "value"
		}
		t.AppendHeader(table.Row{"key", name})
		for _, k := range sortedKeys(o.Values) {
			t.AppendRow(table.Row{k, formatValue(o.Values[k])})
		}
		t.Render()
		return nil

	case sandbox.KindScalar:
		_, _ = fmt.Fprintln(w, formatValue(o.Value))
		return nil

	default:
		_, _ = fmt.Fprintln(w, o.Text)
		return nil
	}
}

func renderCSV(w io.Writer, o *sandbox.Outcome) error {
	switch o.Kind {
	case sandbox.KindTable:
		_, _ = fmt.Fprintln(w, strings.Join(o.Columns, ","))
		for _, result := range o.Rows {
			values := make([]string, len(o.Columns))
			for i, col := range o.Columns {
				values[i] = escapeCSV(formatValue(result[col]))
			}
			_, _ = fmt.Fprintln(w, strings.Join(values, ","))
		}
		return nil

	case sandbox.KindSeries:
		name := o.Name
		if name == "" {
			name = "value"
		}
		_, _ = fmt.Fprintf(w, "key,%s\n", escapeCSV(name))
		for _, k := range sortedKeys(o.Values) {
			_, _ = fmt.Fprintf(w, "%s,%s\n", escapeCSV(k), escapeCSV(formatValue(o.Values[k])))
		}
		return nil

	case sandbox.KindScalar:
		_, _ = fmt.Fprintln(w, formatValue(o.Value))
		return nil

	default:
		_, _ = fmt.Fprintln(w, o.Text)
		return nil
	}
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatValue(v any) string {
	if v == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", v)
}

func escapeCSV(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}
