package dataset

// csv.go - loading a dataset from a CSV file

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Date layouts accepted by the cell sniffer, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

// LoadCSV reads a CSV file into a Table. The first record is the header.
// dateColumn is the column required to parse as dates; a value in it that
// parses as none of the accepted layouts is an error, because downstream
// time filters depend on it.
func LoadCSV(path, dateColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f, dateColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// ReadCSV parses CSV content from r into a Table.
func ReadCSV(r io.Reader, dateColumn string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	cols := make([]string, len(header))
	for i, h := range header {
		cols[i] = strings.TrimSpace(h)
	}

	dateIdx := -1
	for i, c := range cols {
		if c == dateColumn {
			dateIdx = i
		}
	}

	var rows [][]any
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		line++

		row := make([]any, len(cols))
		for i, raw := range record {
			if i >= len(cols) {
				break
			}
			if i == dateIdx {
				ts, ok := parseDate(raw)
				if !ok {
					return nil, fmt.Errorf("line %d: column %q: cannot parse %q as a date", line, dateColumn, raw)
				}
				row[i] = ts
				continue
			}
			row[i] = sniffCell(raw)
		}
		rows = append(rows, row)
	}

	return New(cols, rows)
}

// sniffCell converts a raw CSV field to a typed cell value.
func sniffCell(raw string) any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if ts, ok := parseDate(s); ok {
		return ts
	}
	return s
}

func parseDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}
