package commands

import (
	"encoding/json"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewInfoCmd creates the info command.
func NewInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Describe the loaded dataset",
		RunE:  runInfo,
	}
}

func runInfo(cmd *cobra.Command, _ []string) error {
	eng, cfg, _, err := buildEngine(cmd, true)
	if err != nil {
		return err
	}

	info := eng.Dataset().Describe(cfg.DateColumn)
	out := cmd.OutOrStdout()

	if cfg.Output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	_, _ = fmt.Fprintf(out, "Dataset: %s\n", cfg.DatasetPath)
	_, _ = fmt.Fprintf(out, "Rows: %d\n", info.RowCount)
	if info.DateRange != nil {
		_, _ = fmt.Fprintf(out, "Date range: %s to %s\n", info.DateRange.Start, info.DateRange.End)
	}
	_, _ = fmt.Fprintln(out)

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	headerRow := make(table.Row, len(info.Columns))
	for i, col := range info.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)
	for _, sample := range info.Sample {
		row := make(table.Row, len(info.Columns))
		for i, col := range info.Columns {
			row[i] = formatValue(sample[col])
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(out, "(first %d rows)\n", len(info.Sample))
	return nil
}
