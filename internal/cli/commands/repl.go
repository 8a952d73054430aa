package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/askql/internal/engine"
	"github.com/spf13/cobra"
)

// NewReplCmd creates the repl command.
func NewReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive question loop",
		RunE:  runRepl,
	}
}

func runRepl(cmd *cobra.Command, _ []string) error {
	eng, cfg, _, err := buildEngine(cmd, true)
	if err != nil {
		return err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "askql> ",
		HistoryFile:     ".askql_history",
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "askql REPL (dataset: %s, %d rows)\n", cfg.DatasetPath, eng.Dataset().NumRows())
	_, _ = fmt.Fprintln(out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(out)

	format := cfg.Output
	lastCode := ""
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if line == ".quit" || line == ".exit" {
				break
			}
			format = handleDotCommand(out, eng, line, format, lastCode)
			continue
		}

		answer, err := eng.Ask(cmd.Context(), line)
		if err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		lastCode = answer.Code
		if err := renderOutcome(out, answer.Outcome, format); err != nil {
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
	}

	return nil
}

// handleDotCommand processes a REPL dot-command and returns the (possibly
// updated) output format.
func handleDotCommand(out io.Writer, eng *engine.Engine, line, format, lastCode string) string {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".help":
		_, _ = fmt.Fprintln(out, "Commands:")
		_, _ = fmt.Fprintln(out, "  .help             show this help")
		_, _ = fmt.Fprintln(out, "  .columns          list dataset columns")
		_, _ = fmt.Fprintln(out, "  .code             show the last generated expression")
		_, _ = fmt.Fprintln(out, "  .format FORMAT    set output format (table, json, csv)")
		_, _ = fmt.Fprintln(out, "  .quit             exit")
	case ".columns":
		_, _ = fmt.Fprintln(out, strings.Join(eng.Dataset().Columns(), ", "))
	case ".code":
		if lastCode == "" {
			_, _ = fmt.Fprintln(out, "(no expression generated yet)")
		} else {
			_, _ = fmt.Fprintln(out, lastCode)
		}
	case ".format":
		if len(fields) != 2 || (fields[1] != "table" && fields[1] != "json" && fields[1] != "csv") {
			_, _ = fmt.Fprintln(out, "usage: .format table|json|csv")
			return format
		}
		return fields[1]
	default:
		_, _ = fmt.Fprintf(out, "unknown command %s (try .help)\n", fields[0])
	}
	return format
}
