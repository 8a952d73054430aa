package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewAskCmd creates the ask command.
func NewAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer one question about the dataset",
		Long: `Translate a natural-language question into a query expression, run it
against the dataset, and print the result.`,
		Args: cobra.ExactArgs(1),
		RunE: runAsk,
	}
}

func runAsk(cmd *cobra.Command, args []string) error {
	eng, cfg, _, err := buildEngine(cmd, true)
	if err != nil {
		return err
	}

	answer, err := eng.Ask(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if cfg.Output == "table" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "-- %s\n", answer.Code)
	}
	return renderOutcome(cmd.OutOrStdout(), answer.Outcome, cfg.Output)
}
