// Package cli provides the command-line interface for askql.
package cli

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/leapstack-labs/askql/internal/cli/commands"
	"github.com/leapstack-labs/askql/internal/cli/config"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "askql",
		Short: "askql - ask questions about a tabular dataset",
		Long: `askql answers natural-language questions about a CSV dataset.

Each question is translated into a query expression, checked by a safety
validator, and executed in a restricted sandbox against the dataset.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "init" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.Kitchen,
			}))

			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), logger)
			cmd.SetContext(ctx)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: askql.yaml)")
	flags.String("dataset", config.DefaultDataset, "path to the CSV dataset")
	flags.String("date-column", config.DefaultDateColumn, "name of the date column")
	flags.Int("port", config.DefaultPort, "HTTP listen port for serve")
	flags.String("model", "", "remote generator model")
	flags.Int64("max-tokens", config.DefaultMaxTokens, "remote generator response token cap")
	flags.StringP("output", "o", config.DefaultOutput, "output format: table, json, or csv")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		commands.NewAskCmd(),
		commands.NewReplCmd(),
		commands.NewServeCmd(),
		commands.NewInfoCmd(),
		commands.NewInitCmd(),
		commands.NewVersionCmd(Version, BuildDate, GitCommit),
	)

	return rootCmd
}

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
