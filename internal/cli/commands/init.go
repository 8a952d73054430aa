package commands

import (
	"fmt"
	"os"

	"github.com/leapstack-labs/askql/internal/cli/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const sampleCSV = `date,region,sales
2023-01-15,West,50
2023-02-10,East,75
2023-03-05,West,120
2023-04-20,North,90
2023-05-11,East,60
2023-06-30,South,110
2023-07-01,East,100
2023-07-14,West,85
2023-08-22,North,95
2023-09-03,South,70
`

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter askql.yaml and sample dataset",
		RunE:  runInit,
	}
}

func runInit(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if _, err := os.Stat("askql.yaml"); err == nil {
		return fmt.Errorf("askql.yaml already exists")
	}

	cfg := config.Config{
		DatasetPath: config.DefaultDataset,
		DateColumn:  config.DefaultDateColumn,
		Port:        config.DefaultPort,
		MaxTokens:   config.DefaultMaxTokens,
		Output:      config.DefaultOutput,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile("askql.yaml", data, 0o644); err != nil {
		return fmt.Errorf("failed to write askql.yaml: %w", err)
	}
	_, _ = fmt.Fprintln(out, "wrote askql.yaml")

	if _, err := os.Stat(cfg.DatasetPath); os.IsNotExist(err) {
		if err := os.WriteFile(cfg.DatasetPath, []byte(sampleCSV), 0o644); err != nil {
			return fmt.Errorf("failed to write sample dataset: %w", err)
		}
		_, _ = fmt.Fprintf(out, "wrote sample dataset %s\n", cfg.DatasetPath)
	}

	return nil
}
