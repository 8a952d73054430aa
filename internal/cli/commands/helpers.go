// Package commands implements the askql subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/askql/internal/cli/config"
	"github.com/leapstack-labs/askql/internal/dataset"
	"github.com/leapstack-labs/askql/internal/engine"
	"github.com/leapstack-labs/askql/internal/generate"
	"github.com/spf13/cobra"
)

// apiKeyEnv gates the remote generator: without it only the local
// translator runs.
const apiKeyEnv = "ANTHROPIC_API_KEY"

// currentConfig returns the loaded configuration, failing loudly if a
// command ran without the root PersistentPreRunE.
func currentConfig() (*config.Config, error) {
	cfg := config.GetCurrentConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return cfg, nil
}

// newRemote builds the remote generator when an API key is configured.
func newRemote(cfg *config.Config, logger *slog.Logger) generate.Remote {
	if os.Getenv(apiKeyEnv) == "" {
		return nil
	}
	logger.Debug("remote generator enabled", "model", cfg.Model)
	return generate.NewAnthropicGenerator(cfg.Model, cfg.MaxTokens, logger)
}

// buildEngine loads the dataset and assembles the pipeline engine.
// When requireData is false a dataset load failure is logged and the
// engine starts empty, failing each query with a uniform error instead.
func buildEngine(cmd *cobra.Command, requireData bool) (*engine.Engine, *config.Config, *slog.Logger, error) {
	cfg, err := currentConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := config.GetLogger(cmd.Context())

	data, err := dataset.LoadCSV(cfg.DatasetPath, cfg.DateColumn)
	if err != nil {
		if requireData {
			return nil, nil, nil, err
		}
		logger.Error("dataset unavailable, queries will fail", "error", err)
		data = nil
	} else {
		logger.Info("dataset loaded", "path", cfg.DatasetPath, "rows", data.NumRows())
	}

	eng := engine.New(engine.Config{
		Dataset: data,
		Remote:  newRemote(cfg, logger),
		Logger:  logger,
	})
	return eng, cfg, logger, nil
}
