package commands

import (
	"github.com/leapstack-labs/askql/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the question-answering API over HTTP",
		Long: `Start an HTTP server exposing POST /ask, GET /data-info, and
GET /healthz. A missing dataset does not prevent startup; every query then
fails with a uniform error until the dataset is fixed and the server
restarted.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	eng, cfg, logger, err := buildEngine(cmd, false)
	if err != nil {
		return err
	}

	srv := server.New(server.Config{
		Engine:     eng,
		Port:       cfg.Port,
		DateColumn: cfg.DateColumn,
		Logger:     logger,
	})
	return srv.Serve(cmd.Context())
}
