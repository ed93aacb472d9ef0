package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP API",
	Long: `Run the validation HTTP API.

Exposes POST /api/validate on the configured address. The server shares
one backend session across requests; once any request has fallen back
to the secondary backend the session reports itself as degraded, though
every request still tries the primary first. Shuts down gracefully on
SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer log.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := orchestrator.NewSession(cfg, log)
	srv := server.New(cfg, session, log)
	return srv.Run(ctx)
}
