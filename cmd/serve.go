package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/huangsam/timesheet/internal/server"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// serveCmd runs the HTTP API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Timesheet HTTP API",
	Long: `Serve reports, downloads, holidays, preferences and the strain chart over HTTP.

Worklogs are uploaded to POST /api/snapshots and referenced by id afterwards.

Examples:
  timesheet serve --addr :9000
  TIMESHEET_SNAPSHOT_BACKEND=postgresql TIMESHEET_SNAPSHOT_DB_CONNECT="..." timesheet serve`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		zerolog.TimeFieldFormat = time.RFC3339
		log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "timesheet").Logger()

		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := server.New(cfg, storeManager, log).Run(ctx); err != nil {
			log.Error().Err(err).Msg("http server failed")
			return err
		}
		return nil
	},
}
