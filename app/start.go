package app

import (
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skeletonhq/backend/internal/daemon"
	"github.com/skeletonhq/backend/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode (debug, pretty logs, templates from disk)")

	rootCmd.AddCommand(startCmd)
}

var (
	devMode bool

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the web service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadSettings(devMode)
			if err != nil {
				return err
			}

			defer func() {
				_ = logger.Close()
			}()

			var opts []daemon.Option
			if devMode {
				opts = append(opts, daemon.WithDevMode())
			}

			d, err := daemon.New(cfg, opts...)
			if err != nil {
				log.Error().Err(err).Msg("failed to build daemon")

				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return d.Run(ctx)
		},
	}
)
