// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/logger"
)

var (
	envFile string // Path to the dotenv file

	rootCmd = &cobra.Command{
		Use:   "backend",
		Short: "backend is a REST API service skeleton",
		Long: `backend is a REST API service skeleton built on fiber and gorm.
It loads its settings from the environment and an optional .env file,
serves diagnostics and a versioned API, and manages database migrations.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		config.DefaultEnvFile,
		"dotenv file read before the process environment",
	)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadSettings reads the settings and initializes logging.
func loadSettings(dev bool) (*config.Settings, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}

	if dev {
		cfg.Debug = true
	}

	if err = logger.Init(cfg.Log()); err != nil {
		return nil, err
	}

	return cfg, nil
}
