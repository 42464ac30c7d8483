package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skeletonhq/backend/internal/db"
	"github.com/skeletonhq/backend/internal/db/migrate"
	"github.com/skeletonhq/backend/internal/logger"
	gormadapter "github.com/skeletonhq/backend/internal/logger/adapter/gorm"
	"github.com/skeletonhq/backend/migrations"
)

func init() { //nolint: gochecknoinits
	migrateCreateCmd.Flags().StringVar(
		&migrationsDir,
		"dir",
		"migrations/"+migrations.Dir,
		"directory the new migration files are written to",
	)

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateCreateCmd)
	rootCmd.AddCommand(migrateCmd)
}

var (
	migrationsDir string

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
		Args:  cobra.NoArgs,
	}

	migrateUpCmd = &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrate.Migrator) error {
				return m.Up()
			})
		},
	}

	migrateDownCmd = &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrate.Migrator) error {
				return m.Down()
			})
		},
	}

	migrateVersionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(func(m *migrate.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)

				return err
			})
		},
	}

	migrateCreateCmd = &cobra.Command{
		Use:   "create <message>",
		Short: "Create an empty up/down migration pair",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			up, down, err := migrate.Create(migrationsDir, strings.Join(args, " "), time.Now())
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", up, down)

			return err
		},
	}
)

// withMigrator opens the database of DATABASE_URL and runs fn with a migrator
// reading the embedded migration files.
func withMigrator(fn func(m *migrate.Migrator) error) error {
	cfg, err := loadSettings(false)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Close()
	}()

	gormDB, kind, err := db.Open(cfg.DatabaseURL, gormadapter.New(gormadapter.Config{}))
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	m, err := migrate.New(sqlDB, kind, migrations.FS, migrations.Dir)
	if err != nil {
		_ = sqlDB.Close()

		return err
	}

	defer func() {
		if errC := m.Close(); errC != nil {
			log.Error().Err(errC).Msg("failed to close migrator")
		}
	}()

	return fn(m)
}
