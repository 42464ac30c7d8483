// Package migrate runs the embedded SQL migrations with golang-migrate.
package migrate

import (
	"database/sql"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/skeletonhq/backend/internal/db/dsn"
	"github.com/skeletonhq/backend/internal/logger/adapter/stdlogger"
)

// Migrator applies versioned migrations to one database. It owns the
// connection handed to New and closes it in Close.
type Migrator struct {
	m     *migrate.Migrate
	empty bool
}

// New prepares a migrator reading migration files from dir inside fsys.
func New(db *sql.DB, kind dsn.Kind, fsys fs.FS, dir string) (*Migrator, error) {
	driver, err := databaseDriver(db, kind)
	if err != nil {
		return nil, err
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migrations")
	}

	return newMigrator(src, string(kind), driver)
}

func newMigrator(src source.Driver, name string, driver database.Driver) (*Migrator, error) {
	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init migrations")
	}

	m.Log = stdlogger.New()

	_, err = src.First()

	switch {
	case err == nil:
		return &Migrator{m: m}, nil
	case errors.Is(err, fs.ErrNotExist):
		return &Migrator{m: m, empty: true}, nil
	default:
		_, _ = m.Close()

		return nil, errors.Wrap(err, "failed to list migrations")
	}
}

func databaseDriver(db *sql.DB, kind dsn.Kind) (database.Driver, error) {
	var (
		driver database.Driver
		err    error
	)

	switch kind {
	case dsn.Postgres:
		driver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	case dsn.MySQL:
		driver, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	default:
		return nil, errors.Wrapf(ErrUnsupportedDriver, "%s", kind)
	}

	if err != nil {
		return nil, errors.Wrapf(err, "failed to init %s migration driver", kind)
	}

	return driver, nil
}

// Up applies all pending migrations.
func (x *Migrator) Up() error {
	if x.empty {
		log.Info().Msg("no migrations found")

		return nil
	}

	return x.result(x.m.Up(), "up")
}

// Down rolls back the most recent migration.
func (x *Migrator) Down() error {
	if x.empty {
		log.Info().Msg("no migrations found")

		return nil
	}

	return x.result(x.m.Steps(-1), "down")
}

// Version returns the current schema version, 0 when nothing was applied.
func (x *Migrator) Version() (uint, bool, error) {
	version, dirty, err := x.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}

	if err != nil {
		return 0, false, errors.Wrap(err, "failed to read migration version")
	}

	return version, dirty, nil
}

// Close releases the source and the database connection.
func (x *Migrator) Close() error {
	srcErr, dbErr := x.m.Close()
	if srcErr != nil {
		return errors.Wrap(srcErr, "failed to close migration source")
	}

	if dbErr != nil {
		return errors.Wrap(dbErr, "failed to close migration database")
	}

	return nil
}

func (x *Migrator) result(err error, direction string) error {
	switch {
	case err == nil:
		log.Info().Str("direction", direction).Msg("migrations applied")

		return nil
	case errors.Is(err, migrate.ErrNoChange), errors.Is(err, fs.ErrNotExist):
		log.Info().Str("direction", direction).Msg("no change")

		return nil
	default:
		return errors.Wrapf(err, "migrate %s failed", direction)
	}
}
