// Package db opens the gorm connection described by DATABASE_URL.
package db

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skeletonhq/backend/internal/db/dsn"
)

// Dialector returns the gorm dialector and engine of a database URL.
func Dialector(databaseURL string) (gorm.Dialector, dsn.Kind, error) {
	kind, source, err := dsn.Parse(databaseURL)
	if err != nil {
		return nil, "", err
	}

	switch kind {
	case dsn.Postgres:
		return gormpostgres.Open(source), kind, nil
	case dsn.MySQL:
		return gormmysql.Open(source), kind, nil
	case dsn.SQLite:
		return sqlite.Open(source), kind, nil
	default:
		return nil, "", errors.Wrapf(dsn.ErrUnsupportedScheme, "%q", kind)
	}
}

// Open connects to the database. l may be nil to use the gorm default logger.
func Open(databaseURL string, l gormlogger.Interface) (*gorm.DB, dsn.Kind, error) {
	dialector, kind, err := Dialector(databaseURL)
	if err != nil {
		return nil, "", err
	}

	cfg := &gorm.Config{}
	if l != nil {
		cfg.Logger = l
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, "", errors.Wrapf(err, "failed to connect %s database", kind)
	}

	if kind == dsn.SQLite {
		// sqlite allows a single writer, and every :memory: connection is a new database
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, "", errors.Wrap(errDB, "failed to get sql.DB")
		}

		sqlDB.SetMaxOpenConns(1)
	}

	return db, kind, nil
}
