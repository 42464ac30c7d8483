// Package daemon wires the application dependencies in a fixed order and runs
// the web service.
package daemon

import (
	"context"
	stderrors "errors"

	"github.com/gofiber/fiber/v3"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	storagepostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/cache"
	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/db"
	"github.com/skeletonhq/backend/internal/db/dsn"
	"github.com/skeletonhq/backend/internal/errortracking"
	gormadapter "github.com/skeletonhq/backend/internal/logger/adapter/gorm"
	"github.com/skeletonhq/backend/internal/web"
	"github.com/skeletonhq/backend/internal/web/handler/system"
)

const (
	// LimiterTable stores the rate limit counters when RATE_LIMIT_STORAGE=database.
	LimiterTable = "rate_limits"

	// CacheCheck names the cache dependency of the readiness probe.
	CacheCheck = "cache"

	storageDatabase = "database"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg            *config.Settings
	db             *gorm.DB
	kind           dsn.Kind
	cache          *cache.Cache
	limiterStorage fiber.Storage
	webService     *web.Service
}

// Option changes how the daemon is built.
type Option func(*options)

type options struct {
	devMode bool
}

// WithDevMode reads templates from the working tree.
func WithDevMode() Option {
	return func(o *options) { o.devMode = true }
}

// New builds the daemon: gorm logger, database, cache, error tracking,
// limiter storage and finally the web service with its lifecycle hooks.
// Whatever was opened is released again if a later step fails.
func New(cfg *config.Settings, opts ...Option) (*Daemon, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	d := &Daemon{cfg: cfg}

	if err := d.init(o); err != nil {
		_ = d.release()

		return nil, err
	}

	return d, nil
}

func (d *Daemon) init(o options) error {
	var err error

	d.db, d.kind, err = db.Open(d.cfg.DatabaseURL, gormadapter.New(gormadapter.Config{
		IgnoreRecordNotFoundError: true,
	}))
	if err != nil {
		return err
	}

	log.Info().Str("driver", string(d.kind)).Msg("database connected")

	checks := map[string]system.Pinger{}

	if d.cfg.RedisURL != "" {
		if d.cache, err = cache.New(d.cfg.RedisURL); err != nil {
			return err
		}

		checks[CacheCheck] = d.cache
	}

	if _, err = errortracking.Init(d.cfg.SentryDSN, d.cfg.Version, d.cfg.Environment, d.cfg.Debug); err != nil {
		return err
	}

	if d.limiterStorage, err = newLimiterStorage(d.cfg, d.kind); err != nil {
		return err
	}

	d.webService, err = web.New(d.cfg, web.Deps{
		DB:             d.db,
		Checks:         checks,
		LimiterStorage: d.limiterStorage,
		DevMode:        o.devMode,
	})
	if err != nil {
		return err
	}

	d.webService.OnShutdown(func(context.Context) error {
		return d.release()
	})

	return nil
}

// newLimiterStorage returns nil for the in memory limiter.
func newLimiterStorage(cfg *config.Settings, kind dsn.Kind) (fiber.Storage, error) {
	if cfg.RateLimitStorage != storageDatabase || cfg.RateLimitPerMinute == 0 {
		return nil, nil //nolint:nilnil
	}

	_, source, err := dsn.Parse(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case dsn.Postgres:
		return storagepostgres.New(storagepostgres.Config{
			ConnectionURI: source,
			Table:         LimiterTable,
		}), nil
	case dsn.MySQL:
		return storagemysql.New(storagemysql.Config{
			ConnectionURI: source,
			Table:         LimiterTable,
		}), nil
	default:
		log.Warn().Str("driver", string(kind)).Msg("no database limiter storage for driver, keeping counters in memory")

		return nil, nil //nolint:nilnil
	}
}

// release closes every opened dependency and flushes error tracking.
func (d *Daemon) release() error {
	var errs []error

	if d.limiterStorage != nil {
		if err := d.limiterStorage.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close limiter storage"))
		}

		d.limiterStorage = nil
	}

	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			errs = append(errs, errors.Wrap(err, "failed to close cache"))
		}

		d.cache = nil
	}

	if d.db != nil {
		if sqlDB, err := d.db.DB(); err == nil {
			if err = sqlDB.Close(); err != nil {
				errs = append(errs, errors.Wrap(err, "failed to close database"))
			}
		}

		d.db = nil
	}

	errortracking.Flush(d.cfg.ShutdownTimeout)

	return stderrors.Join(errs...)
}

// Web returns the web service.
func (d *Daemon) Web() *web.Service {
	return d.webService
}

// Run serves until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	return d.webService.Run(ctx, d.cfg.ListenAddr())
}
