// Package web assembles the served application: middleware, static mounts,
// diagnostics, documentation and the versioned API.
package web

import (
	"context"
	"errors"
	"net/url"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	v1 "github.com/skeletonhq/backend/internal/api/v1"
	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/db/models"
	accesslog "github.com/skeletonhq/backend/internal/logger/adapter/fiber"
	"github.com/skeletonhq/backend/internal/metrics"
	"github.com/skeletonhq/backend/internal/web/handler"
	"github.com/skeletonhq/backend/internal/web/handler/docs"
	"github.com/skeletonhq/backend/internal/web/handler/system"
	"github.com/skeletonhq/backend/internal/web/middleware/trustedhost"
)

// Hook runs at startup or shutdown.
type Hook func(ctx context.Context) error

// Deps are the collaborators of the served application. All fields are optional.
type Deps struct {
	// DB is pinged by the readiness probe and receives the metadata tables at startup.
	DB *gorm.DB

	// Metadata lists the tables created at startup. Default: models.All().
	Metadata *models.Metadata

	// Checks are additional readiness dependencies, e.g. the cache.
	Checks map[string]system.Pinger

	// LimiterStorage keeps the rate limit counters. Default: in memory.
	LimiterStorage fiber.Storage

	// Handlers is the API route table. Default: v1.Handlers().
	Handlers []handler.Service

	// DevMode reads templates from the working tree.
	DevMode bool
}

// Service represents the web service.
type Service struct {
	App *fiber.App
	cfg *config.Settings

	alive atomic.Bool

	mu       sync.Mutex
	startup  []Hook
	shutdown []Hook
}

// allMethods are allowed by the CORS policy.
var allMethods = []string{ //nolint:gochecknoglobals
	fiber.MethodGet, fiber.MethodPost, fiber.MethodHead, fiber.MethodPut,
	fiber.MethodDelete, fiber.MethodPatch, fiber.MethodOptions,
}

// New creates the served application.
func New(cfg *config.Settings, deps Deps) (*Service, error) { //nolint:funlen
	if cfg == nil {
		return nil, handler.ErrNilRouterOrConfig
	}

	views, err := newViews(deps.DevMode)
	if err != nil {
		return nil, err
	}

	app := fiber.New(
		fiber.Config{
			AppName:       cfg.AppName,
			CaseSensitive: true,
			Immutable:     true,
			BodyLimit:     max(cfg.MaxFileSize, fiber.DefaultBodyLimit),
			ErrorHandler:  ErrorHandler,
			Views:         views,
		},
	)

	s := &Service{App: app, cfg: cfg}

	app.Use(recoverer.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(accesslog.New())
	app.Use(metrics.Middleware(handler.MetricsPath))

	if !cfg.Debug {
		app.Use(trustedhost.New(cfg.AllowedHosts...))
	}

	origins, err := corsOrigins(cfg.BackendCORSOrigins)
	if err != nil {
		return nil, err
	}

	if len(origins) > 0 {
		credentials := !slices.Contains(origins, "*")
		if !credentials {
			log.Warn().Msg("BACKEND_CORS_ORIGINS contains '*': credentials are not allowed")
		}

		app.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     allMethods,
			AllowCredentials: credentials,
		}))
	}

	if err = mountDir(app, handler.StaticPath, cfg.StaticDir); err != nil {
		return nil, err
	}

	if err = mountDir(app, handler.UploadsPath, cfg.UploadDir); err != nil {
		return nil, err
	}

	api := app.Group(cfg.APIV1Str)
	if cfg.RateLimitPerMinute > 0 {
		api.Use(limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: time.Minute,
			Storage:    deps.LimiterStorage,
			KeyGenerator: func(c fiber.Ctx) string {
				return c.IP()
			},
			LimitReached: func(_ fiber.Ctx) error {
				return fiber.ErrTooManyRequests
			},
		}))
	}

	handlers := deps.Handlers
	if handlers == nil {
		handlers = v1.Handlers()
	}

	if err = v1.Mount(api, cfg, deps.DB, handlers...); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to mount api routes")
	}

	if err = system.New(s.alive.Load, deps.Checks).Init(app, cfg, deps.DB); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to init system routes")
	}

	app.Get(handler.MetricsPath, metrics.Handler())

	if cfg.Debug {
		if err = docs.Handler.Init(app, cfg, deps.DB); err != nil {
			return nil, pkgerrors.Wrap(err, "failed to init docs routes")
		}
	}

	if deps.DB != nil {
		metadata := deps.Metadata
		if metadata == nil {
			metadata = models.NewMetadata(models.All()...)
		}

		schema := models.Schema{DB: deps.DB, Metadata: metadata}

		s.OnStartup(func(ctx context.Context) error {
			if err := schema.CreateTables(ctx); err != nil {
				return err
			}

			log.Info().Int("tables", len(metadata.Models())).Msg("database tables created")

			return nil
		})
	}

	return s, nil
}

// corsOrigins drops empty entries and rejects values that are not an origin
// like https://example.com, https://*.example.com or "*".
func corsOrigins(origins []string) ([]string, error) {
	out := make([]string, 0, len(origins))

	for _, o := range origins {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o == "" {
			continue
		}

		if o != "*" && !validOrigin(o) {
			return nil, pkgerrors.Wrapf(ErrInvalidOrigin, "%q", o)
		}

		out = append(out, o)
	}

	return out, nil
}

// validOrigin accepts scheme://host[:port] and the subdomain wildcard
// scheme://*.host, the forms the cors middleware takes without panicking.
func validOrigin(o string) bool {
	if before, after, found := strings.Cut(o, "://*."); found {
		o = before + "://" + after
	}

	u, err := url.Parse(o)
	if err != nil || strings.Contains(u.Host, "*") {
		return false
	}

	return u.User == nil && u.Scheme != "" && u.Host != "" &&
		(u.Path == "" || u.Path == "/") &&
		u.RawQuery == "" && u.Fragment == ""
}

func mountDir(app *fiber.App, prefix, dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return pkgerrors.Wrapf(ErrStaticDirMissing, "%s -> %q", prefix, dir)
	}

	app.Use(prefix, static.New(dir))

	return nil
}

// OnStartup registers a hook run by Startup in registration order.
func (s *Service) OnStartup(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startup = append(s.startup, h)
}

// OnShutdown registers a hook run by Shutdown in registration order.
func (s *Service) OnShutdown(h Hook) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.shutdown = append(s.shutdown, h)
}

// Alive reports whether the service accepts traffic.
func (s *Service) Alive() bool {
	return s.alive.Load()
}

// Startup runs the startup hooks and marks the service ready.
// The first failing hook aborts startup.
func (s *Service) Startup(ctx context.Context) error {
	log.Info().Str("version", s.cfg.Version).Msgf("starting %s", s.cfg.AppName)

	s.mu.Lock()
	hooks := slices.Clone(s.startup)
	s.mu.Unlock()

	for _, h := range hooks {
		if err := h(ctx); err != nil {
			return pkgerrors.Wrap(err, "startup failed")
		}
	}

	s.alive.Store(true)

	return nil
}

// Shutdown marks the service unavailable and runs every shutdown hook,
// returning the joined errors.
func (s *Service) Shutdown(ctx context.Context) error {
	s.alive.Store(false)

	log.Info().Msgf("shutting down %s", s.cfg.AppName)

	s.mu.Lock()
	hooks := slices.Clone(s.shutdown)
	s.mu.Unlock()

	var errs []error

	for _, h := range hooks {
		if err := h(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown hook failed")

			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Run starts the service on addr and serves until ctx is done, then stops
// the http server within SHUTDOWN_TIMEOUT and runs the shutdown hooks.
// The shutdown hooks also run when startup fails.
func (s *Service) Run(ctx context.Context, addr string) error {
	if err := s.Startup(ctx); err != nil {
		hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout())
		defer cancel()

		return errors.Join(err, s.Shutdown(hookCtx))
	}

	listenErr := make(chan error, 1)

	go func() {
		listenErr <- s.App.Listen(addr, fiber.ListenConfig{DisableStartupMessage: true})
	}()

	log.Info().Str("addr", addr).Msg("http server listening")

	var runErr error

	select {
	case err := <-listenErr:
		if err != nil {
			runErr = pkgerrors.Wrap(err, "fiber listen error")
		}
	case <-ctx.Done():
		s.alive.Store(false)

		log.Info().Msg("stopping http server ...")

		if err := s.App.ShutdownWithTimeout(s.cfg.ShutdownTimeout); err != nil {
			log.Error().Err(err).Msg("http server shutdown")
		}

		if err := <-listenErr; err != nil {
			log.Error().Err(err).Msg("http server stopped with error")
		}

		log.Info().Msg("http server was stopped")
	}

	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout())
	defer cancel()

	if err := s.Shutdown(hookCtx); err != nil && runErr == nil {
		runErr = err
	}

	return runErr
}

func (s *Service) shutdownTimeout() time.Duration {
	if s.cfg.ShutdownTimeout > 0 {
		return s.cfg.ShutdownTimeout
	}

	return config.DefaultShutdownTimeout
}
