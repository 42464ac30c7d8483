// Package system provides the diagnostic endpoints: welcome, liveness and readiness.
package system

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/web/handler"
)

const (
	// StatusHealthy is reported by the liveness probe.
	StatusHealthy = "healthy"

	// StatusReady is reported when every dependency answered.
	StatusReady = "ready"

	// StatusUnavailable is reported when a dependency failed.
	StatusUnavailable = "unavailable"

	// StatusShuttingDown is reported once graceful shutdown started.
	StatusShuttingDown = "shutting down"

	// CheckOK is the result of a passing dependency check.
	CheckOK = "ok"

	// DatabaseCheck names the database dependency.
	DatabaseCheck = "database"

	defaultCheckTimeout = 2 * time.Second
)

// Pinger is a dependency checked by the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service is the system handler service.
type Service struct {
	handler.Service
	cfg          *config.Settings
	alive        func() bool
	checks       map[string]Pinger
	checkTimeout time.Duration
}

// New creates the system handler. alive reports false once shutdown started,
// checks are pinged by the readiness probe in addition to the database.
func New(alive func() bool, checks map[string]Pinger) *Service {
	s := &Service{
		alive:        alive,
		checks:       make(map[string]Pinger, len(checks)+1),
		checkTimeout: defaultCheckTimeout,
	}

	for name, p := range checks {
		if p != nil {
			s.checks[name] = p
		}
	}

	return s
}

// Init registers the diagnostic routes.
func (s *Service) Init(router fiber.Router, cfg *config.Settings, db *gorm.DB) error {
	if router == nil || cfg == nil {
		return handler.ErrNilRouterOrConfig
	}

	s.cfg = cfg

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}

		s.checks[DatabaseCheck] = sqlDB
	}

	router.Get(handler.RootPath, s.Root)
	router.Get(handler.HealthPath, s.Health)
	router.Get(handler.ReadyPath, s.Ready)

	return nil
}

// Root greets with the application name and version.
func (s *Service) Root(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Welcome to " + s.cfg.AppName,
		"version": s.cfg.Version,
	})
}

// Health always answers 200 while the process serves requests.
func (s *Service) Health(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  StatusHealthy,
		"version": s.cfg.Version,
	})
}

// Ready answers 200 when every dependency answered a ping, 503 otherwise
// and during graceful shutdown.
func (s *Service) Ready(c fiber.Ctx) error {
	if s.alive != nil && !s.alive() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":  StatusShuttingDown,
			"version": s.cfg.Version,
		})
	}

	status := StatusReady
	code := fiber.StatusOK
	results := make(map[string]string, len(s.checks))

	for name, p := range s.checks {
		ctx, cancel := context.WithTimeout(c.Context(), s.checkTimeout)
		err := p.PingContext(ctx)

		cancel()

		if err != nil {
			log.Warn().Err(err).Str("check", name).Msg("readiness check failed")

			results[name] = err.Error()
			status = StatusUnavailable
			code = fiber.StatusServiceUnavailable

			continue
		}

		results[name] = CheckOK
	}

	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"version": s.cfg.Version,
		"checks":  results,
	})
}
