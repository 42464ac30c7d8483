package v1

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/web/handler"
)

// VersionPath is relative to the API prefix.
const VersionPath = "/version"

// VersionResponse is the body of GET {prefix}/version.
type VersionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	API     string `json:"api"`
}

// VersionService reports the application version.
type VersionService struct {
	handler.Service
	cfg *config.Settings
}

// Init registers the version route.
func (s *VersionService) Init(router fiber.Router, cfg *config.Settings, _ *gorm.DB) error {
	if router == nil || cfg == nil {
		return handler.ErrNilRouterOrConfig
	}

	s.cfg = cfg

	router.Get(VersionPath, s.Get).Name("Application version")

	return nil
}

// Get handles GET {prefix}/version.
func (s *VersionService) Get(c fiber.Ctx) error {
	return c.JSON(VersionResponse{
		Name:    s.cfg.AppName,
		Version: s.cfg.Version,
		API:     APIVersion,
	})
}
