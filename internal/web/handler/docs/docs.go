// Package docs serves the generated OpenAPI document and the interactive
// API documentation pages. Mounted only in debug mode.
package docs

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/web/handler"
)

const (
	// SwaggerTemplate renders the Swagger UI page.
	SwaggerTemplate = "docs/swagger"

	// RedocTemplate renders the ReDoc page.
	RedocTemplate = "docs/redoc"
)

// Service is the docs handler service.
type Service struct {
	handler.Service
	cfg *config.Settings
}

// Handler is the docs handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init registers the documentation routes.
func (s *Service) Init(router fiber.Router, cfg *config.Settings, _ *gorm.DB) error {
	if router == nil || cfg == nil {
		return handler.ErrNilRouterOrConfig
	}

	s.cfg = cfg

	router.Get(handler.OpenAPIPath, s.OpenAPI)
	router.Get(handler.DocsPath, s.Swagger)
	router.Get(handler.RedocPath, s.Redoc)

	return nil
}

// OpenAPI returns the document for the routes registered at request time.
func (s *Service) OpenAPI(c fiber.Ctx) error {
	doc := Build(s.cfg.AppName, s.cfg.Version, c.App().GetRoutes(true), handler.Undocumented())

	return c.JSON(doc)
}

// Swagger renders the Swagger UI.
func (s *Service) Swagger(c fiber.Ctx) error {
	return s.render(c, SwaggerTemplate)
}

// Redoc renders the ReDoc UI.
func (s *Service) Redoc(c fiber.Ctx) error {
	return s.render(c, RedocTemplate)
}

func (s *Service) render(c fiber.Ctx, name string) error {
	return c.Render(name, fiber.Map{
		"Title":      s.cfg.AppName,
		"OpenAPIURL": handler.OpenAPIPath,
	})
}
