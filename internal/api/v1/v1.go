// Package v1 holds the route table of the first API version.
package v1

import (
	"github.com/gofiber/fiber/v3"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/web/handler"
)

// APIVersion is reported by the version endpoint.
const APIVersion = "v1"

// Handlers returns the handler services mounted under API_V1_STR.
// Append new resources here.
func Handlers() []handler.Service {
	return []handler.Service{
		&VersionService{},
	}
}

// Mount initializes every handler on router.
func Mount(router fiber.Router, cfg *config.Settings, db *gorm.DB, handlers ...handler.Service) error {
	for _, h := range handlers {
		if err := h.Init(router, cfg, db); err != nil {
			return err
		}
	}

	return nil
}
