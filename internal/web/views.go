package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	templatesDir      = "templates"
	templateExtension = ".gohtml"
	localTemplatesDir = "./internal/web/templates"
)

//go:embed templates/*
var embeddedTemplates embed.FS

// newViews builds the html engine rendering the documentation pages. In dev
// mode templates are read from the working tree and reloaded on every render.
func newViews(dev bool) (*html.Engine, error) {
	if dev {
		engine := html.New(localTemplatesDir, templateExtension)
		engine.Reload(true)

		log.Warn().Msg("dev mode enabled: using local filesystem for templates")

		return engine, nil
	}

	templates, err := fs.Sub(embeddedTemplates, templatesDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open embedded templates")
	}

	return html.NewFileSystem(http.FS(templates), templateExtension), nil
}
