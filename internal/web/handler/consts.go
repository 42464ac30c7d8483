package handler

import "errors"

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// HealthPath answers liveness probes.
	HealthPath = "/health"

	// ReadyPath answers readiness probes.
	ReadyPath = "/ready"

	// MetricsPath serves prometheus metrics.
	MetricsPath = "/metrics"

	// StaticPath serves STATIC_DIR.
	StaticPath = "/static"

	// UploadsPath serves UPLOAD_DIR.
	UploadsPath = "/uploads"

	// OpenAPIPath serves the generated OpenAPI document in debug mode.
	OpenAPIPath = "/openapi.json"

	// DocsPath serves the Swagger UI in debug mode.
	DocsPath = "/docs"

	// RedocPath serves the ReDoc UI in debug mode.
	RedocPath = "/redoc"
)

// ErrNilRouterOrConfig is returned by Init if router or cfg is nil.
var ErrNilRouterOrConfig = errors.New("router or cfg is nil")

// Undocumented lists the path prefixes left out of the API documentation.
func Undocumented() []string {
	return []string{
		HealthPath, ReadyPath, MetricsPath, StaticPath, UploadsPath,
		OpenAPIPath, DocsPath, RedocPath,
	}
}
