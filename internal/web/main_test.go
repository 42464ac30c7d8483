package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/db/models"
	"github.com/skeletonhq/backend/internal/web/handler"
)

type widget struct {
	models.Base
	Name string
}

func newTestConfig(t *testing.T) *config.Settings {
	t.Helper()

	root := t.TempDir()
	static := filepath.Join(root, "static")
	uploads := filepath.Join(root, "uploads")

	require.NoError(t, os.Mkdir(static, 0o755))
	require.NoError(t, os.Mkdir(uploads, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.css"), []byte("body{}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(uploads, "a.txt"), []byte("uploaded"), 0o600))

	return &config.Settings{
		AppName:            "Test API",
		Version:            "1.2.3",
		Debug:              true,
		APIV1Str:           "/api/v1",
		ShutdownTimeout:    time.Second,
		AllowedHosts:       config.StringList{"yourdomain.com", "*.yourdomain.com"},
		StaticDir:          static,
		UploadDir:          uploads,
		MaxFileSize:        1024,
		RateLimitPerMinute: 0,
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return db
}

func newService(t *testing.T, cfg *config.Settings, deps Deps) *Service {
	t.Helper()

	s, err := New(cfg, deps)
	require.NoError(t, err)

	return s
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestHealth(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{})

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.HealthPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy","version":"1.2.3"}`, body)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	resp, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.RootPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"message":"Welcome to Test API","version":"1.2.3"}`, body)

	resp, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"name":"Test API","version":"1.2.3","api":"v1"}`, body)
}

func TestNotFound(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{})

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/missing", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Cannot GET /api/v1/missing"}`, body)
}

func TestCORS(t *testing.T) {
	preflight := func() *http.Request {
		req := httptest.NewRequest(fiber.MethodOptions, "/api/v1/version", nil)
		req.Header.Set(fiber.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
		req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "X-Custom")

		return req
	}

	t.Run("origins configured", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BackendCORSOrigins = config.StringList{"http://localhost:3000", "https://example.com"}

		s := newService(t, cfg, Deps{})

		resp, _ := do(t, s.App, preflight())
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "http://localhost:3000", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "true", resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), fiber.MethodPatch)
		assert.Equal(t, "X-Custom", resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))

		req := httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil)
		req.Header.Set(fiber.HeaderOrigin, "http://evil.com")

		resp, _ = do(t, s.App, req)
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("empty list installs no policy", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BackendCORSOrigins = config.StringList{""}

		s := newService(t, cfg, Deps{})

		resp, _ := do(t, s.App, preflight())
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("wildcard drops credentials", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BackendCORSOrigins = config.StringList{"*"}

		s := newService(t, cfg, Deps{})

		resp, _ := do(t, s.App, preflight())
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowCredentials))
	})

	t.Run("subdomain wildcard", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BackendCORSOrigins = config.StringList{"https://*.example.com"}

		_, err := New(cfg, Deps{})
		require.NoError(t, err)
	})

	for _, origin := range []string{
		"localhost:3000",
		"https://example.com/app",
		"https://example.com?x=1",
		"https://example.com#f",
		"https://*",
		"https://api.*.example.com",
		"https://user@example.com",
	} {
		t.Run("invalid origin "+origin, func(t *testing.T) {
			cfg := newTestConfig(t)
			cfg.BackendCORSOrigins = config.StringList{origin}

			assert.NotPanics(t, func() {
				_, err := New(cfg, Deps{})
				assert.ErrorIs(t, err, ErrInvalidOrigin)
			})
		})
	}
}

func TestTrustedHost(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Debug = false

	s := newService(t, cfg, Deps{})

	// httptest requests use example.com
	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.HealthPath, nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid host header", body)

	req := httptest.NewRequest(fiber.MethodGet, handler.HealthPath, nil)
	req.Host = "api.yourdomain.com"

	resp, _ = do(t, s.App, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// debug mode accepts any host
	s = newService(t, newTestConfig(t), Deps{})

	resp, _ = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.HealthPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestDocs(t *testing.T) {
	paths := []string{handler.DocsPath, handler.RedocPath, handler.OpenAPIPath}

	t.Run("debug", func(t *testing.T) {
		s := newService(t, newTestConfig(t), Deps{})

		for _, path := range paths {
			resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, path, nil))
			assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
			assert.NotEmpty(t, body, path)
		}

		_, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.DocsPath, nil))
		assert.Contains(t, body, "Test API - Swagger UI")
		assert.Contains(t, body, "swagger-ui-bundle.js")

		_, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.RedocPath, nil))
		assert.Contains(t, body, "<redoc")

		_, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.OpenAPIPath, nil))

		var doc struct {
			Paths map[string]any `json:"paths"`
		}

		require.NoError(t, json.Unmarshal([]byte(body), &doc))
		assert.Contains(t, doc.Paths, "/api/v1/version")

		for _, hidden := range []string{"/", handler.HealthPath, handler.ReadyPath, handler.MetricsPath} {
			assert.NotContains(t, doc.Paths, hidden)
		}
	})

	t.Run("production", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.Debug = false
		cfg.AllowedHosts = config.StringList{"*"}

		s := newService(t, cfg, Deps{})

		for _, path := range paths {
			resp, _ := do(t, s.App, httptest.NewRequest(fiber.MethodGet, path, nil))
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, path)
		}
	})
}

func TestStaticMounts(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{})

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/static/app.css", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "body{}", body)

	resp, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/uploads/a.txt", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "uploaded", body)
}

func TestStaticDirMissing(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.StaticDir = filepath.Join(t.TempDir(), "missing")

	_, err := New(cfg, Deps{})
	require.ErrorIs(t, err, ErrStaticDirMissing)

	cfg = newTestConfig(t)
	cfg.UploadDir = filepath.Join(cfg.StaticDir, "app.css")

	_, err = New(cfg, Deps{})
	require.ErrorIs(t, err, ErrStaticDirMissing)
}

func TestRateLimit(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.RateLimitPerMinute = 2

	s := newService(t, cfg, Deps{})

	for range 2 {
		resp, _ := do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil))
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil))
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"Too Many Requests"}`, body)

	// diagnostics are not limited
	resp, _ = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.HealthPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

type failing struct{}

type payload struct {
	Email string `validate:"required,email"`
}

func (failing) Init(router fiber.Router, _ *config.Settings, _ *gorm.DB) error {
	router.Get("/teapot", func(_ fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	router.Get("/invalid", func(_ fiber.Ctx) error {
		return validator.New().Struct(payload{Email: "nope"})
	})
	router.Get("/boom", func(_ fiber.Ctx) error {
		return errors.New("database password leaked in this message") //nolint:goerr113
	})
	router.Get("/panic", func(_ fiber.Ctx) error {
		panic("unexpected")
	})

	return nil
}

func TestErrorHandler(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{Handlers: []handler.Service{failing{}}})

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/teapot", nil))
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
	assert.JSONEq(t, `{"detail":"short and stout"}`, body)

	resp, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/invalid", nil))
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	var invalid struct {
		Detail []FieldError `json:"detail"`
	}

	require.NoError(t, json.Unmarshal([]byte(body), &invalid))
	require.Len(t, invalid.Detail, 1)
	assert.Equal(t, "payload.Email", invalid.Detail[0].Loc)
	assert.Equal(t, "email", invalid.Detail[0].Type)

	for _, path := range []string{"/api/v1/boom", "/api/v1/panic"} {
		resp, body = do(t, s.App, httptest.NewRequest(fiber.MethodGet, path, nil))
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, path)
		assert.JSONEq(t, `{"detail":"Internal Server Error"}`, body, path)
	}

	// the default route table is replaced
	resp, _ = do(t, s.App, httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLifecycle(t *testing.T) {
	db := newTestDB(t)

	s := newService(t, newTestConfig(t), Deps{
		DB:       db,
		Metadata: models.NewMetadata(&widget{}),
	})

	var events []string

	s.OnStartup(func(context.Context) error {
		events = append(events, "startup")

		return nil
	})
	s.OnShutdown(func(context.Context) error {
		events = append(events, "shutdown 1")

		return errors.New("cache close failed") //nolint:goerr113
	})
	s.OnShutdown(func(context.Context) error {
		events = append(events, "shutdown 2")

		return nil
	})

	resp, _ := do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.ReadyPath, nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode, "not ready before startup")

	require.NoError(t, s.Startup(context.Background()))
	assert.True(t, s.Alive())
	assert.True(t, db.Migrator().HasTable(&widget{}), "startup creates the metadata tables")

	resp, body := do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.ReadyPath, nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `"database":"ok"`)

	err := s.Shutdown(context.Background())
	assert.EqualError(t, err, "cache close failed")
	assert.False(t, s.Alive())
	assert.Equal(t, []string{"startup", "shutdown 1", "shutdown 2"}, events)

	resp, _ = do(t, s.App, httptest.NewRequest(fiber.MethodGet, handler.ReadyPath, nil))
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestStartupFailure(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{})

	s.OnStartup(func(context.Context) error {
		return errors.New("no database") //nolint:goerr113
	})

	err := s.Startup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
	assert.False(t, s.Alive())
}

func TestRunStartupFailureReleases(t *testing.T) {
	s := newService(t, newTestConfig(t), Deps{})

	released := false

	s.OnStartup(func(context.Context) error {
		return errors.New("no database") //nolint:goerr113
	})
	s.OnShutdown(func(context.Context) error {
		released = true

		return nil
	})

	err := s.Run(context.Background(), "127.0.0.1:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
	assert.True(t, released, "shutdown hooks run after a failed startup")
	assert.False(t, s.Alive())
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil, Deps{})
	assert.ErrorIs(t, err, handler.ErrNilRouterOrConfig)
}
