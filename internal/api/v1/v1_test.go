package v1

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeletonhq/backend/internal/config"
	"github.com/skeletonhq/backend/internal/web/handler"
)

func TestVersion(t *testing.T) {
	cfg := &config.Settings{AppName: "Test API", Version: "3.1.4", APIV1Str: "/api/v1"}

	app := fiber.New()
	require.NoError(t, Mount(app.Group(cfg.APIV1Str), cfg, nil, Handlers()...))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/version", nil))
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got VersionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, VersionResponse{Name: "Test API", Version: "3.1.4", API: APIVersion}, got)
}

func TestMountNilConfig(t *testing.T) {
	err := Mount(fiber.New(), nil, nil, Handlers()...)
	assert.ErrorIs(t, err, handler.ErrNilRouterOrConfig)
}
