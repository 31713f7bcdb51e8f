package auth_test

import (
	"net/http/httptest"
	"testing"

	"inventory-sync/core/middleware/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(cfg auth.Config) *fiber.App {
	app := fiber.New()
	app.Use(auth.New(cfg))
	app.Get("/sync/state", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/swagger/index.html", func(c *fiber.Ctx) error { return c.SendString("docs") })
	return app
}

func TestAuth(t *testing.T) {
	app := setupApp(auth.Config{ApiKey: "secret", Skip: []string{"/swagger"}})

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"Missing Key", "/sync/state", nil, fiber.StatusUnauthorized},
		{"Wrong Key", "/sync/state", map[string]string{"X-API-Key": "nope"}, fiber.StatusUnauthorized},
		{"Header Key", "/sync/state", map[string]string{"X-API-Key": "secret"}, fiber.StatusOK},
		{"Bearer Key", "/sync/state", map[string]string{"Authorization": "Bearer secret"}, fiber.StatusOK},
		{"Skipped Path", "/swagger/index.html", nil, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestAuth_Disabled(t *testing.T) {
	app := setupApp(auth.Config{})
	resp, err := app.Test(httptest.NewRequest("GET", "/sync/state", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
