package integrity

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"inventory-sync/core/database"
	"inventory-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestApp(t *testing.T, withArchive bool) (*fiber.App, *mocks.Client, *gorm.DB) {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	var mockClient *mocks.Client
	svc := NewService(db, nil, "test-bucket", zap.NewNop())
	if withArchive {
		mockClient = new(mocks.Client)
		svc = NewService(db, mockClient, "test-bucket", zap.NewNop())
	}

	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient, db
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", target, nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleSchemaCheck(t *testing.T) {
	app, _, _ := setupTestApp(t, false)

	code, body := decode(t, app, "/integrity/schema")
	assert.Equal(t, 200, code)
	assert.Equal(t, false, body["matched"])
	assert.Len(t, body["errors"], 3, "no table exists yet")

	code, body = decode(t, app, "/integrity/schema?fix=true")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["matched"])
	assert.Empty(t, body["errors"])
}

func TestHandleArchiveCheck(t *testing.T) {
	t.Run("Disabled", func(t *testing.T) {
		app, _, _ := setupTestApp(t, false)
		code, body := decode(t, app, "/integrity/archive")
		assert.Equal(t, 404, code)
		assert.Equal(t, "report archive is disabled", body["error"])
	})

	t.Run("Fix Creates Bucket", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t, true)
		mockClient.On("BucketExists", mock.Anything, "test-bucket").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "test-bucket", mock.Anything).Return(nil)

		code, body := decode(t, app, "/integrity/archive?fix=true")
		assert.Equal(t, 200, code)
		assert.Equal(t, true, body["exists"])
		mockClient.AssertCalled(t, "MakeBucket", mock.Anything, "test-bucket", minio.MakeBucketOptions{})
	})
}

func TestHandleIntegrityCheck(t *testing.T) {
	app, _, _ := setupTestApp(t, false)

	code, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, code)
	assert.Contains(t, body, "schema")
	assert.Equal(t, map[string]any{"status": "disabled"}, body["archive"])
}
