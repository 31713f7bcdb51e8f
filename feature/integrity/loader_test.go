package integrity

import (
	"testing"

	"inventory-sync/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	_, _, db := setupTestApp(t, false)
	feature := NewFeature(db, new(mocks.Client), "test-bucket", zap.NewNop())

	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)

	// Without a database there is nothing to check
	assert.False(t, NewFeature(nil, nil, "", zap.NewNop()).IsEnabled())
}
