package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "certificate_number", cfg.Feed.KeyField)
	assert.Equal(t, 200, cfg.Feed.PageSize)
	assert.Equal(t, 3, cfg.Feed.MaxRetries)
	assert.Equal(t, 1800, cfg.Sync.TimeoutSeconds)
	assert.Equal(t, "database", cfg.Sync.Lock)
	assert.Empty(t, cfg.Sync.Schedule, "periodic sync is off unless configured")
	assert.False(t, cfg.Sync.ArchiveReports)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("FEED_BASE_URL", "https://feed.example.com")
	t.Setenv("SYNC_TIMEOUT_SECONDS", "120")
	t.Setenv("LOG_FILE", "/var/log/inventory-sync.log")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "https://feed.example.com", cfg.Feed.BaseURL)
	assert.Equal(t, 120, cfg.Sync.TimeoutSeconds)
	assert.Equal(t, "/var/log/inventory-sync.log", cfg.Log.File)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SYNC_SCHEDULE=\"@every 6h\"\nFEED_PAGE_SIZE=50\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("SYNC_SCHEDULE")
		os.Unsetenv("FEED_PAGE_SIZE")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "@every 6h", cfg.Sync.Schedule)
	assert.Equal(t, 50, cfg.Feed.PageSize)
}
