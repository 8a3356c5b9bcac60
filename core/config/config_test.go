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
	assert.Equal(t, "file", cfg.Catalog.Backend)
	assert.Equal(t, 100, cfg.Sync.MinItems)
	assert.Equal(t, 3, cfg.Sync.RetryAttempts)
	assert.Equal(t, 1000, cfg.Sync.RetryBaseMillis)
	assert.Equal(t, 100, cfg.ERS.MaxPageSize)
	assert.Equal(t, "catalog-sync", cfg.Log.Service)
	assert.Greater(t, cfg.Server.WriteTimeoutSeconds, cfg.Sync.RunTimeoutSeconds,
		"a synchronous POST /sync must outlive the run it waits for")
}

func TestLoadConfig_EnvFileOverrides(t *testing.T) {
	dir := t.TempDir()
	env := "ERS_BASE_URL=https://ers.example.test/api\nERS_TOKEN=secret\nSYNC_MIN_ITEMS=5\nCATALOG_BACKEND=s3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("ERS_BASE_URL")
		os.Unsetenv("ERS_TOKEN")
		os.Unsetenv("SYNC_MIN_ITEMS")
		os.Unsetenv("CATALOG_BACKEND")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://ers.example.test/api", cfg.ERS.BaseURL)
	assert.Equal(t, "secret", cfg.ERS.Token)
	assert.Equal(t, 5, cfg.Sync.MinItems)
	assert.Equal(t, "s3", cfg.Catalog.Backend)
}
