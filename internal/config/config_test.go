package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, "https://identitytoolkit.googleapis.com/v1", cfg.IdentityBaseURL)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 3*time.Second, cfg.RevertDelay)
	assert.NotEmpty(t, cfg.DataDir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CAREERFLOW_API_BASE_URL", "http://localhost:5000")
	t.Setenv("CAREERFLOW_IDENTITY_API_KEY", "key-123")
	t.Setenv("CAREERFLOW_REQUEST_TIMEOUT", "5s")
	t.Setenv("CAREERFLOW_DATA_DIR", "/tmp/cf-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.APIBaseURL)
	assert.Equal(t, "key-123", cfg.IdentityAPIKey)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/tmp/cf-test", cfg.DataDir)
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	assert.Equal(t, filepath.Join("/data", "history.db"), cfg.HistoryPath())
	assert.Equal(t, filepath.Join("/data", "session.json"), cfg.TokenPath())
}
