package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+): it changes the working directory
// for the duration of the test and restores it on cleanup.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"BACKEND_URL", "LISTEN_ADDR", "STATIC_DIR", "LOG_LEVEL", "LOG_FORMAT",
		"COOKIE_SECURE", "CORS_ALLOW_ORIGINS", "SHUTDOWN_TIMEOUT", "PROXY_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.Server.ListenAddr)
	assert.Equal(t, "http://backend:8000", cfg.Backend.URL.String())
	assert.Equal(t, "dist", cfg.Static.Dir)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, 300*time.Second, cfg.Server.ProxyTimeout)
	assert.False(t, cfg.Session.CookieSecure)
	assert.Empty(t, cfg.Server.AllowOrigins)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("BACKEND_URL", "http://localhost:8000")
	t.Setenv("LISTEN_ADDR", ":8080")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://localhost:5173, https://papers.example.org")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8000", cfg.Backend.URL.Host)
	assert.Equal(t, ":8080", cfg.Server.ListenAddr)
	assert.True(t, cfg.Session.CookieSecure)
	assert.Equal(t, []string{"http://localhost:5173", "https://papers.example.org"}, cfg.Server.AllowOrigins)
}

func TestLoad_InvalidValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("BACKEND_URL", "backend-without-scheme")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("BACKEND_URL", "http://backend:8000")
	t.Setenv("COOKIE_SECURE", "maybe")
	_, err = Load()
	require.Error(t, err)
}
