package userconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biopaper/paperpush/internal/session"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.Server)

	cfg.Remember("https://papers.example.org")
	cfg.Remember("http://localhost:8000")
	cfg.Remember("https://papers.example.org")
	cfg.SessionStore = StoreKeyring
	require.NoError(t, Save(cfg))

	_, err = os.Stat(filepath.Join(home, ".config", "paperpush", "config.json"))
	require.NoError(t, err)

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://papers.example.org", loaded.Server)
	assert.Equal(t, []string{"https://papers.example.org", "http://localhost:8000"}, loaded.KnownServers)
	assert.Equal(t, StoreKeyring, loaded.SessionStore)
}

func TestLoad_Corrupt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "paperpush")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{"), 0644))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse user config file")
}

func TestResolveServer(t *testing.T) {
	cfg := &UserConfig{Server: "https://saved.example.org"}

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvServer, "https://env.example.org")
		got, err := ResolveServer("https://flag.example.org/", cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://flag.example.org", got)
	})

	t.Run("environment before config", func(t *testing.T) {
		t.Setenv(EnvServer, "https://env.example.org")
		got, err := ResolveServer("", cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.org", got)
	})

	t.Run("config", func(t *testing.T) {
		t.Setenv(EnvServer, "")
		got, err := ResolveServer("", cfg)
		require.NoError(t, err)
		assert.Equal(t, "https://saved.example.org", got)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv(EnvServer, "")
		got, err := ResolveServer("", &UserConfig{})
		require.NoError(t, err)
		assert.Equal(t, DefaultServer, got)
	})
}

func TestNormalizeServer(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:8000", want: "http://localhost:8000"},
		{in: "http://localhost:8000/", want: "http://localhost:8000"},
		{in: "http://localhost:8000/api", want: "http://localhost:8000"},
		{in: "https://example.org/push/api/", want: "https://example.org/push"},
		{in: " https://example.org?x=1 ", want: "https://example.org"},
		{in: "localhost:8000", wantErr: true},
		{in: "ftp://example.org", wantErr: true},
		{in: "http://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeServer(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	store, err := (&UserConfig{}).OpenStore("http://localhost:8000")
	require.NoError(t, err)
	assert.IsType(t, &session.FileStore{}, store)

	store, err = (&UserConfig{SessionStore: StoreKeyring}).OpenStore("http://localhost:8000")
	require.NoError(t, err)
	assert.IsType(t, &session.KeyringStore{}, store)

	_, err = (&UserConfig{SessionStore: "redis"}).OpenStore("http://localhost:8000")
	assert.ErrorContains(t, err, "unknown session_store")
}
