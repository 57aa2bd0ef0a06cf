package userconfig

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/biopaper/paperpush/internal/session"
)

const (
	configDirName  = "paperpush"
	configFileName = "config.json"

	// DefaultServer is used when neither flag, environment nor config names one
	DefaultServer = "http://localhost:8000"

	// EnvServer overrides the configured server
	EnvServer = "PAPERPUSH_SERVER"
)

// Session store kinds
const (
	StoreFile    = "file"
	StoreKeyring = "keyring"
)

// UserConfig represents the user's local configuration stored in ~/.config/paperpush/config.json
type UserConfig struct {
	Server       string   `json:"server,omitempty"`
	SessionStore string   `json:"session_store,omitempty"`
	KnownServers []string `json:"known_servers,omitempty"`
}

// GetConfigPath returns the path to the user config file
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".config", configDirName)
	return filepath.Join(configDir, configFileName), nil
}

// Load reads the user configuration file
func Load() (*UserConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	// If config doesn't exist, return empty config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config file: %w", err)
	}

	var cfg UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse user config file: %w", err)
	}

	return &cfg, nil
}

// Save writes the user configuration to a file
func Save(cfg *UserConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create config directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write user config file: %w", err)
	}

	return nil
}

// Remember makes server the selected server and adds it to the known list
func (c *UserConfig) Remember(server string) {
	c.Server = server
	if !slices.Contains(c.KnownServers, server) {
		c.KnownServers = append(c.KnownServers, server)
	}
}

// ResolveServer picks the backend to talk to: flag, then $PAPERPUSH_SERVER,
// then the config file, then DefaultServer. The result is normalized.
func ResolveServer(flag string, cfg *UserConfig) (string, error) {
	server := flag
	if server == "" {
		server = os.Getenv(EnvServer)
	}
	if server == "" && cfg != nil {
		server = cfg.Server
	}
	if server == "" {
		server = DefaultServer
	}
	return NormalizeServer(server)
}

// NormalizeServer validates a server URL and strips any trailing slash or /api suffix
func NormalizeServer(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid server URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q: host is required", raw)
	}

	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api")
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimRight(u.String(), "/"), nil
}

// OpenStore returns the session store configured for server
func (c *UserConfig) OpenStore(server string) (session.Store, error) {
	switch c.SessionStore {
	case StoreKeyring:
		return session.NewKeyringStore(server), nil
	case "", StoreFile:
		path, err := session.DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return session.NewFileStore(path, server), nil
	default:
		return nil, fmt.Errorf("unknown session_store %q in user config (want %q or %q)", c.SessionStore, StoreFile, StoreKeyring)
	}
}
