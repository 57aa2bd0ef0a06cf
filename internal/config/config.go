package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the console server
type Config struct {
	// HTTP listener
	Server ServerConfig

	// Backend the /api prefix is proxied to
	Backend BackendConfig

	// Built SPA bundle
	Static StaticConfig

	// Session cookies
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	ListenAddr      string
	AllowOrigins    []string
	ShutdownTimeout time.Duration
	ProxyTimeout    time.Duration
}

// BackendConfig holds the upstream API location
type BackendConfig struct {
	URL *url.URL
}

// StaticConfig holds the SPA bundle location
type StaticConfig struct {
	Dir string
}

// SessionConfig holds cookie settings
type SessionConfig struct {
	CookieSecure bool
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// Backend service name inside docker compose by default
	backendURL, err := url.Parse(getEnv("BACKEND_URL", "http://backend:8000"))
	if err != nil {
		return nil, fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	if backendURL.Scheme == "" || backendURL.Host == "" {
		return nil, fmt.Errorf("invalid BACKEND_URL %q: scheme and host are required", backendURL.String())
	}

	shutdownTimeout, err := time.ParseDuration(getEnv("SHUTDOWN_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	// Matches the API client's timeout; runs can take minutes
	proxyTimeout, err := time.ParseDuration(getEnv("PROXY_TIMEOUT", "300s"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROXY_TIMEOUT: %w", err)
	}

	cookieSecure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid COOKIE_SECURE: %w", err)
	}

	var origins []string
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOW_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}

	return &Config{
		Server: ServerConfig{
			ListenAddr:      getEnv("LISTEN_ADDR", "0.0.0.0:3000"),
			AllowOrigins:    origins,
			ShutdownTimeout: shutdownTimeout,
			ProxyTimeout:    proxyTimeout,
		},
		Backend: BackendConfig{
			URL: backendURL,
		},
		Static: StaticConfig{
			Dir: getEnv("STATIC_DIR", "dist"),
		},
		Session: SessionConfig{
			CookieSecure: cookieSecure,
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
