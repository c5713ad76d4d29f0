// Package config holds env-driven configuration for the dashboard binaries.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

type Config struct {
	// Addr is the dashboard server listen address.
	Addr string

	// APIBaseURL is the telecaller backend base URL.
	APIBaseURL string

	// WSBaseURL overrides the status-stream base URL. Empty means derive
	// it from APIBaseURL.
	WSBaseURL string

	LogLevel string

	RequestTimeout      time.Duration
	ShutdownGracePeriod time.Duration
}

func LoadFromEnv() (Config, error) {
	cfg := Config{
		Addr:                envOr("TELECALLER_ADDR", ":8084"),
		APIBaseURL:          envOr("TELECALLER_API_BASE_URL", "https://api.thesamodrei.com"),
		WSBaseURL:           envOr("TELECALLER_WS_BASE_URL", ""),
		LogLevel:            envOr("TELECALLER_LOG_LEVEL", "info"),
		RequestTimeout:      envDurationOr("TELECALLER_REQUEST_TIMEOUT", 30*time.Second),
		ShutdownGracePeriod: envDurationOr("TELECALLER_SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if _, err := url.Parse(cfg.APIBaseURL); err != nil {
		return Config{}, fmt.Errorf("TELECALLER_API_BASE_URL is not a valid URL: %w", err)
	}
	if cfg.WSBaseURL != "" {
		if _, err := url.Parse(cfg.WSBaseURL); err != nil {
			return Config{}, fmt.Errorf("TELECALLER_WS_BASE_URL is not a valid URL: %w", err)
		}
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("TELECALLER_LOG_LEVEL must be one of debug|info|warn|error")
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, fmt.Errorf("TELECALLER_REQUEST_TIMEOUT must be > 0")
	}

	return cfg, nil
}

func envOr(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envDurationOr(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return def
	}
	return d
}
