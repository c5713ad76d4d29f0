package config

import (
	"testing"
	"time"
)

var dashboardEnvKeys = []string{
	"TELECALLER_ADDR",
	"TELECALLER_API_BASE_URL",
	"TELECALLER_WS_BASE_URL",
	"TELECALLER_LOG_LEVEL",
	"TELECALLER_REQUEST_TIMEOUT",
	"TELECALLER_SHUTDOWN_GRACE_PERIOD",
}

func clearDashboardEnv(t *testing.T) {
	t.Helper()
	for _, key := range dashboardEnvKeys {
		t.Setenv(key, "")
	}
}

func TestLoadFromEnv_Defaults(t *testing.T) {
	clearDashboardEnv(t)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Addr != ":8084" {
		t.Fatalf("Addr = %q, want :8084", cfg.Addr)
	}
	if cfg.APIBaseURL != "https://api.thesamodrei.com" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != "" {
		t.Fatalf("WSBaseURL = %q, want empty (derived)", cfg.WSBaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Fatalf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("ShutdownGracePeriod = %v, want 10s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	clearDashboardEnv(t)
	t.Setenv("TELECALLER_ADDR", ":9000")
	t.Setenv("TELECALLER_API_BASE_URL", "http://localhost:8000")
	t.Setenv("TELECALLER_WS_BASE_URL", "ws://localhost:8000")
	t.Setenv("TELECALLER_LOG_LEVEL", "debug")
	t.Setenv("TELECALLER_REQUEST_TIMEOUT", "5s")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}

	if cfg.Addr != ":9000" {
		t.Fatalf("Addr = %q, want :9000", cfg.Addr)
	}
	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.WSBaseURL != "ws://localhost:8000" {
		t.Fatalf("WSBaseURL = %q", cfg.WSBaseURL)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
}

func TestLoadFromEnv_RejectsUnknownLogLevel(t *testing.T) {
	clearDashboardEnv(t)
	t.Setenv("TELECALLER_LOG_LEVEL", "verbose")

	if _, err := LoadFromEnv(); err == nil {
		t.Fatal("LoadFromEnv() accepted an unknown log level")
	}
}
