package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Setenv("FBADS_GRAPH_URL", "http://127.0.0.1:9999")
	t.Setenv("FBADS_GRAPH_VERSION", "v21.0")
	t.Setenv("FBADS_AUTH_URL", "https://auth.example.com")
	t.Setenv("FBADS_AUTH_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("FBADS_TOKEN_FILE", "./tmp-token")
	t.Setenv("FBADS_POLL_INTERVAL", "2s")
	t.Setenv("FBADS_POLL_ATTEMPTS", "3")
	t.Setenv("FBADS_RATE_LIMIT", "5")
	t.Setenv("FBADS_TRANSPORT", "http")
	t.Setenv("FBADS_PORT", "18080")
	t.Setenv("FBADS_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GraphBaseURL() != "http://127.0.0.1:9999/v21.0" {
		t.Fatalf("GraphBaseURL() = %q", cfg.GraphBaseURL())
	}
	if cfg.AuthURL != "https://auth.example.com" {
		t.Fatalf("AuthURL = %q", cfg.AuthURL)
	}
	if !cfg.AuthInsecureSkipVerify {
		t.Fatal("AuthInsecureSkipVerify = false, want true")
	}
	if cfg.PollInterval != 2*time.Second {
		t.Fatalf("PollInterval = %s, want 2s", cfg.PollInterval)
	}
	if cfg.PollAttempts != 3 {
		t.Fatalf("PollAttempts = %d, want 3", cfg.PollAttempts)
	}
	if cfg.RateLimit != 5 {
		t.Fatalf("RateLimit = %v, want 5", cfg.RateLimit)
	}
	if cfg.Transport != "http" {
		t.Fatalf("Transport = %q, want http", cfg.Transport)
	}
	if cfg.Port != 18080 {
		t.Fatalf("Port = %d, want %d", cfg.Port, 18080)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}

	path, err := cfg.ResolveTokenFile()
	if err != nil {
		t.Fatalf("ResolveTokenFile() error = %v", err)
	}
	if filepath.Base(path) != "tmp-token" || !filepath.IsAbs(path) {
		t.Fatalf("ResolveTokenFile() = %q", path)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GraphBaseURL() != "https://graph.facebook.com/v22.0" {
		t.Fatalf("GraphBaseURL() = %q", cfg.GraphBaseURL())
	}
	if cfg.AuthInsecureSkipVerify {
		t.Fatal("AuthInsecureSkipVerify = true, want false by default")
	}
	if cfg.PollInterval != 10*time.Second || cfg.PollAttempts != 6 {
		t.Fatalf("poll = %s x %d, want 10s x 6", cfg.PollInterval, cfg.PollAttempts)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("Transport = %q, want stdio", cfg.Transport)
	}

	path, err := cfg.ResolveTokenFile()
	if err != nil {
		t.Fatalf("ResolveTokenFile() error = %v", err)
	}
	if filepath.Base(path) != defaultTokenFileName {
		t.Fatalf("ResolveTokenFile() = %q, want %s suffix", path, defaultTokenFileName)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	t.Setenv("FBADS_PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want non-nil")
	}
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	t.Setenv("FBADS_TRANSPORT", "grpc")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
}

func TestLoadRejectsZeroAttempts(t *testing.T) {
	t.Setenv("FBADS_POLL_ATTEMPTS", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want validation error")
	}
}
