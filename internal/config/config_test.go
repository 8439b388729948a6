package config_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/oslobeats/concierge/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := config.Load()

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.Providers.Primary.Kind != "gemini" {
		t.Errorf("Primary.Kind = %q, want gemini", cfg.Providers.Primary.Kind)
	}
	if cfg.Providers.Secondary.Kind != "openai" {
		t.Errorf("Secondary.Kind = %q, want openai", cfg.Providers.Secondary.Kind)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want 24h", cfg.Cache.TTL)
	}
	if !cfg.Cache.Enabled {
		t.Error("Cache.Enabled = false, want true")
	}
	if cfg.Pipeline.CallTimeout != 10*time.Second {
		t.Errorf("Pipeline.CallTimeout = %v, want 10s", cfg.Pipeline.CallTimeout)
	}
	if cfg.Pipeline.RequestTimeout != 25*time.Second {
		t.Errorf("Pipeline.RequestTimeout = %v, want 25s", cfg.Pipeline.RequestTimeout)
	}
	if cfg.Pipeline.QueryMaxLen != 2000 {
		t.Errorf("Pipeline.QueryMaxLen = %d, want 2000", cfg.Pipeline.QueryMaxLen)
	}
	if cfg.Telemetry.Enabled {
		t.Error("Telemetry.Enabled = true, want false by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONCIERGE_PORT", "9090")
	t.Setenv("CACHE_TTL", "90m")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := config.Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}
	if !cfg.Providers.Primary.Configured() {
		t.Error("Primary.Configured() = false with API key set, want true")
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.HTTP.AllowedOrigins, want) {
		t.Errorf("HTTP.AllowedOrigins = %v, want %v", cfg.HTTP.AllowedOrigins, want)
	}
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("CONCIERGE_PORT", "not-a-port")
	t.Setenv("CACHE_TTL", "soon")

	cfg := config.Load()
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want default 8080 on malformed value", cfg.Port)
	}
	if cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("Cache.TTL = %v, want default 24h on malformed value", cfg.Cache.TTL)
	}
}

func TestProviderConfig_Configured(t *testing.T) {
	if (config.ProviderConfig{}).Configured() {
		t.Error("Configured() without API key = true, want false")
	}
	if !(config.ProviderConfig{APIKey: "k"}).Configured() {
		t.Error("Configured() with API key = false, want true")
	}
}
