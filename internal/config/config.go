package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the concierge server.
type Config struct {
	Port      int
	Version   string
	Providers ProvidersConfig
	Cache     CacheConfig
	Pipeline  PipelineConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
}

// ProvidersConfig configures the primary and secondary text-generation tiers.
type ProvidersConfig struct {
	Primary   ProviderConfig
	Secondary ProviderConfig
}

type ProviderConfig struct {
	Kind        string // "gemini" or "openai"
	APIKey      string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Configured reports whether the tier has credentials and can be used.
func (p ProviderConfig) Configured() bool {
	return p.APIKey != ""
}

type CacheConfig struct {
	Enabled       bool
	TTL           time.Duration
	SweepInterval time.Duration
}

// PipelineConfig bounds the query pipeline.
type PipelineConfig struct {
	// CallTimeout is the per-responder provider-call timeout.
	CallTimeout time.Duration
	// RequestTimeout is the overall per-request deadline.
	RequestTimeout time.Duration
	// QueryMaxLen rejects oversized queries before dispatch.
	QueryMaxLen int
}

type HTTPConfig struct {
	AllowedOrigins []string
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("CONCIERGE_PORT", 8080),
		Version: envStr("CONCIERGE_VERSION", "1.1.0"),
		Providers: ProvidersConfig{
			Primary: ProviderConfig{
				Kind:        envStr("PRIMARY_PROVIDER", "gemini"),
				APIKey:      envStr("GEMINI_API_KEY", ""),
				Endpoint:    envStr("GEMINI_ENDPOINT", ""),
				Model:       envStr("GEMINI_MODEL", "gemini-1.5-pro"),
				Temperature: envFloat("GEMINI_TEMPERATURE", 0.7),
				MaxTokens:   envInt("GEMINI_MAX_TOKENS", 1000),
			},
			Secondary: ProviderConfig{
				Kind:        envStr("SECONDARY_PROVIDER", "openai"),
				APIKey:      envStr("OPENAI_API_KEY", ""),
				Endpoint:    envStr("OPENAI_ENDPOINT", ""),
				Model:       envStr("OPENAI_MODEL", "gpt-4o"),
				Temperature: envFloat("OPENAI_TEMPERATURE", 0.7),
				MaxTokens:   envInt("OPENAI_MAX_TOKENS", 1000),
			},
		},
		Cache: CacheConfig{
			Enabled:       envBool("CACHE_ENABLED", true),
			TTL:           envDuration("CACHE_TTL", 24*time.Hour),
			SweepInterval: envDuration("CACHE_SWEEP_INTERVAL", 10*time.Minute),
		},
		Pipeline: PipelineConfig{
			CallTimeout:    envDuration("CALL_TIMEOUT", 10*time.Second),
			RequestTimeout: envDuration("REQUEST_TIMEOUT", 25*time.Second),
			QueryMaxLen:    envInt("QUERY_MAX_LEN", 2000),
		},
		HTTP: HTTPConfig{
			AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "https://afrobeats.no"}),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "concierge"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}
