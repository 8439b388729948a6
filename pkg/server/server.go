// Package server composes the concierge query engine: provider chain,
// response cache, responder registry, classifier, execution engine,
// synthesizer, orchestrator, and the HTTP boundary.
//
// Usage:
//
//	srv, err := server.New(ctx)
//	http.ListenAndServe(":8080", srv.Handler)
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/internal/api"
	"github.com/oslobeats/concierge/internal/api/handlers"
	"github.com/oslobeats/concierge/internal/cache"
	"github.com/oslobeats/concierge/internal/classify"
	"github.com/oslobeats/concierge/internal/config"
	"github.com/oslobeats/concierge/internal/engine"
	"github.com/oslobeats/concierge/internal/orchestrator"
	"github.com/oslobeats/concierge/internal/provider"
	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/internal/synthesis"
	"github.com/oslobeats/concierge/internal/telemetry"
)

// Server holds the initialized concierge service.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Cache is the response cache; exposed so main can Close it.
	Cache cache.ResponseCache

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc flushes telemetry on graceful shutdown.
	ShutdownFunc func(context.Context) error
}

// New initializes the service from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the service with an explicit configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry, cfg.Version)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	chain := buildChain(cfg.Providers)
	if len(chain.Tiers()) == 0 {
		log.Warn().Msg("No provider API keys configured; queries will be rejected")
	}

	var rc cache.ResponseCache
	if cfg.Cache.Enabled {
		rc = cache.NewMemory(cfg.Cache.TTL, cfg.Cache.SweepInterval)
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("Response cache enabled")
	} else {
		rc = cache.Disabled{}
		log.Info().Msg("Response cache disabled")
	}

	registry := responder.NewRegistry(chain)
	classifier := classify.New(registry)
	eng := engine.New(registry, cfg.Pipeline.CallTimeout)
	synth := synthesis.New(registry, chain)
	orch := orchestrator.New(classifier, eng, synth, rc, cfg.Pipeline.RequestTimeout, cfg.Pipeline.QueryMaxLen)

	h := handlers.New(orch, rc, registry, chain)
	router := api.NewRouter(cfg, h)

	log.Info().
		Strs("providers", chain.Tiers()).
		Int("responders", len(registry.Specs())).
		Msg("Concierge initialized")

	return &Server{
		Handler:      router,
		Cache:        rc,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

// buildChain assembles the fallback chain from the configured tiers,
// skipping tiers without credentials.
func buildChain(cfg config.ProvidersConfig) *provider.Chain {
	var tiers []provider.Tier
	if cfg.Primary.Configured() {
		tiers = append(tiers, provider.Tier{Label: "primary", Driver: newDriver(cfg.Primary)})
	}
	if cfg.Secondary.Configured() {
		tiers = append(tiers, provider.Tier{Label: "secondary", Driver: newDriver(cfg.Secondary)})
	}
	return provider.NewChain(tiers...)
}

func newDriver(cfg config.ProviderConfig) provider.Driver {
	switch cfg.Kind {
	case "openai":
		return provider.NewOpenAI(cfg)
	default:
		return provider.NewGemini(cfg)
	}
}
