package provider

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/pkg/models"
)

// Tier pairs a fallback position label ("primary", "secondary") with the
// driver serving it.
type Tier struct {
	Label  string
	Driver Driver
}

// Chain tries tiers in order. RateLimited errors get one backoff retry on
// the same tier; RateLimited and Unavailable fall through to the next tier;
// InvalidResponse is terminal for the whole call. Adding a third provider is
// a registration change only.
type Chain struct {
	tiers []Tier

	// Rolling latency per driver name, EMA weighted toward history.
	latencyMu sync.RWMutex
	latencies map[string]int64
}

// NewChain creates a fallback chain over the given tiers, tried in order.
func NewChain(tiers ...Tier) *Chain {
	return &Chain{
		tiers:     tiers,
		latencies: make(map[string]int64),
	}
}

// Tiers returns the configured tier labels in default order.
func (c *Chain) Tiers() []string {
	labels := make([]string, 0, len(c.tiers))
	for _, t := range c.tiers {
		labels = append(labels, t.Label)
	}
	return labels
}

// Complete runs one completion through the chain. A non-empty preference
// moves the named tier to the front of the attempt order.
func (c *Chain) Complete(ctx context.Context, req models.CompletionRequest, preference string) (string, error) {
	ordered := c.order(preference)
	if len(ordered) == 0 {
		return "", &Error{Kind: Unavailable, Provider: "chain", Detail: "no providers configured"}
	}

	var lastErr error
	for i, tier := range ordered {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return "", lastErr
			}
			return "", err
		}

		text, err := c.completeTier(ctx, tier, req)
		if err == nil {
			return text, nil
		}
		lastErr = err

		var perr *Error
		if !errors.As(err, &perr) {
			// Context cancellation and other non-provider failures are not
			// recoverable by switching providers.
			return "", err
		}
		if perr.Kind == InvalidResponse {
			return "", err
		}

		if i < len(ordered)-1 {
			log.Warn().
				Str("provider", tier.Driver.Name()).
				Str("tier", tier.Label).
				Str("kind", string(perr.Kind)).
				Msg("Provider call failed, trying next tier")
		}
	}

	return "", lastErr
}

// completeTier runs one tier with at most one backoff retry, and only when
// the failure is transient (RateLimited).
func (c *Chain) completeTier(ctx context.Context, tier Tier, req models.CompletionRequest) (string, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	var text string
	op := func() error {
		start := time.Now()
		out, err := tier.Driver.Complete(ctx, req)
		if err == nil {
			c.recordLatency(tier.Driver.Name(), time.Since(start).Milliseconds())
			text = out
			return nil
		}

		var perr *Error
		if errors.As(err, &perr) && perr.Transient() {
			return err
		}
		return backoff.Permanent(err)
	}

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, 1), ctx))
	if err != nil {
		return "", err
	}
	return text, nil
}

// order returns the tiers in attempt order, honoring a tier-label preference.
func (c *Chain) order(preference string) []Tier {
	if preference == "" {
		return c.tiers
	}
	ordered := make([]Tier, 0, len(c.tiers))
	for _, t := range c.tiers {
		if t.Label == preference {
			ordered = append(ordered, t)
		}
	}
	for _, t := range c.tiers {
		if t.Label != preference {
			ordered = append(ordered, t)
		}
	}
	return ordered
}

func (c *Chain) recordLatency(name string, ms int64) {
	c.latencyMu.Lock()
	prev := c.latencies[name]
	if prev == 0 {
		c.latencies[name] = ms
	} else {
		// Exponential moving average
		c.latencies[name] = (prev*7 + ms*3) / 10
	}
	c.latencyMu.Unlock()
}

// Latency returns the rolling average latency for a driver, 0 if unseen.
func (c *Chain) Latency(name string) int64 {
	c.latencyMu.RLock()
	defer c.latencyMu.RUnlock()
	return c.latencies[name]
}

// HealthCheck probes every tier and reports per-provider health.
func (c *Chain) HealthCheck(ctx context.Context) []models.ProviderHealth {
	out := make([]models.ProviderHealth, 0, len(c.tiers))
	for _, tier := range c.tiers {
		checkCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		start := time.Now()
		err := tier.Driver.HealthCheck(checkCtx)
		cancel()

		health := models.ProviderHealth{
			Provider:  fmt.Sprintf("%s (%s)", tier.Driver.Name(), tier.Label),
			Healthy:   err == nil,
			LatencyMs: time.Since(start).Milliseconds(),
		}
		if err != nil {
			health.Error = err.Error()
		}
		out = append(out, health)
	}
	return out
}
