package provider_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/internal/provider"
	"github.com/oslobeats/concierge/pkg/models"
)

// call is one scripted driver response. Drivers replay their script and
// repeat the last entry once it is exhausted.
type call struct {
	text string
	err  error
}

// fakeDriver is a scripted test Driver.
type fakeDriver struct {
	name      string
	script    []call
	delay     time.Duration
	healthErr error

	calls int
}

func (d *fakeDriver) Name() string { return d.name }

func (d *fakeDriver) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	idx := d.calls
	if idx >= len(d.script) {
		idx = len(d.script) - 1
	}
	d.calls++
	if d.delay > 0 {
		time.Sleep(d.delay)
	}
	c := d.script[idx]
	return c.text, c.err
}

func (d *fakeDriver) HealthCheck(ctx context.Context) error { return d.healthErr }

func rateLimited(name string) error {
	return &provider.Error{Kind: provider.RateLimited, Provider: name, Detail: "429"}
}

func unavailable(name string) error {
	return &provider.Error{Kind: provider.Unavailable, Provider: name, Detail: "503"}
}

func invalidResponse(name string) error {
	return &provider.Error{Kind: provider.InvalidResponse, Provider: name, Detail: "empty candidates"}
}

func TestComplete_PrimarySuccess(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{text: "from primary"}}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from primary" {
		t.Errorf("Complete() = %q, want %q", got, "from primary")
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestComplete_RateLimitedRetriesOnceThenFallsBack(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{err: rateLimited("gemini")}}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from secondary" {
		t.Errorf("Complete() = %q, want %q", got, "from secondary")
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2 (original + one retry)", primary.calls)
	}
	if secondary.calls != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.calls)
	}
}

func TestComplete_RateLimitedRetrySucceedsOnSameTier(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{
		{err: rateLimited("gemini")},
		{text: "recovered"},
	}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "recovered" {
		t.Errorf("Complete() = %q, want %q", got, "recovered")
	}
	if primary.calls != 2 {
		t.Errorf("primary called %d times, want 2", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestComplete_UnavailableFallsThroughWithoutRetry(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{err: unavailable("gemini")}}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from secondary" {
		t.Errorf("Complete() = %q, want %q", got, "from secondary")
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1 (no retry on unavailable)", primary.calls)
	}
}

func TestComplete_InvalidResponseIsTerminal(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{err: invalidResponse("gemini")}}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	_, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err == nil {
		t.Fatal("Complete() error = nil, want terminal invalid-response error")
	}

	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Complete() error = %v, want *provider.Error", err)
	}
	if perr.Kind != provider.InvalidResponse {
		t.Errorf("error Kind = %q, want %q", perr.Kind, provider.InvalidResponse)
	}
	if primary.calls != 1 {
		t.Errorf("primary called %d times, want 1", primary.calls)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0 (no fallback past invalid response)", secondary.calls)
	}
}

func TestComplete_AllTiersExhausted(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{err: unavailable("gemini")}}}
	secondary := &fakeDriver{name: "openai", script: []call{{err: unavailable("openai")}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	_, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err == nil {
		t.Fatal("Complete() error = nil, want error after all tiers exhausted")
	}

	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Complete() error = %v, want *provider.Error", err)
	}
	if perr.Provider != "openai" {
		t.Errorf("error Provider = %q, want last tier %q", perr.Provider, "openai")
	}
}

func TestComplete_NoFallbackWarningAfterLastTier(t *testing.T) {
	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	primary := &fakeDriver{name: "gemini", script: []call{{err: unavailable("gemini")}}}
	secondary := &fakeDriver{name: "openai", script: []call{{err: unavailable("openai")}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	if _, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, ""); err == nil {
		t.Fatal("Complete() error = nil, want error after all tiers exhausted")
	}

	// Only the primary failure has a next tier to announce.
	if got := strings.Count(buf.String(), "trying next tier"); got != 1 {
		t.Errorf("fallback warning logged %d times, want 1: %s", got, buf.String())
	}
}

func TestComplete_PreferenceReordersTiers(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{text: "from primary"}}}
	secondary := &fakeDriver{name: "openai", script: []call{{text: "from secondary"}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "secondary")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from secondary" {
		t.Errorf("Complete() = %q, want %q", got, "from secondary")
	}
	if primary.calls != 0 {
		t.Errorf("primary called %d times, want 0", primary.calls)
	}
}

func TestComplete_PreferredTierFallsBackToRest(t *testing.T) {
	primary := &fakeDriver{name: "gemini", script: []call{{text: "from primary"}}}
	secondary := &fakeDriver{name: "openai", script: []call{{err: unavailable("openai")}}}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: primary},
		provider.Tier{Label: "secondary", Driver: secondary},
	)

	got, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "secondary")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != "from primary" {
		t.Errorf("Complete() = %q, want %q", got, "from primary")
	}
	if secondary.calls != 1 {
		t.Errorf("secondary called %d times, want 1", secondary.calls)
	}
}

func TestComplete_NoTiersConfigured(t *testing.T) {
	chain := provider.NewChain()

	_, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, "")
	if err == nil {
		t.Fatal("Complete() error = nil, want error with no tiers")
	}

	var perr *provider.Error
	if !errors.As(err, &perr) {
		t.Fatalf("Complete() error = %v, want *provider.Error", err)
	}
	if perr.Kind != provider.Unavailable {
		t.Errorf("error Kind = %q, want %q", perr.Kind, provider.Unavailable)
	}
}

func TestTiers(t *testing.T) {
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: &fakeDriver{name: "gemini", script: []call{{}}}},
		provider.Tier{Label: "secondary", Driver: &fakeDriver{name: "openai", script: []call{{}}}},
	)

	got := chain.Tiers()
	if len(got) != 2 || got[0] != "primary" || got[1] != "secondary" {
		t.Errorf("Tiers() = %v, want [primary secondary]", got)
	}
}

func TestLatency_RecordedOnSuccess(t *testing.T) {
	slow := &fakeDriver{name: "gemini", delay: 15 * time.Millisecond, script: []call{{text: "ok"}}}
	chain := provider.NewChain(provider.Tier{Label: "primary", Driver: slow})

	if got := chain.Latency("gemini"); got != 0 {
		t.Fatalf("Latency() before any call = %d, want 0", got)
	}

	if _, err := chain.Complete(context.Background(), models.CompletionRequest{Prompt: "hi"}, ""); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got := chain.Latency("gemini"); got < 10 {
		t.Errorf("Latency() after 15ms call = %d, want >= 10", got)
	}
}

func TestHealthCheck(t *testing.T) {
	healthy := &fakeDriver{name: "gemini", script: []call{{}}}
	unhealthy := &fakeDriver{name: "openai", script: []call{{}}, healthErr: errors.New("connection refused")}
	chain := provider.NewChain(
		provider.Tier{Label: "primary", Driver: healthy},
		provider.Tier{Label: "secondary", Driver: unhealthy},
	)

	got := chain.HealthCheck(context.Background())
	if len(got) != 2 {
		t.Fatalf("HealthCheck() returned %d results, want 2", len(got))
	}
	if !got[0].Healthy {
		t.Errorf("HealthCheck()[0].Healthy = false, want true")
	}
	if got[1].Healthy {
		t.Errorf("HealthCheck()[1].Healthy = true, want false")
	}
	if got[1].Error == "" {
		t.Errorf("HealthCheck()[1].Error empty, want failure detail")
	}
}
