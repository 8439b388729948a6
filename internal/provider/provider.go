// Package provider implements the uniform client for external text-generation
// services. Each service is a Driver; the Chain orders drivers into a
// primary/secondary fallback sequence with bounded retry on transient errors.
package provider

import (
	"context"
	"fmt"

	"github.com/oslobeats/concierge/pkg/models"
)

// ErrorKind classifies a provider failure for fallback decisions.
type ErrorKind string

const (
	// RateLimited means the provider returned HTTP 429. Transient: retried
	// once with backoff, then the next tier is tried.
	RateLimited ErrorKind = "rate_limited"

	// Unavailable means the provider could not be reached or returned a
	// server error. The next tier is tried without retrying this one.
	Unavailable ErrorKind = "unavailable"

	// InvalidResponse means the provider answered but the body could not be
	// used (undecodable, empty). Never retried on the same tier.
	InvalidResponse ErrorKind = "invalid_response"
)

// Error is the terminal provider failure surfaced to responders.
type Error struct {
	Kind     ErrorKind
	Provider string
	Detail   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %s: %s", e.Provider, e.Kind, e.Detail)
}

// Transient reports whether the error may clear on retry of the same tier.
func (e *Error) Transient() bool { return e.Kind == RateLimited }

// Driver is one text-generation service. Implementations must be safe for
// concurrent use; every responder in a dispatch plan calls the same driver.
type Driver interface {
	// Name identifies the driver ("gemini", "openai", test fakes).
	Name() string

	// Complete sends one prompt and returns the generated text. Failures
	// are *Error values so the Chain can decide on retry and fallback.
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)

	// HealthCheck verifies the provider is reachable with the configured
	// credentials.
	HealthCheck(ctx context.Context) error
}
