// Package models holds the shared data model for the concierge query
// pipeline: the inbound Query, the classifier's Dispatch Plan, per-responder
// results, and the final synthesized response.
package models

import (
	"time"
)

// ── Query ────────────────────────────────────────────────────

// Query is the immutable inbound request. It is never mutated after
// construction; every pipeline stage receives it by value.
type Query struct {
	// Text is the raw user query.
	Text string `json:"query"`

	// Context carries optional caller-supplied hints (e.g. "city": "oslo",
	// "date": "saturday"). Keys and values feed the cache fingerprint.
	Context map[string]string `json:"context,omitempty"`

	// ProviderPreference optionally pins the first provider tier tried
	// ("primary" or "secondary"). Empty means the configured default order.
	ProviderPreference string `json:"provider_preference,omitempty"`

	// BypassCache skips both the cache read and the cache write.
	BypassCache bool `json:"-"`
}

// ── Intent classification ────────────────────────────────────

// Intent is one (responder, confidence) pair produced by the classifier.
type Intent struct {
	Responder  string  `json:"responder"`
	Confidence float64 `json:"confidence"` // ∈ [0,1]
}

// Classification is the ordered intent set for one query, highest
// confidence first. It is never empty: an unroutable query degrades to the
// general-purpose responder rather than erroring.
type Classification struct {
	Intents []Intent `json:"intents"`

	// Fallback is true when no responder cleared the confidence threshold
	// and the default responder was substituted.
	Fallback bool `json:"fallback"`
}

// Responders returns the responder IDs in plan order.
func (c Classification) Responders() []string {
	ids := make([]string, 0, len(c.Intents))
	for _, in := range c.Intents {
		ids = append(ids, in.Responder)
	}
	return ids
}

// ── Responder results ────────────────────────────────────────

// ResultStatus is the terminal state of one responder invocation.
type ResultStatus string

const (
	StatusSucceeded ResultStatus = "succeeded"
	StatusFailed    ResultStatus = "failed"
	StatusTimedOut  ResultStatus = "timed_out"
)

// ResponderResult is produced by exactly one responder invocation and
// consumed only by the synthesizer for that request.
type ResponderResult struct {
	Responder string        `json:"responder"`
	Status    ResultStatus  `json:"status"`
	Content   string        `json:"content,omitempty"`
	Latency   time.Duration `json:"latency_ms"`
	Err       string        `json:"error,omitempty"`
}

// Succeeded reports whether the invocation produced usable content.
func (r ResponderResult) Succeeded() bool { return r.Status == StatusSucceeded }

// ── Synthesized response ─────────────────────────────────────

// SynthesizedResponse is the final answer for one request. Written once,
// cached, then returned; immutable thereafter.
type SynthesizedResponse struct {
	Response   string    `json:"response"`
	AgentsUsed []string  `json:"agents_used"`
	Timestamp  time.Time `json:"timestamp"`
	CacheHit   bool      `json:"cache_hit"`
}

// ── Provider ─────────────────────────────────────────────────

// ChatMessage is one turn in a provider chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a single text-generation call to one provider.
type CompletionRequest struct {
	Prompt string
	System string
}

// ProviderHealth reports the outcome of a provider health check.
type ProviderHealth struct {
	Provider  string `json:"provider"`
	Healthy   bool   `json:"healthy"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// ── Cache ────────────────────────────────────────────────────

// CacheStats reports cache effectiveness counters.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
