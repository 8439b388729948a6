// Package engine fans a dispatch plan out to its responders concurrently,
// enforces per-call timeouts inside the request deadline, and collects
// partial results. Concurrency is bounded by the plan size, which is itself
// bounded by the number of responder kinds.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/pkg/models"
)

var tracer = otel.Tracer("concierge-engine")

// ApologyText is the degraded answer when every responder fails or times
// out. The request still completes with a well-formed body.
const ApologyText = "I'm sorry, I couldn't process your request at this time. Please try again in a moment."

// Engine dispatches dispatch plans. One Engine serves all requests; each
// Run owns its plan and results exclusively.
type Engine struct {
	registry    *responder.Registry
	callTimeout time.Duration
}

// New creates an engine with the given per-responder call timeout.
func New(reg *responder.Registry, callTimeout time.Duration) *Engine {
	return &Engine{registry: reg, callTimeout: callTimeout}
}

// Run executes every responder in the plan concurrently and returns results
// in the plan's original order, so synthesis is deterministic regardless of
// completion order. The caller's ctx carries the per-request deadline;
// responders still running when it elapses are cancelled and recorded as
// TimedOut. A sibling's failure never cancels the others. If nothing
// succeeded, a single synthetic failed result wraps the apology so the
// request completes degraded instead of erroring.
func (e *Engine) Run(ctx context.Context, plan []string, q models.Query) []models.ResponderResult {
	if len(plan) == 0 {
		return []models.ResponderResult{syntheticFailure("no responders in plan")}
	}

	var mu sync.Mutex
	byID := make(map[string]models.ResponderResult, len(plan))

	p := pool.New().WithMaxGoroutines(len(plan))
	for _, id := range plan {
		id := id
		p.Go(func() {
			res := e.invoke(ctx, id, q)
			mu.Lock()
			byID[id] = res
			mu.Unlock()
		})
	}
	p.Wait()

	// Present results in plan priority order.
	results := make([]models.ResponderResult, 0, len(plan))
	succeeded := 0
	for _, id := range plan {
		res := byID[id]
		results = append(results, res)
		if res.Succeeded() {
			succeeded++
		}
	}

	if succeeded == 0 {
		log.Warn().Strs("plan", plan).Msg("All responders failed, degrading")
		return []models.ResponderResult{syntheticFailure("all responders failed or timed out")}
	}
	return results
}

// invoke runs one responder under its own call timeout and converts the
// outcome into a ResponderResult.
func (e *Engine) invoke(ctx context.Context, id string, q models.Query) models.ResponderResult {
	ctx, span := tracer.Start(ctx, "responder."+id)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	start := time.Now()
	result := models.ResponderResult{Responder: id}

	h := e.registry.Handler(id)
	if h == nil {
		result.Status = models.StatusFailed
		result.Err = "unknown responder: " + id
		result.Latency = time.Since(start)
		return result
	}

	content, err := h.Handle(callCtx, q)
	result.Latency = time.Since(start)
	span.SetAttributes(attribute.Int64("latency_ms", result.Latency.Milliseconds()))

	switch {
	case err == nil:
		result.Status = models.StatusSucceeded
		result.Content = content
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		result.Status = models.StatusTimedOut
		result.Err = err.Error()
		log.Warn().Str("responder", id).Dur("latency", result.Latency).Msg("Responder timed out")
	default:
		result.Status = models.StatusFailed
		result.Err = err.Error()
		log.Warn().Str("responder", id).Err(err).Msg("Responder failed")
	}
	return result
}

func syntheticFailure(detail string) models.ResponderResult {
	return models.ResponderResult{
		Responder: "engine",
		Status:    models.StatusFailed,
		Content:   ApologyText,
		Err:       detail,
	}
}
