// Package orchestrator runs the full query pipeline: cache read, intent
// classification, concurrent dispatch, synthesis, cache write. It is the
// single entry point the request boundary calls.
package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/oslobeats/concierge/internal/cache"
	"github.com/oslobeats/concierge/internal/classify"
	"github.com/oslobeats/concierge/internal/engine"
	"github.com/oslobeats/concierge/internal/synthesis"
	"github.com/oslobeats/concierge/pkg/models"
)

var tracer = otel.Tracer("concierge-orchestrator")

// ErrEmptyQuery is returned before dispatch for blank queries.
var ErrEmptyQuery = errors.New("query must not be empty")

// ErrQueryTooLong is returned before dispatch for oversized queries.
var ErrQueryTooLong = errors.New("query exceeds length bound")

// Orchestrator owns the pipeline stages. The cache is injected, never
// ambient, so tests can substitute a fake with a controllable TTL.
type Orchestrator struct {
	classifier     *classify.Classifier
	engine         *engine.Engine
	synthesizer    *synthesis.Synthesizer
	cache          cache.ResponseCache
	requestTimeout time.Duration
	queryMaxLen    int
}

// New wires the orchestrator.
func New(cl *classify.Classifier, en *engine.Engine, sy *synthesis.Synthesizer, rc cache.ResponseCache, requestTimeout time.Duration, queryMaxLen int) *Orchestrator {
	return &Orchestrator{
		classifier:     cl,
		engine:         en,
		synthesizer:    sy,
		cache:          rc,
		requestTimeout: requestTimeout,
		queryMaxLen:    queryMaxLen,
	}
}

// Answer runs one query through the pipeline. Failures below this boundary
// are absorbed into the degraded-answer path; the only errors returned are
// input validation failures.
func (o *Orchestrator) Answer(ctx context.Context, q models.Query) (*models.SynthesizedResponse, error) {
	if q.Text == "" {
		return nil, ErrEmptyQuery
	}
	if o.queryMaxLen > 0 && len(q.Text) > o.queryMaxLen {
		return nil, ErrQueryTooLong
	}

	ctx, span := tracer.Start(ctx, "query.answer")
	defer span.End()

	// Pipeline run identity, distinct from any transport request ID: cache
	// hits and recomputations for the same HTTP request get their own run.
	runID := uuid.NewString()
	span.SetAttributes(attribute.String("run_id", runID))

	start := time.Now()

	classification := o.classifier.Classify(q)
	plan := classification.Responders()
	span.SetAttributes(
		attribute.StringSlice("plan", plan),
		attribute.Bool("classification_fallback", classification.Fallback),
	)

	// The fingerprint covers the active responder set, so a registry change
	// naturally invalidates old entries.
	fp := cache.Fingerprint(q, plan)

	if !q.BypassCache {
		if cached, ok := o.cache.Get(fp); ok {
			log.Info().Str("run_id", runID).Str("fingerprint", fp[:8]).Strs("plan", plan).Msg("Cache hit")
			span.SetAttributes(attribute.Bool("cache_hit", true))
			hit := *cached
			hit.CacheHit = true
			return &hit, nil
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, o.requestTimeout)
	defer cancel()

	results := o.engine.Run(runCtx, plan, q)
	resp := o.synthesizer.Merge(runCtx, q, results)

	degraded := len(resp.AgentsUsed) == 0
	if !q.BypassCache && !degraded {
		// Racing writes for the same fingerprint are idempotent
		// last-write-wins; degraded apologies are never cached.
		o.cache.Put(fp, resp)
	}

	log.Info().
		Str("run_id", runID).
		Strs("plan", plan).
		Strs("agents_used", resp.AgentsUsed).
		Bool("degraded", degraded).
		Dur("duration", time.Since(start)).
		Msg("Query answered")

	return resp, nil
}
