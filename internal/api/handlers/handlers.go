// Package handlers implements the HTTP handlers for the concierge query
// boundary. All failures below this boundary arrive as structured partial
// results; the handlers only ever reject malformed input or report a
// missing provider configuration.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/internal/cache"
	"github.com/oslobeats/concierge/internal/orchestrator"
	"github.com/oslobeats/concierge/internal/provider"
	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/pkg/models"
)

// Handlers holds all handler dependencies.
type Handlers struct {
	Orchestrator *orchestrator.Orchestrator
	Cache        cache.ResponseCache
	Registry     *responder.Registry
	Chain        *provider.Chain
}

// New creates a Handlers instance.
func New(o *orchestrator.Orchestrator, rc cache.ResponseCache, reg *responder.Registry, chain *provider.Chain) *Handlers {
	return &Handlers{Orchestrator: o, Cache: rc, Registry: reg, Chain: chain}
}

// queryRequest is the POST /query body.
type queryRequest struct {
	Query              string            `json:"query"`
	Context            map[string]string `json:"context,omitempty"`
	ProviderPreference string            `json:"provider_preference,omitempty"`
	UseCache           *bool             `json:"use_cache,omitempty"`
}

// queryResponse is the POST /query reply. ProcessingMs and RequestID are
// observability extras; internal failure detail never appears here.
type queryResponse struct {
	Response     string    `json:"response"`
	AgentsUsed   []string  `json:"agents_used"`
	Timestamp    time.Time `json:"timestamp"`
	CacheHit     bool      `json:"cache_hit"`
	ProcessingMs int64     `json:"processing_ms"`
	RequestID    string    `json:"request_id,omitempty"`
}

// Query answers one natural-language query.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, false)
}

// QueryFresh answers one query with the cache forced off for both read
// and write.
func (h *Handlers) QueryFresh(w http.ResponseWriter, r *http.Request) {
	h.serveQuery(w, r, true)
}

func (h *Handlers) serveQuery(w http.ResponseWriter, r *http.Request, forceFresh bool) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch req.ProviderPreference {
	case "", "primary", "secondary":
	default:
		respondError(w, http.StatusBadRequest, "provider_preference must be \"primary\" or \"secondary\"")
		return
	}

	if len(h.Chain.Tiers()) == 0 {
		// The degraded-answer path itself cannot run without a provider.
		respondError(w, http.StatusServiceUnavailable, "No text-generation providers configured")
		return
	}

	bypass := forceFresh
	if req.UseCache != nil && !*req.UseCache {
		bypass = true
	}

	q := models.Query{
		Text:               req.Query,
		Context:            req.Context,
		ProviderPreference: req.ProviderPreference,
		BypassCache:        bypass,
	}

	start := time.Now()
	resp, err := h.Orchestrator.Answer(r.Context(), q)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrEmptyQuery):
			respondError(w, http.StatusBadRequest, "query is required")
		case errors.Is(err, orchestrator.ErrQueryTooLong):
			respondError(w, http.StatusBadRequest, "query exceeds the maximum length")
		default:
			log.Error().Err(err).Msg("Query pipeline error")
			respondError(w, http.StatusInternalServerError, "Internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, queryResponse{
		Response:     resp.Response,
		AgentsUsed:   resp.AgentsUsed,
		Timestamp:    resp.Timestamp,
		CacheHit:     resp.CacheHit,
		ProcessingMs: time.Since(start).Milliseconds(),
		RequestID:    chimw.GetReqID(r.Context()),
	})
}

// responderInfo is one row of GET /responders.
type responderInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Auxiliary   bool   `json:"auxiliary,omitempty"`
}

// ListResponders returns the registered responder set.
func (h *Handlers) ListResponders(w http.ResponseWriter, r *http.Request) {
	specs := h.Registry.Specs()
	out := make([]responderInfo, 0, len(specs))
	for _, s := range specs {
		out = append(out, responderInfo{
			ID:          s.ID,
			Name:        s.Name,
			Description: s.Description,
			Auxiliary:   s.Auxiliary,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// ProviderHealth probes the provider chain.
func (h *Handlers) ProviderHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Chain.HealthCheck(r.Context()))
}

// CacheStats returns cache effectiveness counters.
func (h *Handlers) CacheStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.Cache.Stats())
}

// CacheClear evicts the whole cache.
func (h *Handlers) CacheClear(w http.ResponseWriter, r *http.Request) {
	n := h.Cache.Clear()
	log.Info().Int("evicted", n).Msg("Cache cleared")
	respondJSON(w, http.StatusOK, map[string]int{"evicted": n})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
