// Package synthesis merges responder outputs into one coherent answer.
// Multiple contributions are consolidated through the provider chain; when
// that call fails the merge degrades to deterministic concatenation with
// near-duplicate sentences removed.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/oslobeats/concierge/internal/cache"
	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/pkg/models"
)

const consolidationSystem = `You consolidate answers from specialized assistants into one response for a user of an Afrobeats and Amapiano platform in Oslo. Create a unified, helpful answer that removes redundancy and contradictions, prioritizes what is most relevant to the query, and reads as one seamless voice. Never mention assistants or the internal system.`

const consolidationTemplate = `USER QUERY: %s

Specialist answers:
%s

Write the single consolidated response.`

// Synthesizer merges succeeded responder results for one request.
type Synthesizer struct {
	registry  *responder.Registry
	completer responder.Completer
}

// New creates a synthesizer using the registry for auxiliary filtering and
// the completer for consolidation.
func New(reg *responder.Registry, completer responder.Completer) *Synthesizer {
	return &Synthesizer{registry: reg, completer: completer}
}

// Merge builds the final response from results already in plan priority
// order. Auxiliary responders (analytics) are recorded upstream but never
// contribute content or appear in agents_used. If nothing succeeded the
// response degrades to the engine's apology with no contributors.
func (s *Synthesizer) Merge(ctx context.Context, q models.Query, results []models.ResponderResult) *models.SynthesizedResponse {
	contributing := make([]models.ResponderResult, 0, len(results))
	degraded := ""
	for _, res := range results {
		if !res.Succeeded() {
			if res.Content != "" && degraded == "" {
				degraded = res.Content
			}
			continue
		}
		if spec, ok := s.registry.Spec(res.Responder); ok && spec.Auxiliary {
			log.Debug().Str("responder", res.Responder).Msg("Auxiliary result recorded, excluded from synthesis")
			continue
		}
		contributing = append(contributing, res)
	}

	resp := &models.SynthesizedResponse{
		AgentsUsed: make([]string, 0, len(contributing)),
		Timestamp:  time.Now().UTC(),
	}
	for _, res := range contributing {
		resp.AgentsUsed = append(resp.AgentsUsed, res.Responder)
	}

	switch len(contributing) {
	case 0:
		resp.Response = degraded
		if resp.Response == "" {
			resp.Response = "I couldn't find anything useful for that request."
		}
	case 1:
		// A single contribution passes through with light formatting
		// rather than being merged with nothing.
		resp.Response = strings.TrimSpace(contributing[0].Content)
	default:
		resp.Response = s.consolidate(ctx, q, contributing)
	}
	return resp
}

// consolidate asks the provider chain to weave contributions together,
// falling back to concatenation with sentence dedup on failure.
func (s *Synthesizer) consolidate(ctx context.Context, q models.Query, contributing []models.ResponderResult) string {
	var sections strings.Builder
	for _, res := range contributing {
		name := res.Responder
		if spec, ok := s.registry.Spec(res.Responder); ok {
			name = spec.Name
		}
		fmt.Fprintf(&sections, "From %s:\n%s\n\n", name, strings.TrimSpace(res.Content))
	}

	prompt := fmt.Sprintf(consolidationTemplate, q.Text, strings.TrimSpace(sections.String()))
	merged, err := s.completer.Complete(ctx, models.CompletionRequest{
		System: consolidationSystem,
		Prompt: prompt,
	}, q.ProviderPreference)
	if err == nil && strings.TrimSpace(merged) != "" {
		return strings.TrimSpace(merged)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Consolidation call failed, concatenating responder outputs")
	}

	return concatenate(contributing)
}

// concatenate joins contributions in plan order, dropping sentences whose
// normalized text already appeared. Equality is textual, not semantic.
func concatenate(contributing []models.ResponderResult) string {
	seen := make(map[string]struct{})
	var out []string
	for _, res := range contributing {
		var kept []string
		for _, sentence := range splitSentences(res.Content) {
			key := cache.Normalize(sentence)
			if key == "" {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, sentence)
		}
		if len(kept) > 0 {
			out = append(out, strings.Join(kept, " "))
		}
	}
	return strings.Join(out, "\n\n")
}

// splitSentences breaks text on terminal punctuation, keeping the marks.
func splitSentences(text string) []string {
	var sentences []string
	var cur strings.Builder
	for _, r := range text {
		cur.WriteRune(r)
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(cur.String()); s != "" {
				sentences = append(sentences, s)
			}
			cur.Reset()
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}
