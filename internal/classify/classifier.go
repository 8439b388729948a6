// Package classify implements the deterministic query coordinator: keyword
// scoring over the responder registry with a tie-break that prefers narrow
// responders on ambiguous input. Classification is a pure function of the
// query and static responder metadata; it never fails, it degrades to the
// default responder.
package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/oslobeats/concierge/internal/cache"
	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/pkg/models"
)

const (
	// ConfidenceThreshold is the minimum score a responder needs to enter
	// the dispatch plan. One weak keyword hit stays below it.
	ConfidenceThreshold = 0.30

	// tieEpsilon is the score window within which breadth decides order.
	tieEpsilon = 0.05

	// scoreDamping shapes hit counts into [0,1): score = w / (w + damping).
	scoreDamping = 3.0
)

// Classifier scores queries against the responder registry.
type Classifier struct {
	specs []responder.Spec
}

// New creates a classifier over the registry's responder set.
func New(reg *responder.Registry) *Classifier {
	return &Classifier{specs: reg.Specs()}
}

// Classify produces the ordered intent set for a query. The result is never
// empty: when nothing clears the threshold, the default general responder is
// substituted and Fallback is set.
func (c *Classifier) Classify(q models.Query) models.Classification {
	text := cache.Normalize(q.Text)
	tokens := strings.Fields(text)

	intents := make([]models.Intent, 0, len(c.specs))
	breadth := make(map[string]int, len(c.specs))
	priority := make(map[string]int, len(c.specs))

	for _, spec := range c.specs {
		score := score(text, tokens, spec.Keywords)
		breadth[spec.ID] = spec.Breadth
		priority[spec.ID] = spec.Priority
		if score >= ConfidenceThreshold {
			intents = append(intents, models.Intent{Responder: spec.ID, Confidence: score})
		}
	}

	if len(intents) == 0 {
		return models.Classification{
			Intents:  []models.Intent{{Responder: responder.DefaultKind, Confidence: 0}},
			Fallback: true,
		}
	}

	sort.SliceStable(intents, func(i, j int) bool {
		a, b := intents[i], intents[j]
		if math.Abs(a.Confidence-b.Confidence) <= tieEpsilon {
			// Near-equal scores: the responder with the narrowest declared
			// domain wins, so booking beats content on ambiguous input.
			if breadth[a.Responder] != breadth[b.Responder] {
				return breadth[a.Responder] < breadth[b.Responder]
			}
			return priority[a.Responder] < priority[b.Responder]
		}
		return a.Confidence > b.Confidence
	})

	return models.Classification{Intents: intents}
}

// score accumulates keyword hits and damps them into [0,1). Single-word
// keywords match query tokens by prefix ("dj" matches "djs", "book" matches
// "booking"); phrases match as substrings and weigh double.
func score(text string, tokens []string, keywords []string) float64 {
	var weight float64
	for _, kw := range keywords {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(text, kw) {
				weight += 2
			}
			continue
		}
		for _, tok := range tokens {
			if strings.HasPrefix(tok, kw) {
				weight++
				break
			}
		}
	}
	if weight == 0 {
		return 0
	}
	return weight / (weight + scoreDamping)
}
