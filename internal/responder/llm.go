package responder

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/oslobeats/concierge/pkg/models"
)

// llmResponder is the generic LLM-backed handler behind every registry row.
// It renders the spec's prompt, folds in any caller context hints, and runs
// the completion through the provider chain.
type llmResponder struct {
	spec      Spec
	completer Completer
}

func newLLMResponder(spec Spec, completer Completer) *llmResponder {
	return &llmResponder{spec: spec, completer: completer}
}

func (l *llmResponder) ID() string { return l.spec.ID }

func (l *llmResponder) Handle(ctx context.Context, q models.Query) (string, error) {
	prompt := fmt.Sprintf(l.spec.Template, q.Text)
	if hints := renderContext(q.Context); hints != "" {
		prompt += "\n\nCaller context:\n" + hints
	}

	text, err := l.completer.Complete(ctx, models.CompletionRequest{
		System: l.spec.System,
		Prompt: prompt,
	}, q.ProviderPreference)
	if err != nil {
		return "", fmt.Errorf("%s responder: %w", l.spec.ID, err)
	}
	return text, nil
}

// renderContext formats context hints as prompt lines in stable key order,
// skipping empties.
func renderContext(ctx map[string]string) string {
	if len(ctx) == 0 {
		return ""
	}
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		if k != "" && ctx[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, ctx[k])
	}
	return strings.TrimRight(b.String(), "\n")
}
