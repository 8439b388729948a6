package responder_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/oslobeats/concierge/internal/responder"
	"github.com/oslobeats/concierge/pkg/models"
)

// recordingCompleter captures the last request it saw.
type recordingCompleter struct {
	lastReq        models.CompletionRequest
	lastPreference string
	reply          string
	err            error
}

func (c *recordingCompleter) Complete(ctx context.Context, req models.CompletionRequest, preference string) (string, error) {
	c.lastReq = req
	c.lastPreference = preference
	return c.reply, c.err
}

func TestNewRegistry_CoversAllKinds(t *testing.T) {
	reg := responder.NewRegistry(&recordingCompleter{})

	kinds := []string{
		responder.KindBooking, responder.KindEvents, responder.KindPlaylist,
		responder.KindRating, responder.KindContent, responder.KindSocial,
		responder.KindArtist, responder.KindAnalytics,
	}
	if got := len(reg.Specs()); got != len(kinds) {
		t.Fatalf("Specs() returned %d entries, want %d", got, len(kinds))
	}
	for _, kind := range kinds {
		if _, ok := reg.Spec(kind); !ok {
			t.Errorf("Spec(%q) not found", kind)
		}
		if reg.Handler(kind) == nil {
			t.Errorf("Handler(%q) = nil, want handler", kind)
		}
	}
}

func TestSpec_OnlyAnalyticsIsAuxiliary(t *testing.T) {
	reg := responder.NewRegistry(&recordingCompleter{})

	for _, s := range reg.Specs() {
		want := s.ID == responder.KindAnalytics
		if s.Auxiliary != want {
			t.Errorf("Spec(%q).Auxiliary = %v, want %v", s.ID, s.Auxiliary, want)
		}
	}
}

func TestHandler_UnknownKind(t *testing.T) {
	reg := responder.NewRegistry(&recordingCompleter{})
	if h := reg.Handler("nonsense"); h != nil {
		t.Errorf("Handler(nonsense) = %v, want nil", h)
	}
}

func TestHandle_BuildsPromptFromQuery(t *testing.T) {
	completer := &recordingCompleter{reply: "DJ Afro is available."}
	reg := responder.NewRegistry(completer)

	got, err := reg.Handler(responder.KindBooking).Handle(context.Background(), models.Query{
		Text:               "book a dj for saturday",
		ProviderPreference: "secondary",
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got != "DJ Afro is available." {
		t.Errorf("Handle() = %q, want completer reply", got)
	}
	if !strings.Contains(completer.lastReq.Prompt, "book a dj for saturday") {
		t.Errorf("prompt %q does not embed the query text", completer.lastReq.Prompt)
	}
	if completer.lastReq.System == "" {
		t.Error("system prompt empty, want responder persona")
	}
	if completer.lastPreference != "secondary" {
		t.Errorf("preference = %q, want %q", completer.lastPreference, "secondary")
	}
}

func TestHandle_RendersContextHints(t *testing.T) {
	completer := &recordingCompleter{reply: "ok"}
	reg := responder.NewRegistry(completer)

	_, err := reg.Handler(responder.KindEvents).Handle(context.Background(), models.Query{
		Text: "whats on",
		Context: map[string]string{
			"city": "oslo",
			"date": "saturday",
		},
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	prompt := completer.lastReq.Prompt
	cityIdx := strings.Index(prompt, "city: oslo")
	dateIdx := strings.Index(prompt, "date: saturday")
	if cityIdx < 0 || dateIdx < 0 {
		t.Fatalf("prompt %q missing context hints", prompt)
	}
	// Hints render in sorted key order so the prompt is deterministic.
	if cityIdx > dateIdx {
		t.Errorf("context hints out of order in prompt %q", prompt)
	}
}

func TestHandle_WrapsProviderError(t *testing.T) {
	cause := errors.New("rate limited")
	completer := &recordingCompleter{err: cause}
	reg := responder.NewRegistry(completer)

	_, err := reg.Handler(responder.KindBooking).Handle(context.Background(), models.Query{Text: "book a dj"})
	if err == nil {
		t.Fatal("Handle() error = nil, want wrapped provider error")
	}
	if !errors.Is(err, cause) {
		t.Errorf("Handle() error = %v, want wrapping of %v", err, cause)
	}
	if !strings.Contains(err.Error(), responder.KindBooking) {
		t.Errorf("Handle() error = %v, want responder kind in message", err)
	}
}

type overrideResponder struct{}

func (overrideResponder) ID() string { return responder.KindBooking }
func (overrideResponder) Handle(ctx context.Context, q models.Query) (string, error) {
	return "override", nil
}

func TestRegister_ReplacesHandler(t *testing.T) {
	reg := responder.NewRegistry(&recordingCompleter{reply: "original"})
	reg.Register(overrideResponder{})

	got, err := reg.Handler(responder.KindBooking).Handle(context.Background(), models.Query{Text: "book"})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got != "override" {
		t.Errorf("Handle() = %q, want %q", got, "override")
	}
}
