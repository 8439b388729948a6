// Package responder defines the fixed set of specialized responders and the
// static registry the classifier and engine consult. Each responder owns its
// prompt construction and calls the provider chain; responders never call
// each other, which keeps the fan-out embarrassingly parallel.
package responder

import (
	"context"

	"github.com/oslobeats/concierge/pkg/models"
)

// Kinds of the closed responder set. Adding a responder is a new constant
// plus a Spec row — no dispatch changes.
const (
	KindBooking   = "booking"
	KindEvents    = "events"
	KindPlaylist  = "playlist"
	KindRating    = "rating"
	KindContent   = "content"
	KindSocial    = "social"
	KindArtist    = "artist"
	KindAnalytics = "analytics"
)

// DefaultKind is the general-purpose responder used when classification
// finds no specific match.
const DefaultKind = KindContent

// Responder answers one category of query. Implementations return the
// answer text; the execution engine converts the outcome into a
// ResponderResult. A responder that has nothing to offer (no matching DJ,
// no events that week) returns explicit no-results text with a nil error —
// errors are reserved for execution failures.
type Responder interface {
	ID() string
	Handle(ctx context.Context, q models.Query) (string, error)
}

// Spec is the static metadata for one responder kind.
type Spec struct {
	ID          string
	Name        string
	Description string

	// Keywords drive the deterministic classifier. Single words match query
	// tokens by prefix; phrases match as substrings and score double.
	Keywords []string

	// Breadth ranks how wide the responder's declared domain is. The
	// classifier's tie-break prefers the narrowest responder when scores
	// are near-equal, so booking beats content on ambiguous input.
	Breadth int

	// Priority fixes synthesis order across responders (ascending).
	Priority int

	// Auxiliary responders run and are recorded, but never contribute to
	// the synthesized answer. Analytics is fire-and-forget.
	Auxiliary bool

	// System and Template build the responder's prompt.
	System   string
	Template string
}

// specs is the registry table. Order here is incidental; Priority decides
// synthesis order.
var specs = []Spec{
	{
		ID:          KindBooking,
		Name:        "DJ Booking",
		Description: "DJ booking requests, availability checking, and pricing",
		Keywords: []string{
			"book", "booking", "hire", "dj", "djs", "availability", "available",
			"price", "pricing", "cost", "rate", "fee", "wedding", "birthday",
			"book a dj", "hire a dj", "dj for my event",
			"dj afro", "amapianoqueen", "oslo beats",
		},
		Breadth:  2,
		Priority: 1,
		System:   bookingSystem,
		Template: bookingTemplate,
	},
	{
		ID:          KindEvents,
		Name:        "Event Discovery",
		Description: "Afrobeats and Amapiano events in Oslo",
		Keywords: []string{
			"event", "events", "concert", "show", "performance", "festival",
			"happening", "tonight", "weekend", "schedule", "calendar",
			"venue", "tickets", "whats on", "going on",
		},
		Breadth:  3,
		Priority: 2,
		System:   eventsSystem,
		Template: eventsTemplate,
	},
	{
		ID:          KindPlaylist,
		Name:        "Playlist Curator",
		Description: "Playlists and track recommendations",
		Keywords: []string{
			"playlist", "playlists", "song", "songs", "track", "tracks",
			"music", "mix", "vibe", "chart", "recommend", "recommendation",
			"listen", "curate",
		},
		Breadth:  3,
		Priority: 3,
		System:   playlistSystem,
		Template: playlistTemplate,
	},
	{
		ID:          KindRating,
		Name:        "DJ Rating",
		Description: "DJ ratings and reviews",
		Keywords: []string{
			"rating", "ratings", "rate", "review", "reviews", "stars",
			"feedback", "best dj", "top dj", "highest rated",
		},
		Breadth:  2,
		Priority: 4,
		System:   ratingSystem,
		Template: ratingTemplate,
	},
	{
		ID:          KindArtist,
		Name:        "Artist Discovery",
		Description: "Artist discovery and artist-related inquiries",
		Keywords: []string{
			"artist", "artists", "discover", "similar to", "who is",
			"burna boy", "wizkid", "davido", "tems", "asake", "ayra starr",
			"kabza", "maphorisa",
		},
		Breadth:  3,
		Priority: 5,
		System:   artistSystem,
		Template: artistTemplate,
	},
	{
		ID:          KindContent,
		Name:        "General Information",
		Description: "General information about the genres and the Oslo scene",
		Keywords: []string{
			"what is", "history", "about", "culture", "genre", "origin",
			"afrobeats", "amapiano", "scene", "learn", "explain", "news",
		},
		Breadth:  9,
		Priority: 6,
		System:   contentSystem,
		Template: contentTemplate,
	},
	{
		ID:          KindSocial,
		Name:        "Social Media",
		Description: "Social media content and promotion",
		Keywords: []string{
			"instagram", "tiktok", "social", "share", "post", "follow",
			"hashtag", "promote", "caption", "reel",
		},
		Breadth:  2,
		Priority: 7,
		System:   socialSystem,
		Template: socialTemplate,
	},
	{
		ID:          KindAnalytics,
		Name:        "Analytics",
		Description: "Trends, stats, and insights for the Oslo scene",
		Keywords: []string{
			"trend", "trends", "trending", "stats", "statistics", "analytics",
			"insights", "engagement", "metrics", "data",
		},
		Breadth:   3,
		Priority:  8,
		Auxiliary: true,
		System:    analyticsSystem,
		Template:  analyticsTemplate,
	},
}

// Registry holds the responder set for one server instance.
type Registry struct {
	specs    []Spec
	byID     map[string]Spec
	handlers map[string]Responder
}

// Completer is the provider capability responders depend on. The chain
// satisfies it; tests substitute stubs.
type Completer interface {
	Complete(ctx context.Context, req models.CompletionRequest, preference string) (string, error)
}

// NewRegistry builds the registry with one LLM-backed handler per spec row.
func NewRegistry(completer Completer) *Registry {
	r := &Registry{
		specs:    specs,
		byID:     make(map[string]Spec, len(specs)),
		handlers: make(map[string]Responder, len(specs)),
	}
	for _, s := range specs {
		r.byID[s.ID] = s
		r.handlers[s.ID] = newLLMResponder(s, completer)
	}
	return r
}

// Specs returns the registry table.
func (r *Registry) Specs() []Spec { return r.specs }

// Spec returns the metadata for a responder kind.
func (r *Registry) Spec(id string) (Spec, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Handler returns the responder for a kind, nil if unknown.
func (r *Registry) Handler(id string) Responder { return r.handlers[id] }

// Register swaps in a handler for a kind. Used by tests to substitute fakes.
func (r *Registry) Register(h Responder) { r.handlers[h.ID()] = h }
