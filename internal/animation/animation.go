// Package animation defines the per-slide animation plugin protocol, the
// registry that maps data-animate identifiers to plugin constructors, and the
// built-in plugins.
//
// An animation is created fresh each time its slide becomes current. The
// navigator calls Init, then exactly one of Start or End, offers it keys while
// the slide is shown, and always calls Stop before discarding it. Stop must
// cancel every pending continuation the plugin scheduled.
package animation

import (
	"image"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/loop"
)

// Animation is the capability set every plugin implements.
type Animation interface {
	// Init prepares state from the slide's content. It is called again on
	// every re-entry to the slide and must tolerate content left behind by a
	// previous activation.
	Init(root *html.Node, surface *Surface) error
	// Start begins from the initial position.
	Start()
	// End jumps to the settled final state without intermediate steps.
	End()
	// Stop halts pending continuations without changing visual state.
	Stop()
	// Key offers a key press; true means the key was consumed.
	Key(key string, shift, ctrl bool) bool
}

// EventType names an asynchronous notification from the viewer.
type EventType string

const (
	MediaLoaded EventType = "media-loaded"
	MediaEnded  EventType = "media-ended"
)

// Event is a readiness or completion notification for the active animation.
type Event struct {
	Type     EventType
	Duration float64
}

// Listener is implemented by animations that react to viewer events.
type Listener interface {
	Notify(ev Event)
}

// ImageLoader fetches an image asynchronously. done must be invoked on the
// session's event loop.
type ImageLoader func(src string, done func(image.Image, error))

// Env is what a plugin may use besides the slide content.
type Env struct {
	Scheduler loop.Scheduler
	LoadImage ImageLoader
	Logger    *zap.Logger
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// Factory constructs a plugin instance.
type Factory struct {
	Kind string
	// NeedsSurface asks the deck builder to create an overlay surface for
	// slides using this kind.
	NeedsSurface bool
	New          func(env Env) Animation
}

// Registry maps animation kind identifiers to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds or replaces a factory.
func (r *Registry) Register(f Factory) {
	r.factories[f.Kind] = f
}

// Lookup finds the factory for kind. Unknown kinds report false, which
// callers treat as "no animation".
func (r *Registry) Lookup(kind string) (Factory, bool) {
	if r == nil || kind == "" {
		return Factory{}, false
	}
	f, ok := r.factories[kind]
	return f, ok && f.New != nil
}

// Kinds lists the registered identifiers in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Builtins returns a registry holding the stock plugins.
func Builtins() *Registry {
	r := NewRegistry()
	r.Register(Factory{Kind: "reveal", New: func(Env) Animation { return &Reveal{} }})
	r.Register(Factory{Kind: "countdown", New: func(env Env) Animation { return &Countdown{env: env} }})
	r.Register(Factory{Kind: "bounce", NeedsSurface: true, New: func(env Env) Animation { return &Bounce{env: env} }})
	r.Register(Factory{Kind: "draw", NeedsSurface: true, New: func(env Env) Animation { return &Draw{env: env} }})
	r.Register(Factory{Kind: "play", New: func(Env) Animation { return &Play{} }})
	r.Register(Factory{Kind: "type", New: func(env Env) Animation { return &Typing{env: env} }})
	return r
}
