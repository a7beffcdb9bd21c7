// Package nav is the navigation state machine of a deck session. It owns the
// current slide and the single active animation, and drives both from key,
// gesture and link input.
package nav

import (
	"context"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/livetemplate/wrap"
	"github.com/livetemplate/wrap/internal/animation"
	"github.com/livetemplate/wrap/internal/bookmark"
	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/keys"
	"github.com/livetemplate/wrap/internal/mirror"
)

// SwipeThreshold is the minimum horizontal travel of a swipe.
const SwipeThreshold = 10

// Print preview slide size.
const (
	PreviewWidth  = "1024px"
	PreviewHeight = "768px"
)

// Point is a pointer or touch position.
type Point struct {
	X, Y float64
}

// Config wires a Navigator to its deck and collaborators.
type Config struct {
	Deck     *wrap.Deck
	Registry *animation.Registry
	Env      animation.Env
	Store    bookmark.Store
	// Address is the page address the deck was opened with.
	Address string
	Logger  *zap.Logger
	// Mirror receives every accepted key after it is processed. Optional.
	Mirror *mirror.Mirror
	// OnShow is called after every transition. Optional.
	OnShow func(s *wrap.Slide)
}

// Navigator is the runtime state of one deck session. It is not safe for
// concurrent use: callers serialise all input through one event loop.
type Navigator struct {
	deck     *wrap.Deck
	registry *animation.Registry
	env      animation.Env
	store    bookmark.Store
	addr     string
	logger   *zap.Logger
	mirror   *mirror.Mirror
	onShow   func(s *wrap.Slide)
	ctx      context.Context

	current *wrap.Slide
	active  animation.Animation
	grab    *Point
}

// New creates a navigator with no current slide.
func New(cfg Config) *Navigator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := cfg.Mirror
	if m == nil {
		m = &mirror.Mirror{}
	}
	env := cfg.Env
	if env.Logger == nil {
		env.Logger = logger
	}
	return &Navigator{
		deck:     cfg.Deck,
		registry: cfg.Registry,
		env:      env,
		store:    cfg.Store,
		addr:     cfg.Address,
		logger:   logger,
		mirror:   m,
		onShow:   cfg.OnShow,
		ctx:      context.Background(),
	}
}

// Start shows the initial slide: the address fragment if it names a slide,
// else the stored bookmark, else the title.
func (n *Navigator) Start(ctx context.Context) {
	n.ctx = ctx
	key, err := bookmark.Resolve(ctx, n.deck.Table, n.store, n.addr)
	if err != nil {
		n.logger.Warn("bookmark lookup failed", zap.String("page", bookmark.Canonical(n.addr)), zap.Error(err))
	}
	n.Show(key, false)
}

// Current is the slide on display, nil before Start or for an empty deck.
func (n *Navigator) Current() *wrap.Slide { return n.current }

// Active is the running animation, if any.
func (n *Navigator) Active() animation.Animation { return n.active }

// Mirror is the child-window mirror fed by HandleKeyEvent.
func (n *Navigator) Mirror() *mirror.Mirror { return n.mirror }

// Show makes target current. Targets that do not name a section or aside
// fall back to the title; with no title the navigator goes idle. fromAhead
// means the viewer arrived by going backward, so the slide's animation is
// put straight into its final state.
func (n *Navigator) Show(target string, fromAhead bool) {
	n.stopActive()
	if n.current != nil {
		dom.Hide(n.current.Node)
	}
	s := n.deck.Table.Displayable(target)
	if s == nil {
		s = n.deck.Table.Title()
	}
	if s == nil {
		n.current = nil
		return
	}

	dom.Show(s.Node)
	n.current = s
	if err := bookmark.Save(n.ctx, n.store, n.addr, s.ID); err != nil {
		n.logger.Warn("bookmark save failed", zap.String("slide", s.Name), zap.Error(err))
	}
	n.activate(s, fromAhead)
	if n.onShow != nil {
		n.onShow(s)
	}
}

func (n *Navigator) showID(id int, fromAhead bool) {
	n.Show(strconv.Itoa(id), fromAhead)
}

func (n *Navigator) activate(s *wrap.Slide, fromAhead bool) {
	if s.Animation == "" {
		return
	}
	f, ok := n.registry.Lookup(s.Animation)
	if !ok {
		return
	}
	a := f.New(n.env)
	if err := a.Init(s.Node, s.Surface); err != nil {
		n.logger.Warn("animation init failed",
			zap.String("slide", s.Name), zap.String("animation", s.Animation), zap.Error(err))
		return
	}
	n.active = a
	if fromAhead {
		a.End()
	} else {
		a.Start()
	}
}

func (n *Navigator) stopActive() {
	if n.active != nil {
		n.active.Stop()
		n.active = nil
	}
}

// DoKey offers a key to the active animation, then navigates with it.
func (n *Navigator) DoKey(key string, shift, ctrl bool) {
	if n.active != nil && n.active.Key(key, shift, ctrl) {
		return
	}
	s := n.current
	if s == nil {
		return
	}
	switch {
	case keys.IsForward(key):
		if s.Next != nil {
			n.showID(*s.Next, false)
		}
	case keys.IsBackward(key):
		if s.Back != nil {
			n.showID(*s.Back, true)
		}
	}
}

// Grab records the start of a swipe.
func (n *Navigator) Grab(p Point) {
	n.grab = &p
}

// Release ends a swipe. Only mostly horizontal movement beyond the
// threshold counts: rightward goes back, leftward goes forward.
func (n *Navigator) Release(p Point) {
	start := n.grab
	n.grab = nil
	if start == nil || n.current == nil {
		return
	}
	dx, dy := p.X-start.X, p.Y-start.Y
	if math.Abs(dx) <= math.Abs(dy) {
		return
	}
	s := n.current
	switch {
	case dx > SwipeThreshold:
		if s.Back != nil {
			n.showID(*s.Back, true)
		}
	case dx < -SwipeThreshold:
		if s.Next != nil {
			n.showID(*s.Next, false)
		}
	}
}

// Jump follows a link to the slide named by its fragment.
func (n *Navigator) Jump(href string) {
	target := href
	if i := strings.LastIndexByte(href, '#'); i >= 0 {
		target = href[i+1:]
	}
	n.Show(target, false)
}

// Notify passes a viewer event to the active animation if it listens.
func (n *Navigator) Notify(ev animation.Event) {
	if l, ok := n.active.(animation.Listener); ok {
		l.Notify(ev)
	}
}

// Preview prepares the deck for printing: every section and aside is shown
// at a fixed page size with its animation in the final state.
func (n *Navigator) Preview() {
	n.stopActive()
	for _, s := range n.deck.Table.Slides() {
		if !s.Displayable() {
			continue
		}
		dom.SetStyle(s.Node, "position", "relative")
		dom.SetStyle(s.Node, "display", "block")
		dom.SetStyle(s.Node, "width", PreviewWidth)
		dom.SetStyle(s.Node, "height", PreviewHeight)
		dom.SetStyle(s.Node, "min-height", "0")
		if s.Animation == "" {
			continue
		}
		f, ok := n.registry.Lookup(s.Animation)
		if !ok {
			continue
		}
		a := f.New(n.env)
		if err := a.Init(s.Node, s.Surface); err != nil {
			n.logger.Warn("animation init failed",
				zap.String("slide", s.Name), zap.String("animation", s.Animation), zap.Error(err))
			continue
		}
		a.End()
		a.Stop()
	}
}

// Close stops the active animation when the session ends.
func (n *Navigator) Close() {
	n.stopActive()
}
