package animation

import (
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
	"github.com/livetemplate/wrap/internal/keys"
)

// Reveal shows the paragraph children of a slide one at a time.
type Reveal struct {
	items []*html.Node
	index int
}

func (r *Reveal) Init(root *html.Node, _ *Surface) error {
	r.items = r.items[:0]
	for _, c := range dom.Children(root) {
		if dom.Tag(c) == "p" {
			r.items = append(r.items, c)
		}
	}
	r.index = 0
	return nil
}

// Start hides every paragraph.
func (r *Reveal) Start() {
	r.index = 0
	for _, p := range r.items {
		dom.SetVisibility(p, false)
	}
}

func (r *Reveal) Stop() {}

// End shows every paragraph.
func (r *Reveal) End() {
	r.index = len(r.items)
	for _, p := range r.items {
		dom.SetVisibility(p, true)
	}
}

func (r *Reveal) Key(key string, _, _ bool) bool {
	switch {
	case keys.IsForward(key):
		if r.index >= len(r.items) {
			return false
		}
		dom.SetVisibility(r.items[r.index], true)
		r.index++
		return true
	case keys.IsBackward(key):
		if r.index == 0 {
			return false
		}
		r.index--
		dom.SetVisibility(r.items[r.index], false)
		return true
	}
	return false
}
