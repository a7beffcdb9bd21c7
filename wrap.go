// Package wrap turns an HTML document whose body holds section, aside and
// template elements into a navigable slide deck.
//
// Building a deck classifies the body's element children into slides, names
// them, links them back/next/up/down, composes templates into them and
// discovers their animations. Runtime navigation lives in internal/nav.
package wrap

import (
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/animation"
)

// Kind classifies a top-level element of the deck.
type Kind int

const (
	KindUnknown Kind = iota
	KindSection
	KindAside
	KindTemplate
)

func (k Kind) String() string {
	switch k {
	case KindSection:
		return "section"
	case KindAside:
		return "aside"
	case KindTemplate:
		return "template"
	}
	return "?"
}

// kindOf maps a tag name to a slide kind.
func kindOf(tag string) Kind {
	switch tag {
	case "section":
		return KindSection
	case "aside":
		return KindAside
	case "template":
		return KindTemplate
	}
	return KindUnknown
}

// Slide is one top-level element of the deck.
type Slide struct {
	// ID is the slide's index among the body's element children.
	ID   int
	Kind Kind
	// Name is "1", "2", ... for sections and "1a", "1b", ... for asides.
	Name string
	// Neighbour links by id; nil when absent.
	Back, Next, Up, Down *int
	// Node is the slide's element. For a template it is a detached copy of
	// the template content.
	Node *html.Node
	// Template is the id of the template composed into the slide, if any.
	Template *int
	// Animation is the registered animation kind, empty for static slides.
	Animation string
	// Surface is the overlay for animations that draw; it lives as long as
	// the slide and is reused on every activation.
	Surface *animation.Surface
}

// Displayable reports whether the slide can be shown.
func (s *Slide) Displayable() bool {
	return s != nil && (s.Kind == KindSection || s.Kind == KindAside)
}

// Deck is a built slide deck.
type Deck struct {
	// Source is the file the deck was read from, if any.
	Source string
	Doc    *html.Node
	Body   *html.Node
	Table  *Table
	// Warnings lists recoverable authoring problems found while building.
	Warnings []string
}

func intPtr(i int) *int { return &i }
