package wrap

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/animation"
	"github.com/livetemplate/wrap/internal/dom"
)

// Options control deck building.
type Options struct {
	// Registry resolves data-animate kinds. Nil means no slide animates.
	Registry *animation.Registry
	// Source is recorded on the deck for messages.
	Source string
	// Markdown renders slides marked data-format="markdown" when parsing.
	Markdown bool
}

// Build turns a parsed document into a deck. It mutates the document: slides
// are hidden, templates are composed into them and navigation links are
// filled in. A document without sections yields an empty deck, not an
// error.
func Build(doc *html.Node, opts Options) (*Deck, error) {
	body := dom.First(doc, "body")
	if body == nil {
		return nil, NewDeckError(opts.Source, "document has no body").
			WithHint("Slides must be section, aside or template elements inside <body>")
	}
	deck := &Deck{Source: opts.Source, Doc: doc, Body: body, Table: collectSlides(body)}
	deck.warn(assignNames(deck.Table)...)
	applyTemplates(deck.Table)
	deck.warn(linkSlides(deck.Table)...)
	labelPrograms(body)
	deck.warn(discoverAnimations(deck.Table, opts.Registry)...)
	return deck, nil
}

func (d *Deck) warn(msgs ...string) {
	d.Warnings = append(d.Warnings, msgs...)
}

// collectSlides classifies the body's element children. Author ids become
// extra keys; the first section is also "title" and a template without an id
// is "template".
func collectSlides(body *html.Node) *Table {
	t := newTable()
	titleFound := false
	for i, n := range dom.Children(body) {
		s := &Slide{ID: i, Kind: kindOf(dom.Tag(n)), Node: n}
		if s.Kind == KindTemplate {
			s.Node = dom.Clone(n)
		}
		t.add(s)
		id, hasID := dom.Attr(n, "id")
		if hasID && id != "" {
			t.alias(id, s)
		}
		if s.Kind == KindSection && !titleFound {
			t.alias("title", s)
			titleFound = true
		}
		if s.Kind == KindTemplate && id == "" {
			t.alias("template", s)
		}
	}
	return t
}

func discoverAnimations(t *Table, reg *animation.Registry) []string {
	var warnings []string
	for _, s := range t.Slides() {
		if !s.Displayable() {
			continue
		}
		kind := dom.Data(s.Node, "animate")
		if kind == "" {
			continue
		}
		f, ok := reg.Lookup(kind)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("slide %s: unknown animation %q", s.Name, kind))
			continue
		}
		s.Animation = f.Kind
		if f.NeedsSurface {
			s.Surface = animation.AttachSurface(s.Node)
		}
	}
	return warnings
}
