package wrap

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/livetemplate/wrap/internal/animation"
	"github.com/livetemplate/wrap/internal/dom"
)

func buildDeck(t *testing.T, body string) *Deck {
	t.Helper()
	src := "<!DOCTYPE html><html><head></head><body>" + body + "</body></html>"
	deck, err := Parse(strings.NewReader(src), Options{Registry: animation.Builtins(), Markdown: true})
	require.NoError(t, err)
	return deck
}

func names(d *Deck) []string {
	var out []string
	for _, s := range d.Table.Slides() {
		if s.Displayable() {
			out = append(out, s.Name)
		}
	}
	return out
}

func ref(s *Slide) *int {
	if s == nil {
		return nil
	}
	return &s.ID
}

func TestSectionsOnly(t *testing.T) {
	d := buildDeck(t, `<section>A</section><section>B</section><section>C</section>`)
	require.Equal(t, 3, d.Table.Len())
	assert.Equal(t, []string{"1", "2", "3"}, names(d))

	s1 := d.Table.ByID(1)
	require.NotNil(t, s1.Back)
	require.NotNil(t, s1.Next)
	assert.Equal(t, 0, *s1.Back)
	assert.Equal(t, 2, *s1.Next)
	assert.Nil(t, d.Table.ByID(0).Back)
	assert.Nil(t, d.Table.ByID(2).Next)
	assert.Equal(t, d.Table.ByID(0), d.Table.Title())
}

func TestAsidesAfterSection(t *testing.T) {
	d := buildDeck(t, `<section>1</section><aside>x</aside><aside>y</aside><section>2</section>`)
	assert.Equal(t, []string{"1", "1a", "1b", "2"}, names(d))

	a := d.Table.ByID(1)
	assert.Equal(t, KindAside, a.Kind)
	assert.Equal(t, 0, *a.Back)
	assert.Equal(t, 2, *a.Next)
	assert.Equal(t, 3, *d.Table.ByID(0).Next, "sections skip asides")
	assert.Equal(t, 0, *d.Table.ByID(3).Back)
}

func TestAsideBeforeAnySection(t *testing.T) {
	d := buildDeck(t, `<aside>x</aside><section>1</section>`)
	assert.Equal(t, []string{"0a", "1"}, names(d))
	assert.Nil(t, d.Table.ByID(0).Back)
	assert.Equal(t, d.Table.ByID(1), d.Table.Title())
}

func TestAsideLettersExhausted(t *testing.T) {
	var b strings.Builder
	b.WriteString("<section>1</section>")
	for i := 0; i < 53; i++ {
		b.WriteString("<aside>x</aside>")
	}
	d := buildDeck(t, b.String())
	all := names(d)
	assert.Equal(t, "1a", all[1])
	assert.Equal(t, "1Z", all[52])
	assert.Equal(t, "1", all[53], "no wrapping once letters run out")
	require.Len(t, d.Warnings, 1)
	assert.Contains(t, d.Warnings[0], "without a letter")
}

func TestGraphProperties(t *testing.T) {
	d := buildDeck(t, `<template><div>t</div></template><section>1</section><aside>a</aside>`+
		`<section>2</section><aside>b</aside><aside>c</aside><section>3</section><p>stray</p>`)

	for i, s := range d.Table.Slides() {
		assert.Equal(t, i, s.ID, "ids follow build order")
	}
	assert.Equal(t, KindUnknown, d.Table.ByID(7).Kind)

	for _, s := range d.Table.Slides() {
		if !s.Displayable() {
			continue
		}
		if s.Next != nil {
			next := d.Table.ByID(*s.Next)
			require.NotNil(t, next)
			if next.Kind == s.Kind && next.Back != nil {
				assert.Equal(t, s.ID, *next.Back, "next then back returns for %s", s.Name)
			}
		}
		if s.Back != nil {
			back := d.Table.ByID(*s.Back)
			if back.Kind == s.Kind && back.Next != nil {
				assert.Equal(t, s.ID, *back.Next, "back then next returns for %s", s.Name)
			}
		}
	}

	// walking next from the title visits every section once, in order
	var seen []string
	for s := d.Table.Title(); s != nil; s = d.Table.ByID(derefOr(s.Next, -1)) {
		seen = append(seen, s.Name)
		require.Less(t, len(seen), 10, "cycle")
	}
	assert.Equal(t, []string{"1", "2", "3"}, seen)

	sectionNo := 0
	for _, s := range d.Table.Slides() {
		if s.Kind == KindSection {
			sectionNo++
			assert.Equal(t, fmt.Sprint(sectionNo), s.Name)
		}
	}
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func TestSynonyms(t *testing.T) {
	d := buildDeck(t, `<template id="dark"><i>d</i></template><template><i>plain</i></template>`+
		`<section id="intro">1</section><section id="end">2</section>`)
	assert.Equal(t, d.Table.ByID(2), d.Table.Lookup("intro"))
	assert.Equal(t, d.Table.ByID(2), d.Table.Lookup("title"))
	assert.Equal(t, d.Table.ByID(2), d.Table.Lookup("2"))
	assert.Equal(t, d.Table.ByID(1), d.Table.Lookup("template"))
	assert.Equal(t, d.Table.ByID(0), d.Table.Lookup("dark"))
	assert.Nil(t, d.Table.Displayable("dark"), "templates are never displayable")
	assert.Nil(t, d.Table.Lookup("missing"))
	assert.Equal(t, []string{"dark", "end", "intro", "template", "title"}, d.Table.Keys())
}

func TestEmptyDeck(t *testing.T) {
	d := buildDeck(t, `<template><i>x</i></template><aside>lonely</aside>`)
	assert.Nil(t, d.Table.Title())
	assert.Equal(t, 2, d.Table.Len())
}

func TestTemplates(t *testing.T) {
	d := buildDeck(t, `<template><nav class="default">d</nav></template>`+
		`<template id="dark"><nav class="dark">k</nav><footer>f</footer></template>`+
		`<template id="light"><nav class="light">l</nav></template>`+
		`<section>plain</section>`+
		`<section class="dark">dark</section>`+
		`<section class="light dark">both</section>`+
		`<section class="dark intro">not a template</section>`+
		`<section id="intro">intro</section>`)

	plain := d.Table.ByID(3)
	assert.NotNil(t, dom.First(plain.Node, "nav.default"))
	assert.Equal(t, 0, *plain.Template)
	assert.Equal(t, "none", dom.Style(plain.Node, "display"))
	assert.Equal(t, "relative", dom.Style(plain.Node, "position"))

	dark := d.Table.ByID(4)
	assert.Nil(t, dom.First(dark.Node, "nav.default"))
	children := dom.Children(dark.Node)
	require.Len(t, children, 2)
	assert.Equal(t, "nav", dom.Tag(children[0]), "template order kept")
	assert.Equal(t, "footer", dom.Tag(children[1]))

	both := d.Table.ByID(5)
	assert.Equal(t, 1, *both.Template, "last matching class wins")

	notTemplate := d.Table.ByID(6)
	assert.Equal(t, 1, *notTemplate.Template, "classes naming slides that are not templates are ignored")

	// template content stays detached from the slides it decorates
	assert.NotSame(t, dom.First(d.Table.ByID(1).Node, "nav"), dom.First(dark.Node, "nav"))
}

func TestNavigationAnchors(t *testing.T) {
	d := buildDeck(t, `<template><a class="back">&lt;</a><a class="up">^</a><a class="here">?</a>`+
		`<a class="down">v</a><a class="next">&gt;</a></template>`+
		`<section>1</section><section data-down="extra">2</section><aside id="extra">2a</aside><section>3</section>`)

	first := d.Table.ByID(1)
	back := dom.First(first.Node, "a.back")
	assert.Equal(t, "hidden", dom.Style(back, "visibility"))
	assert.Equal(t, "hidden", dom.Style(dom.First(first.Node, "a.up"), "visibility"))
	next, _ := dom.Attr(dom.First(first.Node, "a.next"), "href")
	assert.Equal(t, "#2", next)
	assert.Equal(t, "1", dom.Text(dom.First(first.Node, ".here")))
	here, _ := dom.Attr(dom.First(first.Node, "a.here"), "href")
	assert.Equal(t, "#1", here)
	assert.Equal(t, "hidden", dom.Style(dom.First(first.Node, "a.down"), "visibility"), "no data-down seen yet")

	second := d.Table.ByID(2)
	up, _ := dom.Attr(dom.First(second.Node, "a.up"), "href")
	assert.Equal(t, "#1", up, "up defaults to the title")
	down, _ := dom.Attr(dom.First(second.Node, "a.down"), "href")
	assert.Equal(t, "#3", down)
	assert.Equal(t, "2a", dom.Text(dom.First(d.Table.ByID(3).Node, ".here")))

	last := d.Table.ByID(4)
	assert.Nil(t, last.Down, "no next means no down")
	assert.Equal(t, "hidden", dom.Style(dom.First(last.Node, "a.next"), "visibility"))
}

func TestUpLinks(t *testing.T) {
	d := buildDeck(t, `<section>1</section><section id="part">2</section>`+
		`<aside data-up="part">2a</aside><aside>2b</aside><section data-up="nowhere">3</section>`)

	assert.Nil(t, d.Table.ByID(0).Up)
	assert.Equal(t, ref(d.Table.ByID(0)), d.Table.ByID(1).Up)
	assert.Equal(t, ref(d.Table.ByID(1)), d.Table.ByID(2).Up, "own data-up")
	assert.Equal(t, ref(d.Table.ByID(2)), d.Table.ByID(3).Up, "last slide that declared data-up")
	assert.Nil(t, d.Table.ByID(4).Up)
	assert.Len(t, d.Warnings, 1)
}

func TestAnimationDiscovery(t *testing.T) {
	d := buildDeck(t, `<section data-animate="reveal"><p>a</p></section>`+
		`<section data-animate="draw"><canvas width="640" height="480"></canvas></section>`+
		`<section data-animate="sparkle">x</section>`)

	assert.Equal(t, "reveal", d.Table.ByID(0).Animation)
	assert.Nil(t, d.Table.ByID(0).Surface)

	drawn := d.Table.ByID(1)
	assert.Equal(t, "draw", drawn.Animation)
	require.NotNil(t, drawn.Surface)
	assert.Equal(t, 640, drawn.Surface.Width())
	assert.NotNil(t, dom.First(drawn.Node, "img."+animation.OverlayClass))

	assert.Equal(t, "", d.Table.ByID(2).Animation, "unknown kinds are static")
	require.Len(t, d.Warnings, 1)
	assert.Contains(t, d.Warnings[0], "sparkle")
}

func TestNoRegistryMeansNoAnimations(t *testing.T) {
	src := `<html><body><section data-animate="reveal"><p>a</p></section></body></html>`
	d, err := Parse(strings.NewReader(src), Options{})
	require.NoError(t, err)
	assert.Equal(t, "", d.Table.ByID(0).Animation)
}

func TestMarkdownSections(t *testing.T) {
	d := buildDeck(t, "<section data-format=\"markdown\">\n    # Hello\n\n    Some *text*.\n</section>")
	s := d.Table.ByID(0)
	h1 := dom.First(s.Node, "h1")
	require.NotNil(t, h1)
	assert.Equal(t, "Hello", dom.Text(h1))
	assert.NotNil(t, dom.First(s.Node, "em"))
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "# A\n\n  b\n", dedent("\n    # A\n\n      b\n  "))
	assert.Equal(t, "x\n", dedent("x"))
}

func TestProgramLabels(t *testing.T) {
	d := buildDeck(t, `<section><pre data-file="main.go">code</pre><pre data-name="shell">ls</pre><pre>plain</pre></section>`)
	pres := dom.Find(d.Body, "pre")
	require.Len(t, pres, 3)

	link := dom.First(pres[0], "a.wrap-label")
	require.NotNil(t, link)
	href, _ := dom.Attr(link, "href")
	assert.Equal(t, "main.go", href)
	assert.Equal(t, "shell", dom.Text(dom.First(pres[1], "span.wrap-label")))
	assert.Nil(t, dom.First(pres[2], ".wrap-label"))
}

func TestRenderSlide(t *testing.T) {
	d := buildDeck(t, `<section>one</section><aside>two</aside>`)
	out, err := RenderSlide(d.Table.ByID(0))
	require.NoError(t, err)
	assert.Contains(t, out, "<section")
	assert.Contains(t, out, "one")

	all, err := d.RenderSlides()
	require.NoError(t, err)
	assert.Contains(t, all, "<aside")

	out, err = RenderSlide(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
