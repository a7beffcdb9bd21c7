package wrap

import (
	"fmt"
	"strconv"

	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
)

// linkSlides computes up/down links and fills in the navigation anchors each
// slide received from its template.
//
// Down follows the most recent data-down seen in id order. Up is the slide's
// own data-up, else the last slide that declared data-up, else the title.
// Up is absent on slides without back and down on slides without next.
func linkSlides(t *Table) []string {
	var warnings []string
	var lastUp *Slide
	downKey := ""
	for _, s := range t.Slides() {
		if !s.Displayable() {
			continue
		}
		upKey := dom.Data(s.Node, "up")
		if v := dom.Data(s.Node, "down"); v != "" {
			downKey = v
		}

		if s.Back != nil {
			switch {
			case upKey != "":
				s.Up = resolveLink(t, upKey)
				if s.Up == nil {
					warnings = append(warnings, fmt.Sprintf("slide %s: data-up %q does not name a slide", s.Name, upKey))
				}
			case lastUp != nil:
				s.Up = intPtr(lastUp.ID)
			case t.Title() != nil:
				s.Up = intPtr(t.Title().ID)
			}
		}
		if s.Next != nil && downKey != "" {
			s.Down = resolveLink(t, downKey)
		}
		if upKey != "" {
			lastUp = s
		}

		wireAnchors(s)
	}
	return warnings
}

func resolveLink(t *Table, key string) *int {
	if s := t.Displayable(key); s != nil {
		return intPtr(s.ID)
	}
	return nil
}

// wireAnchors points a.back, a.next, a.up and a.down at their targets,
// hiding those without one, makes a.here a permalink and writes the slide
// name into the first .here element.
func wireAnchors(s *Slide) {
	for _, a := range dom.Find(s.Node, "a") {
		for _, link := range []struct {
			class  string
			target *int
		}{
			{"back", s.Back},
			{"next", s.Next},
			{"up", s.Up},
			{"down", s.Down},
		} {
			if !dom.HasClass(a, link.class) {
				continue
			}
			if link.target == nil {
				dom.SetVisibility(a, false)
			} else {
				dom.SetAttr(a, "href", "#"+strconv.Itoa(*link.target))
			}
		}
		if dom.HasClass(a, "here") {
			dom.SetAttr(a, "href", "#"+strconv.Itoa(s.ID))
		}
	}
	if here := dom.First(s.Node, ".here"); here != nil {
		dom.SetText(here, s.Name)
	}
}

// labelPrograms adds a file name label to pre elements carrying data-file
// or data-name. A data-file label links to the file, relative to the
// body's data-path.
func labelPrograms(body *html.Node) {
	path := dom.Data(body, "path")
	for _, pre := range dom.Find(body, "pre") {
		file, name := dom.Data(pre, "file"), dom.Data(pre, "name")
		if file == "" && name == "" {
			continue
		}
		var label *html.Node
		if file != "" {
			label = &html.Node{Type: html.ElementNode, Data: "a"}
			dom.SetAttr(label, "href", path+file)
		} else {
			label = &html.Node{Type: html.ElementNode, Data: "span"}
			file = name
		}
		label.AppendChild(&html.Node{Type: html.TextNode, Data: file})
		dom.SetAttr(label, "class", "wrap-label")
		dom.SetStyle(label, "float", "right")
		dom.SetStyle(label, "margin", "0")
		dom.SetStyle(label, "color", "green")
		dom.SetStyle(label, "background-color", "#bee")
		pre.InsertBefore(label, pre.FirstChild)
	}
}
