package wrap

import (
	"fmt"

	"github.com/livetemplate/wrap/internal/dom"
)

// RenderSlide serialises a slide element, including its current inline
// state.
func RenderSlide(s *Slide) (string, error) {
	if s == nil {
		return "", nil
	}
	out, err := dom.Render(s.Node)
	if err != nil {
		return "", fmt.Errorf("render slide %d: %w", s.ID, err)
	}
	return out, nil
}

// RenderSlides serialises every section and aside in id order, for print
// preview.
func (d *Deck) RenderSlides() (string, error) {
	var out string
	for _, s := range d.Table.Slides() {
		if !s.Displayable() {
			continue
		}
		html, err := RenderSlide(s)
		if err != nil {
			return "", err
		}
		out += html
	}
	return out, nil
}
