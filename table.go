package wrap

import (
	"sort"
	"strconv"
)

// Table indexes slides by id and by synonym keys: the numeric id as a
// string, author ids, "title" and "template".
type Table struct {
	slides []*Slide
	keys   map[string]*Slide
}

func newTable() *Table {
	return &Table{keys: make(map[string]*Slide)}
}

func (t *Table) add(s *Slide) {
	t.slides = append(t.slides, s)
	t.keys[strconv.Itoa(s.ID)] = s
}

func (t *Table) alias(key string, s *Slide) {
	t.keys[key] = s
}

// Len is the number of slides.
func (t *Table) Len() int { return len(t.slides) }

// Slides returns the slides in id order.
func (t *Table) Slides() []*Slide { return t.slides }

// ByID returns the slide with the given id, or nil.
func (t *Table) ByID(id int) *Slide {
	if id < 0 || id >= len(t.slides) {
		return nil
	}
	return t.slides[id]
}

// Lookup resolves any table key, or returns nil.
func (t *Table) Lookup(key string) *Slide {
	return t.keys[key]
}

// Displayable resolves key to a section or aside, or returns nil.
func (t *Table) Displayable(key string) *Slide {
	if s := t.keys[key]; s.Displayable() {
		return s
	}
	return nil
}

// Shows reports whether key names a section or aside.
func (t *Table) Shows(key string) bool {
	return t.Displayable(key) != nil
}

// Title returns the first section, or nil for an empty deck.
func (t *Table) Title() *Slide {
	return t.keys["title"]
}

// Keys lists the synonym keys, excluding plain numeric ids, in sorted order.
func (t *Table) Keys() []string {
	var out []string
	for k, s := range t.keys {
		if k == strconv.Itoa(s.ID) {
			continue
		}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
