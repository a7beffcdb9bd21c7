package wrap

import (
	"fmt"
	"strconv"
)

const asideLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// assignNames numbers sections from 1 and names asides after the preceding
// section. Sections link to neighbouring sections; asides link to
// neighbouring slides by raw id.
func assignNames(t *Table) []string {
	var sections []*Slide
	for _, s := range t.Slides() {
		if s.Kind == KindSection {
			sections = append(sections, s)
		}
	}

	var warnings []string
	last := t.Len() - 1
	sectionNo, asideNo := -1, -1
	for _, s := range t.Slides() {
		switch s.Kind {
		case KindSection:
			sectionNo++
			asideNo = -1
			s.Name = strconv.Itoa(sectionNo + 1)
			if sectionNo > 0 {
				s.Back = intPtr(sections[sectionNo-1].ID)
			}
			if sectionNo < len(sections)-1 {
				s.Next = intPtr(sections[sectionNo+1].ID)
			}
		case KindAside:
			asideNo++
			if s.ID > 0 {
				s.Back = intPtr(s.ID - 1)
			}
			if s.ID < last {
				s.Next = intPtr(s.ID + 1)
			}
			letter := ""
			if asideNo < len(asideLetters) {
				letter = asideLetters[asideNo : asideNo+1]
			} else {
				warnings = append(warnings, fmt.Sprintf("slide %d: more than %d asides after section %d, aside left without a letter", s.ID, len(asideLetters), sectionNo+1))
			}
			s.Name = strconv.Itoa(sectionNo+1) + letter
		}
	}
	return warnings
}
