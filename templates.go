package wrap

import (
	"github.com/livetemplate/wrap/internal/dom"
)

// applyTemplates hides every section and aside and appends copies of its
// template's element children. The default template is "template"; a class
// naming a template overrides it, the last such class winning.
func applyTemplates(t *Table) {
	for _, s := range t.Slides() {
		if !s.Displayable() {
			continue
		}
		dom.SetStyle(s.Node, "position", "relative")
		dom.SetStyle(s.Node, "display", "none")

		tmpl := t.Lookup("template")
		for _, cls := range dom.Classes(s.Node) {
			if c := t.Lookup(cls); c != nil && c.Kind == KindTemplate {
				tmpl = c
			}
		}
		if tmpl == nil || tmpl.Kind != KindTemplate {
			continue
		}
		s.Template = intPtr(tmpl.ID)
		for _, c := range dom.Children(tmpl.Node) {
			s.Node.AppendChild(dom.Clone(c))
		}
	}
}
