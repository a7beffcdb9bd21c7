package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Style returns the value of one inline style property, or "".
func Style(n *html.Node, prop string) string {
	raw, _ := Attr(n, "style")
	for _, decl := range parseStyle(raw) {
		if decl[0] == prop {
			return decl[1]
		}
	}
	return ""
}

// SetStyle sets one inline style property, keeping the order of the others.
// An empty value removes the property.
func SetStyle(n *html.Node, prop, value string) {
	raw, _ := Attr(n, "style")
	decls := parseStyle(raw)
	found := false
	out := decls[:0]
	for _, decl := range decls {
		if decl[0] == prop {
			found = true
			if value == "" {
				continue
			}
			decl[1] = value
		}
		out = append(out, decl)
	}
	if !found && value != "" {
		out = append(out, [2]string{prop, value})
	}
	if len(out) == 0 {
		RemoveAttr(n, "style")
		return
	}
	parts := make([]string, len(out))
	for i, decl := range out {
		parts[i] = decl[0] + ": " + decl[1]
	}
	SetAttr(n, "style", strings.Join(parts, "; "))
}

// Show and Hide toggle the display property.
func Show(n *html.Node) { SetStyle(n, "display", "block") }
func Hide(n *html.Node) { SetStyle(n, "display", "none") }

// Visible reports whether n has not been hidden via display: none.
func Visible(n *html.Node) bool {
	return Style(n, "display") != "none"
}

// SetVisibility sets the visibility property without changing layout.
func SetVisibility(n *html.Node, visible bool) {
	if visible {
		SetStyle(n, "visibility", "visible")
	} else {
		SetStyle(n, "visibility", "hidden")
	}
}

func parseStyle(raw string) [][2]string {
	var decls [][2]string
	for _, part := range strings.Split(raw, ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" {
			continue
		}
		decls = append(decls, [2]string{k, v})
	}
	return decls
}
