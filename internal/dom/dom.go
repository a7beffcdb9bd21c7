// Package dom holds the small set of tree operations the deck engine needs on
// top of golang.org/x/net/html: selector queries, class lists, inline styles,
// text replacement and deep cloning.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Select wraps n in a goquery selection rooted at n.
func Select(n *html.Node) *goquery.Selection {
	return goquery.NewDocumentFromNode(n).Selection
}

// Children returns the element children of n in document order.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Tag returns the lower-cased tag name of an element, or "" for other nodes.
func Tag(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of an attribute.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces an attribute.
func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, key string) {
	Select(n).RemoveAttr(key)
}

// Data returns a data-* attribute, e.g. Data(n, "animate") for data-animate.
func Data(n *html.Node, name string) string {
	v, _ := Attr(n, "data-"+name)
	return v
}

// Classes returns the class names of n in attribute order.
func Classes(n *html.Node) []string {
	v, _ := Attr(n, "class")
	return strings.Fields(v)
}

// HasClass reports whether n carries the class c.
func HasClass(n *html.Node, c string) bool {
	return Select(n).HasClass(c)
}

// Find returns all descendants of n matching a CSS selector.
func Find(n *html.Node, selector string) []*html.Node {
	return Select(n).Find(selector).Nodes
}

// First returns the first descendant of n matching selector, or nil.
func First(n *html.Node, selector string) *html.Node {
	nodes := Select(n).Find(selector).First().Nodes
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

// Clone returns a detached deep copy of n.
func Clone(n *html.Node) *html.Node {
	return Select(n).Clone().Nodes[0]
}

// Text returns the concatenated text content of n.
func Text(n *html.Node) string {
	return Select(n).Text()
}

// SetText replaces the children of n with a single text node.
func SetText(n *html.Node, text string) {
	Select(n).SetText(text)
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// Render serialises n (including n itself) to HTML.
func Render(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}
