package wrap

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"

	"github.com/livetemplate/wrap/internal/dom"
)

// ParseFile reads and builds the deck at path.
func ParseFile(path string, opts Options) (*Deck, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, NewDeckError(path, "cannot open deck").WithCause(err)
	}
	defer f.Close()
	if opts.Source == "" {
		opts.Source = path
	}
	return Parse(f, opts)
}

// Parse reads an HTML document and builds a deck from it.
func Parse(r io.Reader, opts Options) (*Deck, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, NewDeckError(opts.Source, "invalid HTML").WithCause(err)
	}
	if opts.Markdown {
		if err := convertMarkdown(doc, opts.Source); err != nil {
			return nil, err
		}
	}
	return Build(doc, opts)
}

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(),
	),
)

// convertMarkdown replaces the text of every top-level slide marked
// data-format="markdown" with its rendered HTML.
func convertMarkdown(doc *html.Node, source string) error {
	body := dom.First(doc, "body")
	if body == nil {
		return nil
	}
	for _, n := range dom.Children(body) {
		if dom.Data(n, "format") != "markdown" {
			continue
		}
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(dedent(dom.Text(n))), &buf); err != nil {
			return NewDeckError(source, fmt.Sprintf("cannot render markdown in <%s>", dom.Tag(n))).WithCause(err)
		}
		nodes, err := html.ParseFragment(&buf, n)
		if err != nil {
			return NewDeckError(source, "markdown produced invalid HTML").WithCause(err)
		}
		dom.RemoveChildren(n)
		for _, c := range nodes {
			n.AppendChild(c)
		}
	}
	return nil
}

// dedent strips the indentation shared by every non-blank line, so markdown
// nested inside indented HTML is not read as code blocks.
func dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := ""
	first := true
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		indent := l[:len(l)-len(strings.TrimLeft(l, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}
	for i, l := range lines {
		lines[i] = strings.TrimPrefix(l, prefix)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")) + "\n"
}
