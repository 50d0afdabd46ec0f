package convert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"
)

func newMarkdown(gfm bool) goldmark.Markdown {
	var exts []goldmark.Extender
	if gfm {
		exts = append(exts, extension.GFM)
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(
			// inline HTML is passed through, this is what Markdown authors expect
			html.WithUnsafe(),
			html.WithXHTML(),
		),
	)
}

// markdownToHTML renders Markdown source as complete HTML document. First
// level one heading becomes document title.
func markdownToHTML(source []byte, gfm bool) (string, error) {
	md := newMarkdown(gfm)
	root := md.Parser().Parse(text.NewReader(source))

	var body bytes.Buffer
	if err := md.Renderer().Render(&body, source, root); err != nil {
		return "", fmt.Errorf("unable to render markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head>")
	if title := markdownTitle(root, source); len(title) > 0 {
		b.WriteString("<title>" + xhtml.EscapeString(title) + "</title>")
	}
	b.WriteString("</head><body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body></html>\n")
	return b.String(), nil
}

func markdownTitle(root ast.Node, source []byte) string {
	var title string
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(nodeText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
