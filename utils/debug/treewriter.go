// Package debug produces human readable dumps stored in debug reports.
package debug

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

// Node writes HTML subtree. Whitespace only text is skipped, attributes are
// sorted by name.
func (tw TreeWriter) Node(depth int, n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			tw.Node(depth, c)
		}
		return
	case html.DoctypeNode:
		tw.Line(depth, "!doctype %s", n.Data)
		return
	case html.CommentNode:
		tw.TextBlock(depth, "#comment", n.Data)
		return
	case html.TextNode:
		if len(strings.TrimSpace(n.Data)) > 0 {
			tw.TextBlock(depth, "#text", n.Data)
		}
		return
	}

	attrs := append([]html.Attribute(nil), n.Attr...)
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })

	var b strings.Builder
	b.WriteString(n.Data)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Key)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(a.Val))
	}
	tw.Line(depth, "%s", b.String())
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		tw.Node(depth+1, c)
	}
}

// DumpHTML parses document and returns its indented structure.
func DumpHTML(doc string) (string, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return "", fmt.Errorf("unable to parse document: %w", err)
	}
	tw := NewTreeWriter()
	tw.Node(0, root)
	return tw.String(), nil
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}
