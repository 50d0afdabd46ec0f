package markup

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/shape"
	"htmldocx/style"
	"htmldocx/units"
)

var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Table: true, atom.Thead: true, atom.Tbody: true,
	atom.Tfoot: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Caption: true,
	atom.Blockquote: true, atom.Pre: true, atom.Hr: true, atom.Div: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Main: true, atom.Nav: true,
	atom.Aside: true, atom.Figure: true, atom.Figcaption: true, atom.Address: true, atom.Dl: true,
	atom.Dt: true, atom.Dd: true, atom.Center: true, atom.Fieldset: true, atom.Details: true,
	atom.Summary: true, atom.Body: true,
}

var skippedAtoms = map[atom.Atom]bool{
	atom.Head: true, atom.Title: true, atom.Script: true, atom.Style: true, atom.Template: true,
	atom.Noscript: true, atom.Meta: true, atom.Link: true,
}

func skipped(n *html.Node) bool {
	return n.Type == html.ElementNode && skippedAtoms[n.DataAtom]
}

// isBlock reports whether element starts its own paragraph. Unknown elements
// are blocks when they contain blocks.
func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if blockAtoms[n.DataAtom] {
		return true
	}
	if n.DataAtom != 0 || n.Data == "page-break" || n.Data == "page-number" {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

func hasBlockChildren(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isBlock(c) {
			return true
		}
	}
	return false
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// blocks converts children of n. Inline runs between blocks are gathered into
// anonymous paragraphs with properties anon.
func (t *Transducer) blocks(ctx context.Context, n *html.Node, rec style.Record, anon paraProps) ([]*etree.Element, error) {
	var (
		out []*etree.Element
		b   *paraBuilder
	)
	flush := func() {
		if b != nil && b.content {
			out = append(out, b.finish())
		}
		b = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case skipped(c):
		case c.Type == html.ElementNode && c.Data == "page-break":
			if b != nil && b.content {
				b.addElement(pageBreakRun(), true)
			} else {
				flush()
				out = append(out, pageBreakParagraph())
			}
			// written as <page-break/> it swallows following siblings
			if c.FirstChild != nil {
				flush()
				els, err := t.blocks(ctx, c, rec, anon)
				if err != nil {
					return nil, err
				}
				out = append(out, els...)
			}
		case c.Type == html.ElementNode && c.DataAtom == atom.Br && (b == nil || !b.content):
			b = nil
			out = append(out, newParagraph(anon))
		case isBlock(c):
			flush()
			els, err := t.block(ctx, c, rec)
			if err != nil {
				return nil, err
			}
			out = append(out, els...)
		default:
			if b == nil {
				b = newBuilder(anon)
			}
			t.inline(ctx, c, rec, b, "")
		}
	}
	flush()
	return out, nil
}

// inherit merges own properties of element into parent record. Indentation
// accumulates the way nested margins do.
func inherit(parent, own style.Record) style.Record {
	rec := parent.Merge(own)
	if v, ok := own.IndentLeft.Get(); ok {
		rec.IndentLeft = style.Some(parent.IndentLeft.Value() + v)
	}
	if v, ok := own.IndentRight.Get(); ok {
		rec.IndentRight = style.Some(parent.IndentRight.Value() + v)
	}
	return rec
}

// elementRecord resolves element style on top of semantics of its tag.
func elementRecord(n *html.Node) style.Record {
	var tag style.Record
	switch n.DataAtom {
	case atom.Blockquote:
		tag.IndentLeft = style.Some(listIndent)
	case atom.Pre:
		tag.Preformatted = style.Some(true)
		tag.FontFamily = style.Some(monospaceFont)
	case atom.Center:
		tag.Align = style.Some(style.AlignCenter)
	case atom.Th:
		tag.Bold = style.Some(true)
		tag.Align = style.Some(style.AlignCenter)
	case atom.Dd:
		tag.IndentLeft = style.Some(listIndent)
	}
	return tag.Merge(style.Resolve(n))
}

// block converts single block element, wrapping it with page breaks when
// requested.
func (t *Transducer) block(ctx context.Context, n *html.Node, parent style.Record) ([]*etree.Element, error) {
	own := elementRecord(n)
	if own.Hidden.Value() {
		return nil, nil
	}
	rec := inherit(parent.Inheritable(), own)

	var (
		els []*etree.Element
		err error
	)
	switch a := n.DataAtom; {
	case a == atom.Hr:
		els = []*etree.Element{newParagraph(paraProps{rule: true})}
	case a == atom.Ul || a == atom.Ol:
		els, err = t.list(ctx, n, rec, 0)
	case a == atom.Li:
		els, err = t.listItem(ctx, n, rec, style.ListBullet, 0)
	case a == atom.Table:
		els, err = t.table(ctx, n, rec)
	case headingLevel(a) > 0:
		els, err = t.heading(ctx, n, rec, headingLevel(a))
	case rec.IsDecoratedBox() && !rec.InBox.Value():
		els, err = t.decorated(ctx, n, rec)
	case a == atom.P || a == atom.Pre:
		els, err = t.paragraph(ctx, n, rec, paraProps{rec: rec})
	default:
		els, err = t.container(ctx, n, rec)
	}
	if err != nil {
		return nil, err
	}

	if rec.PageBreakBefore.Value() {
		els = append([]*etree.Element{pageBreakParagraph()}, els...)
	}
	if rec.PageBreakAfter.Value() {
		els = append(els, pageBreakParagraph())
	}
	return els, nil
}

// paragraph converts element which is a paragraph by itself. Stray blocks
// inside it are emitted after the text gathered so far.
func (t *Transducer) paragraph(ctx context.Context, n *html.Node, rec style.Record, pp paraProps) ([]*etree.Element, error) {
	els, err := t.blocks(ctx, n, rec.Inheritable(), pp)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		els = append(els, newParagraph(pp))
	}
	return els, nil
}

// container passes its inheritable formatting and background to content.
func (t *Transducer) container(ctx context.Context, n *html.Node, rec style.Record) ([]*etree.Element, error) {
	inh := rec.Inheritable()
	anon := inh
	if c, ok := rec.Background.Get(); ok {
		anon.Background = style.Some(c)
	}
	return t.blocks(ctx, n, inh, paraProps{rec: anon})
}

func (t *Transducer) heading(ctx context.Context, n *html.Node, rec style.Record, level int) ([]*etree.Element, error) {
	if tmpl, ok := t.templates[level]; ok && t.depth == 0 {
		text := html.EscapeString(textContent(n))
		body, err := t.reenter().ProcessMarkup(ctx, strings.ReplaceAll(tmpl, HeadingPlaceholder, text))
		if err != nil {
			return nil, err
		}
		t.log.Debug("Heading replaced", zap.Int("level", level), zap.String("text", text))
		return body.Elements(), nil
	}
	if rec.IsDecoratedBox() && !rec.InBox.Value() {
		return t.decorated(ctx, n, rec)
	}
	rec.Heading = style.Some(level)
	return t.paragraph(ctx, n, rec, paraProps{rec: rec})
}

// decorated renders element inside VML text box carrying its background,
// padding, border and corner radius.
func (t *Transducer) decorated(ctx context.Context, n *html.Node, rec style.Record) ([]*etree.Element, error) {
	inner := rec.Inheritable()
	inner.InBox = style.Some(true)

	var (
		content []*etree.Element
		err     error
	)
	switch a := n.DataAtom; {
	case headingLevel(a) > 0:
		hrec := inner
		hrec.Heading = style.Some(headingLevel(a))
		content, err = t.paragraph(ctx, n, hrec, paraProps{rec: hrec})
	case a == atom.P || a == atom.Pre:
		content, err = t.paragraph(ctx, n, inner, paraProps{rec: inner})
	default:
		content, err = t.blocks(ctx, n, inner, paraProps{rec: inner})
	}
	if err != nil {
		return nil, err
	}

	spec := shape.BoxSpec{
		Width:         rec.Width.Value(),
		Height:        rec.Height.Value(),
		Fill:          rec.Background.Value(),
		Radius:        rec.Radius.Value(),
		SpacingBefore: rec.SpacingBefore.Value(),
		SpacingAfter:  rec.SpacingAfter.Value(),
	}
	if g, ok := rec.Gradient.Get(); ok {
		spec.Gradient = &g
	}
	if p, ok := rec.Padding.Get(); ok {
		spec.Padding = &shape.Insets{
			Top:    units.Round(p.Top),
			Right:  units.Round(p.Right),
			Bottom: units.Round(p.Bottom),
			Left:   units.Round(p.Left),
		}
	}
	if b, ok := rec.Border.Get(); ok && b.Visible() {
		spec.Border = &shape.Stroke{Width: b.Width, Color: b.Color, Style: b.Style}
	}
	return []*etree.Element{shape.TextBox(content, spec, t.ids)}, nil
}
