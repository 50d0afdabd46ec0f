package markup

import (
	"context"
	"strconv"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/style"
	"htmldocx/units"
)

// paraBuilder accumulates inline content of a single paragraph.
type paraBuilder struct {
	p *etree.Element
	// current sink, paragraph or hyperlink inside it
	out     *etree.Element
	content bool
	// previous text ended with collapsible space
	space    bool
	lastText *etree.Element
}

func newBuilder(pp paraProps) *paraBuilder {
	p := newParagraph(pp)
	return &paraBuilder{p: p, out: p, space: true}
}

func collapseSpaces(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	inSpace := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !inSpace {
				sb.WriteByte(' ')
			}
			inSpace = true
		default:
			sb.WriteRune(r)
			inSpace = false
		}
	}
	return sb.String()
}

func (b *paraBuilder) addText(text string, rec style.Record, charStyle string) {
	if rec.Preformatted.Value() {
		if len(text) == 0 {
			return
		}
		b.out.AddChild(preformattedRun(text, rec, charStyle))
		b.content, b.space, b.lastText = true, false, nil
		return
	}

	text = collapseSpaces(text)
	if b.space {
		text = strings.TrimPrefix(text, " ")
	}
	if len(text) == 0 {
		return
	}
	r := textRun(text, rec, charStyle)
	b.out.AddChild(r)
	b.content = true
	b.space = strings.HasSuffix(text, " ")
	b.lastText = r.SelectElement("w:t")
}

// addElement appends non textual run. Space following line break is not
// significant.
func (b *paraBuilder) addElement(r *etree.Element, breaks bool) {
	if r == nil {
		return
	}
	if breaks {
		b.trimTrailing()
	}
	b.out.AddChild(r)
	b.content, b.space, b.lastText = true, breaks, nil
}

func (b *paraBuilder) trimTrailing() {
	if b.lastText == nil {
		return
	}
	text := strings.TrimSuffix(b.lastText.Text(), " ")
	if len(text) > 0 {
		b.lastText.SetText(text)
	} else if run := b.lastText.Parent(); run != nil && run.Parent() != nil {
		run.Parent().RemoveChild(run)
	}
	b.lastText = nil
}

func (b *paraBuilder) beginLink(relID string) *etree.Element {
	prev := b.out
	hl := b.p.CreateElement("w:hyperlink")
	hl.CreateAttr("r:id", relID)
	hl.CreateAttr("w:history", "1")
	b.out = hl
	return prev
}

func (b *paraBuilder) endLink(prev *etree.Element) {
	if len(b.out.ChildElements()) == 0 {
		b.p.RemoveChild(b.out)
	}
	b.out = prev
}

func (b *paraBuilder) finish() *etree.Element {
	b.trimTrailing()
	return b.p
}

var fontSizes = [...]int{15, 20, 24, 27, 36, 48, 72}

// fontTagSize maps legacy font size attribute 1-7 to half-points.
func fontTagSize(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > len(fontSizes) {
		return 0, false
	}
	return fontSizes[n-1], true
}

func isWebLink(href string) bool {
	h := strings.ToLower(href)
	return strings.HasPrefix(h, "http://") || strings.HasPrefix(h, "https://") || strings.HasPrefix(h, "mailto:")
}

// tagRecord returns formatting implied by inline element name.
func (t *Transducer) tagRecord(n *html.Node, parent style.Record) style.Record {
	var r style.Record
	switch n.DataAtom {
	case atom.Strong, atom.B:
		r.Bold = style.Some(true)
	case atom.Em, atom.I, atom.Cite, atom.Dfn, atom.Var:
		r.Italic = style.Some(true)
	case atom.U, atom.Ins:
		r.Underline = style.Some(true)
	case atom.S, atom.Strike, atom.Del:
		r.Strike = style.Some(true)
	case atom.Sup:
		r.VertAlign = style.Some("super")
	case atom.Sub:
		r.VertAlign = style.Some("sub")
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		r.FontFamily = style.Some(monospaceFont)
	case atom.Mark:
		r.Highlight = style.Some("FFFF00")
	case atom.Small:
		r.FontSize = style.Some(units.Round(float64(parent.FontSize.Or(t.baseSize)) * 5 / 6))
	case atom.Big:
		r.FontSize = style.Some(units.Round(float64(parent.FontSize.Or(t.baseSize)) * 1.2))
	case atom.Font:
		if c, ok := attr(n, "color"); ok {
			if c, ok := units.ParseColor(c); ok {
				r.Color = style.Some(c)
			}
		}
		if f, ok := attr(n, "face"); ok {
			if f, _, _ = strings.Cut(f, ","); len(strings.TrimSpace(f)) > 0 {
				r.FontFamily = style.Some(strings.Trim(strings.TrimSpace(f), `"'`))
			}
		}
		if s, ok := attr(n, "size"); ok {
			if hp, ok := fontTagSize(s); ok {
				r.FontSize = style.Some(hp)
			}
		}
	}
	return r
}

// inline converts phrasing content into runs of builder. Block elements met
// here have their content flattened.
func (t *Transducer) inline(ctx context.Context, n *html.Node, rec style.Record, b *paraBuilder, charStyle string) {
	switch n.Type {
	case html.TextNode:
		b.addText(n.Data, rec, charStyle)
		return
	case html.ElementNode:
	default:
		return
	}
	if skipped(n) {
		return
	}

	own := style.Resolve(n)
	if own.Hidden.Value() {
		return
	}
	if c, ok := own.Background.Get(); ok && !own.Highlight.IsSet() {
		own.Highlight = style.Some(c)
	}
	own = t.tagRecord(n, rec).Merge(own)
	cur := rec.Merge(own).Inheritable()

	if own.PageBreakBefore.Value() {
		b.addElement(pageBreakRun(), true)
	}

	switch {
	case n.DataAtom == atom.Br:
		b.addElement(breakRun(cur), true)
	case n.DataAtom == atom.Img:
		b.addElement(t.image(ctx, n, rec.Merge(own)), false)
	case n.Data == "page-number":
		for _, r := range pageNumberRuns(cur) {
			b.addElement(r, false)
		}
		t.inlineChildren(ctx, n, cur, b, charStyle)
	case n.Data == "page-break":
		b.addElement(pageBreakRun(), true)
		t.inlineChildren(ctx, n, cur, b, charStyle)
	case n.DataAtom == atom.A:
		t.anchor(ctx, n, cur, b, charStyle)
	default:
		t.inlineChildren(ctx, n, cur, b, charStyle)
	}

	if own.PageBreakAfter.Value() {
		b.addElement(pageBreakRun(), true)
	}
}

func (t *Transducer) inlineChildren(ctx context.Context, n *html.Node, rec style.Record, b *paraBuilder, charStyle string) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		t.inline(ctx, c, rec, b, charStyle)
	}
}

// anchor renders external links as hyperlinks with their own relationship,
// everything else (fragments, relative links) as plain text.
func (t *Transducer) anchor(ctx context.Context, n *html.Node, rec style.Record, b *paraBuilder, charStyle string) {
	href, _ := attr(n, "href")
	href = strings.TrimSpace(href)
	if !isWebLink(href) || t.media == nil || b.out != b.p {
		t.inlineChildren(ctx, n, rec, b, charStyle)
		return
	}
	relID := t.media.AddLink(href, t.part)
	t.log.Debug("Hyperlink added", zap.String("id", relID), zap.String("target", href))

	prev := b.beginLink(relID)
	t.inlineChildren(ctx, n, rec, b, hyperlinkStyle)
	b.endLink(prev)
}
