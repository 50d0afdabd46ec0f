package markup

import (
	"context"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/style"
)

func listKind(a atom.Atom) style.ListKind {
	if a == atom.Ol {
		return style.ListDecimal
	}
	return style.ListBullet
}

// listed marks record as list item paragraph.
func listed(rec style.Record, kind style.ListKind, level int) style.Record {
	rec.ListKind = style.Some(kind)
	rec.ListLevel = style.Some(level)
	return rec
}

func isList(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Ul || n.DataAtom == atom.Ol)
}

// list converts ul/ol. Nesting deeper than supported levels stays at the
// last level, numbering always continues the shared instance.
func (t *Transducer) list(ctx context.Context, n *html.Node, rec style.Record, level int) ([]*etree.Element, error) {
	kind := listKind(n.DataAtom)
	inh := rec.Inheritable()

	var out []*etree.Element
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var (
			els []*etree.Element
			err error
		)
		switch {
		case c.Type != html.ElementNode || skipped(c):
			continue
		case c.DataAtom == atom.Li:
			own := elementRecord(c)
			if own.Hidden.Value() {
				continue
			}
			els, err = t.listItem(ctx, c, inherit(inh, own), kind, level)
		case isList(c):
			own := elementRecord(c)
			if own.Hidden.Value() {
				continue
			}
			els, err = t.list(ctx, c, inherit(inh, own), level+1)
		default:
			els, err = t.block(ctx, c, inh)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, els...)
	}
	return out, nil
}

// listItem emits numbered paragraph for inline content of the item. Nested
// lists go one level deeper, other blocks are indented to the item level.
func (t *Transducer) listItem(ctx context.Context, n *html.Node, rec style.Record, kind style.ListKind, level int) ([]*etree.Element, error) {
	ilvl := min(max(level, 0), maxListLevel)
	numbered := paraProps{rec: listed(rec, kind, ilvl)}
	inh := rec.Inheritable()
	indented := paraProps{rec: inh, indent: listIndent * (ilvl + 1)}
	nested := inh
	nested.IndentLeft = style.Some(inh.IndentLeft.Value() + listIndent*(ilvl+1))

	var (
		out  []*etree.Element
		b    = newBuilder(numbered)
		done bool
	)
	flush := func() {
		if b != nil && b.content {
			out = append(out, b.finish())
			done = true
		}
		b = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch {
		case skipped(c):
		case isList(c):
			flush()
			done = true
			own := elementRecord(c)
			if own.Hidden.Value() {
				continue
			}
			els, err := t.list(ctx, c, inherit(inh, own), level+1)
			if err != nil {
				return nil, err
			}
			out = append(out, els...)
		case isBlock(c):
			flush()
			var (
				els []*etree.Element
				err error
			)
			if !done && c.DataAtom == atom.P {
				// first paragraph of the item carries the number
				own := elementRecord(c)
				if own.Hidden.Value() {
					continue
				}
				prec := listed(inherit(inh, own), kind, ilvl)
				els, err = t.paragraph(ctx, c, prec, paraProps{rec: prec})
			} else {
				els, err = t.block(ctx, c, nested)
			}
			if err != nil {
				return nil, err
			}
			done = true
			out = append(out, els...)
		default:
			if b == nil {
				b = newBuilder(indented)
				if !done {
					b = newBuilder(numbered)
				}
			}
			t.inline(ctx, c, inh, b, "")
		}
	}
	flush()
	if !done {
		out = append(out, newParagraph(numbered))
	}
	return out, nil
}
