package markup

import (
	"context"
	"strconv"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/style"
	"htmldocx/units"
)

// fallback text width, 6.5in
const defaultTextWidth = 9360

func isCell(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.DataAtom == atom.Td || n.DataAtom == atom.Th)
}

// tableRows returns rows of table including those in row groups.
func tableRows(n *html.Node) []*html.Node {
	var rows []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Tr:
			rows = append(rows, c)
		case atom.Thead, atom.Tbody, atom.Tfoot:
			for r := c.FirstChild; r != nil; r = r.NextSibling {
				if r.Type == html.ElementNode && r.DataAtom == atom.Tr {
					rows = append(rows, r)
				}
			}
		}
	}
	return rows
}

func colSpan(n *html.Node) int {
	v, ok := attr(n, "colspan")
	if !ok {
		return 1
	}
	span, err := strconv.Atoi(v)
	if err != nil || span < 1 {
		return 1
	}
	return min(span, 1000)
}

// widthTwips resolves CSS width, percent is taken of reference.
func widthTwips(s string, reference int) (int, bool) {
	l, ok := units.ParseLength(s)
	if !ok || l.Value <= 0 {
		return 0, false
	}
	if l.Unit == units.UnitPercent {
		return units.Round(float64(reference) * l.Value / 100), true
	}
	tw := units.Twips(l)
	return tw, tw > 0
}

func (t *Transducer) textWidth() int {
	if w := t.geom.TextWidth(); w > 0 {
		return w
	}
	return defaultTextWidth
}

// grid computes column widths from the first row. Columns without width
// share what is left of total.
func (t *Transducer) grid(row *html.Node, total int) []int {
	var (
		cols  []int
		known []bool
	)
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if !isCell(c) {
			continue
		}
		span := colSpan(c)
		w, ok := widthTwips(style.Resolve(c).Width.Value(), t.textWidth())
		for range span {
			cols = append(cols, w/span)
			known = append(known, ok)
		}
	}
	if len(cols) == 0 {
		return nil
	}

	used, free := 0, 0
	for i, w := range cols {
		if known[i] {
			used += w
		} else {
			free++
		}
	}
	if free == 0 {
		return cols
	}
	share := (total - used) / free
	if share <= 0 {
		share = total / len(cols)
	}
	for i := range cols {
		if !known[i] {
			cols[i] = share
		}
	}
	return cols
}

func (t *Transducer) table(ctx context.Context, n *html.Node, rec style.Record) ([]*etree.Element, error) {
	rows := tableRows(n)
	if len(rows) == 0 {
		return nil, nil
	}

	tbl := etree.NewElement("w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	tblPr.CreateElement("w:tblStyle").CreateAttr("w:val", "TableGrid")

	total := t.textWidth()
	tblW := tblPr.CreateElement("w:tblW")
	l, ok := units.ParseLength(rec.Width.Value())
	switch {
	case ok && l.Unit == units.UnitPercent && l.Value > 0:
		// fiftieths of a percent
		tblW.CreateAttr("w:w", strconv.Itoa(units.Round(l.Value*50)))
		tblW.CreateAttr("w:type", "pct")
		total = units.Round(float64(total) * l.Value / 100)
	case ok && units.Twips(l) > 0:
		tblW.CreateAttr("w:w", strconv.Itoa(units.Twips(l)))
		tblW.CreateAttr("w:type", "dxa")
		total = units.Twips(l)
	default:
		tblW.CreateAttr("w:w", "0")
		tblW.CreateAttr("w:type", "auto")
	}
	if a, ok := rec.Align.Get(); ok && a == style.AlignCenter {
		tblPr.CreateElement("w:jc").CreateAttr("w:val", "center")
	}
	if b, ok := rec.Border.Get(); ok {
		borders := tblPr.CreateElement("w:tblBorders")
		for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
			if b.Visible() {
				borderSide(borders, side, b)
			} else {
				borders.CreateElement("w:"+side).CreateAttr("w:val", "none")
			}
		}
	}

	cols := t.grid(rows[0], total)
	grid := tbl.CreateElement("w:tblGrid")
	for _, w := range cols {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", strconv.Itoa(w))
	}

	inh := rec.Inheritable()
	for _, row := range rows {
		own := style.Resolve(row)
		if own.Hidden.Value() {
			continue
		}
		// rows contribute only their background to cells
		rowRec := inh.Merge(own.Inheritable())
		if c, ok := own.Background.Get(); ok {
			rowRec.Background = style.Some(c)
		}
		tr := tbl.CreateElement("w:tr")
		pos := 0
		for c := row.FirstChild; c != nil; c = c.NextSibling {
			if !isCell(c) {
				continue
			}
			span := colSpan(c)
			tc, err := t.cell(ctx, c, rowRec, cols, pos, span)
			if err != nil {
				return nil, err
			}
			tr.AddChild(tc)
			pos += span
		}
		if len(tr.ChildElements()) == 0 {
			tbl.RemoveChild(tr)
		}
	}
	return []*etree.Element{tbl}, nil
}

func (t *Transducer) cell(ctx context.Context, n *html.Node, row style.Record, cols []int, pos, span int) (*etree.Element, error) {
	rec := row.Merge(elementRecord(n))

	tc := etree.NewElement("w:tc")
	tcPr := tc.CreateElement("w:tcPr")

	width := 0
	for i := pos; i < pos+span && i < len(cols); i++ {
		width += cols[i]
	}
	tcW := tcPr.CreateElement("w:tcW")
	if width > 0 {
		tcW.CreateAttr("w:w", strconv.Itoa(width))
		tcW.CreateAttr("w:type", "dxa")
	} else {
		tcW.CreateAttr("w:w", "0")
		tcW.CreateAttr("w:type", "auto")
	}
	if span > 1 {
		tcPr.CreateElement("w:gridSpan").CreateAttr("w:val", strconv.Itoa(span))
	}
	if b, ok := rec.Border.Get(); ok && b.Visible() {
		borders := tcPr.CreateElement("w:tcBorders")
		for _, side := range []string{"top", "left", "bottom", "right"} {
			borderSide(borders, side, b)
		}
	}
	if c, ok := rec.Background.Get(); ok {
		shading(tcPr, c)
	} else if g, ok := rec.Gradient.Get(); ok {
		shading(tcPr, g.First())
	}
	if p, ok := rec.Padding.Get(); ok {
		mar := tcPr.CreateElement("w:tcMar")
		for _, side := range []struct {
			name string
			v    float64
		}{{"top", p.Top}, {"left", p.Left}, {"bottom", p.Bottom}, {"right", p.Right}} {
			el := mar.CreateElement("w:" + side.name)
			el.CreateAttr("w:w", strconv.Itoa(units.Round(side.v)))
			el.CreateAttr("w:type", "dxa")
		}
	}
	if v, ok := rec.CellVAlign.Get(); ok {
		tcPr.CreateElement("w:vAlign").CreateAttr("w:val", v)
	}

	inh := rec.Inheritable()
	els, err := t.blocks(ctx, n, inh, paraProps{rec: inh})
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		tc.AddChild(el)
	}
	// cell must end with paragraph
	if len(els) == 0 || els[len(els)-1].Tag != "p" {
		tc.AddChild(newParagraph(paraProps{rec: inh}))
	}
	return tc, nil
}
