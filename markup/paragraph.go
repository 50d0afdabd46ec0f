package markup

import (
	"strconv"

	"github.com/beevik/etree"

	"htmldocx/style"
	"htmldocx/units"
)

// numbering instances defined in numbering part
const (
	numBullet  = 1
	numDecimal = 2

	maxListLevel = 2
	listIndent   = 720
)

// paraProps is everything w:pPr may carry. Heading level and list
// membership come from the record.
type paraProps struct {
	rec style.Record
	// hr renders as bottom border
	rule bool
	// additional left indentation, twips
	indent int
}

// numberingID maps list kind to numbering instance, 0 for none.
func numberingID(kind style.ListKind) int {
	switch kind {
	case style.ListBullet:
		return numBullet
	case style.ListDecimal:
		return numDecimal
	}
	return 0
}

func borderStyle(css string) string {
	switch css {
	case style.BorderDashed:
		return "dashed"
	case style.BorderDotted:
		return "dotted"
	case style.BorderDouble:
		return "double"
	}
	return "single"
}

// borderSize converts CSS pixels into eighths of a point.
func borderSize(px float64) int {
	return max(units.Round(px*0.75*8), 2)
}

func borderSide(parent *etree.Element, side string, b style.Border) {
	el := parent.CreateElement("w:" + side)
	el.CreateAttr("w:val", borderStyle(b.Style))
	el.CreateAttr("w:sz", strconv.Itoa(borderSize(b.Width)))
	el.CreateAttr("w:space", "0")
	el.CreateAttr("w:color", b.Color)
}

// properties builds w:pPr, nil when paragraph needs none.
func (pp paraProps) properties() *etree.Element {
	ppr := etree.NewElement("w:pPr")
	rec := pp.rec

	if level := rec.Heading.Value(); level > 0 {
		ppr.CreateElement("w:pStyle").CreateAttr("w:val", "Heading"+strconv.Itoa(level))
	}
	numID := numberingID(rec.ListKind.Value())
	if numID > 0 {
		ilvl := min(max(rec.ListLevel.Value(), 0), maxListLevel)
		num := ppr.CreateElement("w:numPr")
		num.CreateElement("w:ilvl").CreateAttr("w:val", strconv.Itoa(ilvl))
		num.CreateElement("w:numId").CreateAttr("w:val", strconv.Itoa(numID))
	}

	switch b, ok := rec.Border.Get(); {
	case pp.rule:
		bdr := ppr.CreateElement("w:pBdr")
		bottom := bdr.CreateElement("w:bottom")
		bottom.CreateAttr("w:val", "single")
		bottom.CreateAttr("w:sz", "6")
		bottom.CreateAttr("w:space", "1")
		bottom.CreateAttr("w:color", "auto")
	case ok && b.Visible():
		bdr := ppr.CreateElement("w:pBdr")
		for _, side := range []string{"top", "left", "bottom", "right"} {
			borderSide(bdr, side, b)
		}
	}

	if c, ok := rec.Background.Get(); ok {
		shading(ppr, c)
	}

	switch {
	case rec.NoSpacing.Value():
		sp := ppr.CreateElement("w:spacing")
		sp.CreateAttr("w:before", "0")
		sp.CreateAttr("w:after", "0")
		sp.CreateAttr("w:line", "240")
		sp.CreateAttr("w:lineRule", "auto")
	case rec.SpacingBefore.IsSet() || rec.SpacingAfter.IsSet() || rec.LineHeight.IsSet():
		sp := ppr.CreateElement("w:spacing")
		if v, ok := rec.SpacingBefore.Get(); ok {
			sp.CreateAttr("w:before", strconv.Itoa(v))
		}
		if v, ok := rec.SpacingAfter.Get(); ok {
			sp.CreateAttr("w:after", strconv.Itoa(v))
		}
		if v, ok := rec.LineHeight.Get(); ok {
			sp.CreateAttr("w:line", strconv.Itoa(units.Round(v*240)))
			sp.CreateAttr("w:lineRule", "auto")
		}
	}

	left := rec.IndentLeft.Value() + pp.indent
	right := rec.IndentRight.Value()
	if numID == 0 && (left > 0 || right > 0) {
		ind := ppr.CreateElement("w:ind")
		if left > 0 {
			ind.CreateAttr("w:left", strconv.Itoa(left))
		}
		if right > 0 {
			ind.CreateAttr("w:right", strconv.Itoa(right))
		}
	}

	if a, ok := rec.Align.Get(); ok {
		ppr.CreateElement("w:jc").CreateAttr("w:val", a)
	}

	if len(ppr.Child) == 0 {
		return nil
	}
	return ppr
}

// newParagraph creates w:p with properties.
func newParagraph(pp paraProps) *etree.Element {
	p := etree.NewElement("w:p")
	if ppr := pp.properties(); ppr != nil {
		p.AddChild(ppr)
	}
	return p
}

// pageBreakParagraph is paragraph holding only hard page break.
func pageBreakParagraph() *etree.Element {
	p := etree.NewElement("w:p")
	p.AddChild(pageBreakRun())
	return p
}
