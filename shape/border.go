package shape

import (
	"math"

	"github.com/beevik/etree"

	"htmldocx/units"
)

// Geometry is page layout in twips.
type Geometry struct {
	PageWidth    int
	PageHeight   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	MarginHeader int
}

// TextWidth is width of text area in twips.
func (g Geometry) TextWidth() int {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// BorderSpec describes page border, Size is in points and MarginOffset in
// inches (nil means half of the left margin).
type BorderSpec struct {
	Style        string
	Color        string
	Size         float64
	Radius       float64
	MarginOffset *float64
}

// PageBorder returns paragraph with absolutely positioned rectangle drawn
// around text area and pushed outwards by margin offset so it does not touch
// the text. It is meant to be placed in page header so it repeats.
func PageBorder(geom Geometry, border BorderSpec, ids *Counter) *etree.Element {
	offset := geom.MarginLeft / 2
	if border.MarginOffset != nil && *border.MarginOffset >= 0 && !math.IsNaN(*border.MarginOffset) {
		offset = units.InchesToTwips(*border.MarginOffset)
	}

	// positions are computed in twips and converted once
	widthPt := units.TwipsToPoints(geom.PageWidth - geom.MarginLeft - geom.MarginRight + 2*offset)
	heightPt := units.TwipsToPoints(geom.PageHeight - geom.MarginTop - geom.MarginBottom + 2*offset)
	leftPt := units.TwipsToPoints(max(geom.MarginLeft-offset, 0))
	topPt := units.TwipsToPoints(max(geom.MarginTop-geom.MarginHeader, 0))

	color := border.Color
	if len(color) == 0 {
		color = units.Black
	}
	size := border.Size
	if size <= 0 {
		size = 1
	}

	rect := etree.NewElement("v:roundrect")
	rect.CreateAttr("id", ids.Next())
	rect.CreateAttr("style", "position:absolute;"+
		"mso-position-horizontal-relative:page;mso-position-vertical-relative:page;"+
		"left:"+pt(leftPt)+";top:"+pt(topPt)+";width:"+pt(widthPt)+";height:"+pt(heightPt)+";")
	rect.CreateAttr("fillcolor", "transparent")
	rect.CreateAttr("stroked", "t")
	arc := 0.0
	if shorter := math.Min(widthPt, heightPt); shorter > 0 {
		arc = units.Clamp(border.Radius/shorter, 0, 1)
	}
	rect.CreateAttr("arcsize", num(arc))

	weight := size
	if border.Style == "thick" {
		weight = math.Max(size*1.5, size+2)
	}
	stroke := rect.CreateElement("v:stroke")
	stroke.CreateAttr("color", "#"+color)
	stroke.CreateAttr("weight", pt(weight))
	stroke.CreateAttr("insetpen", "t")
	switch border.Style {
	case "dotted":
		stroke.CreateAttr("dashstyle", "dot")
	case "dashed":
		stroke.CreateAttr("dashstyle", "dash")
	case "double":
		stroke.CreateAttr("linestyle", "thickThin")
	}

	p := etree.NewElement("w:p")
	p.CreateElement("w:r").CreateElement("w:pict").AddChild(rect)
	return p
}
