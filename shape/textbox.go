package shape

import (
	"strconv"

	"github.com/beevik/etree"

	"htmldocx/units"
)

// Insets is text box padding in twips.
type Insets struct {
	Top, Right, Bottom, Left int
}

// Stroke is text box border. Width is in CSS pixels.
type Stroke struct {
	Width float64
	Color string
	Style string
}

// BoxSpec describes decorated block.
type BoxSpec struct {
	// raw CSS lengths, empty means default
	Width  string
	Height string
	// hex color, empty means DefaultFill
	Fill     string
	Gradient *units.Gradient
	Padding  *Insets
	Border   *Stroke
	// corner radius in CSS pixels
	Radius        float64
	SpacingBefore int
	SpacingAfter  int
}

// TextBox wraps content paragraphs into paragraph holding rounded rectangle
// with text box.
func TextBox(content []*etree.Element, spec BoxSpec, ids *Counter) *etree.Element {
	width := DefaultWidth
	if len(spec.Width) > 0 {
		width = Dimension(spec.Width, DefaultWidth)
	}
	height := DefaultHeight
	if len(spec.Height) > 0 {
		height = Dimension(spec.Height, DefaultHeight)
	}
	widthPt, heightPt := units.EMUToPoints(width), units.EMUToPoints(height)

	padding := Insets{DefaultPadding, DefaultPadding, DefaultPadding, DefaultPadding}
	if spec.Padding != nil {
		padding = *spec.Padding
	}

	fill := DefaultFill
	if spec.Gradient != nil {
		fill = spec.Gradient.First()
	} else if len(spec.Fill) > 0 {
		fill = spec.Fill
	}

	p := etree.NewElement("w:p")
	if spec.SpacingBefore > 0 || spec.SpacingAfter > 0 {
		spacing := p.CreateElement("w:pPr").CreateElement("w:spacing")
		if spec.SpacingBefore > 0 {
			spacing.CreateAttr("w:before", strconv.Itoa(spec.SpacingBefore))
		}
		if spec.SpacingAfter > 0 {
			spacing.CreateAttr("w:after", strconv.Itoa(spec.SpacingAfter))
		}
	}

	rect := p.CreateElement("w:r").CreateElement("w:pict").CreateElement("v:roundrect")
	rect.CreateAttr("id", ids.Next())
	rect.CreateAttr("style", "width:"+strconv.Itoa(widthPt)+"pt;height:"+strconv.Itoa(heightPt)+"pt;")
	rect.CreateAttr("fillcolor", "#"+fill)
	if spec.Border != nil {
		rect.CreateAttr("stroked", "t")
	} else {
		rect.CreateAttr("stroked", "f")
	}
	if arc := ArcSize(spec.Radius, float64(widthPt), float64(heightPt)); arc > 0 {
		rect.CreateAttr("arcsize", num(arc))
	}

	if spec.Gradient != nil {
		f := rect.CreateElement("v:fill")
		f.CreateAttr("type", "gradient")
		f.CreateAttr("color2", "#"+spec.Gradient.Last())
		f.CreateAttr("angle", strconv.Itoa(VMLAngle(spec.Gradient.Angle)))
	}

	if b := spec.Border; b != nil {
		color := b.Color
		if len(color) == 0 {
			color = units.Black
		}
		w := b.Width
		if w <= 0 {
			w = 1
		}
		stroke := rect.CreateElement("v:stroke")
		stroke.CreateAttr("color", "#"+color)
		stroke.CreateAttr("weight", pt(w*0.75))
		switch b.Style {
		case "dotted":
			stroke.CreateAttr("dashstyle", "dot")
		case "dashed":
			stroke.CreateAttr("dashstyle", "dash")
		}
	}

	box := rect.CreateElement("v:textbox")
	box.CreateAttr("style", "mso-fit-shape-to-text:t")
	box.CreateAttr("inset", pt(units.TwipsToPoints(padding.Left))+","+
		pt(units.TwipsToPoints(padding.Top))+","+
		pt(units.TwipsToPoints(padding.Right))+","+
		pt(units.TwipsToPoints(padding.Bottom)))

	txbx := box.CreateElement("w:txbxContent")
	for _, c := range content {
		txbx.AddChild(c)
	}
	if len(content) == 0 {
		// text box content must have at least one paragraph
		txbx.CreateElement("w:p")
	}
	return p
}
