package docx

import (
	"htmldocx/config"
	"htmldocx/shape"
	"htmldocx/units"
)

// EMUPerTwip converts page geometry into drawing units.
const EMUPerTwip = units.EMUPerInch / units.TwipsPerInch

// Geometry is page layout of the single document section, twips.
type Geometry struct {
	shape.Geometry
	MarginFooter int
	Landscape    bool
}

// page sizes in twips for portrait orientation
var pageSizes = map[string][2]int{
	config.PageA4:     {11906, 16838},
	config.PageLetter: {12240, 15840},
	config.PageLegal:  {12240, 20160},
}

// NewGeometry computes page layout from sanitized options.
func NewGeometry(opts *config.ConversionOptions) Geometry {
	w, h := 0, 0
	if size, ok := pageSizes[opts.PageSize.Name]; ok {
		w, h = size[0], size[1]
	} else {
		iw, ih := opts.PageSize.Dimensions()
		w, h = units.InchesToTwips(iw), units.InchesToTwips(ih)
	}
	g := Geometry{Landscape: opts.Orientation == "landscape"}
	if g.Landscape {
		w, h = h, w
	}
	g.PageWidth, g.PageHeight = w, h
	g.MarginTop = units.InchesToTwips(opts.MarginTop.Float())
	g.MarginRight = units.InchesToTwips(opts.MarginRight.Float())
	g.MarginBottom = units.InchesToTwips(opts.MarginBottom.Float())
	g.MarginLeft = units.InchesToTwips(opts.MarginLeft.Float())
	g.MarginHeader = units.InchesToTwips(opts.MarginHeader.Float())
	g.MarginFooter = units.InchesToTwips(opts.MarginFooter.Float())
	return g
}

// PageWidthEMU is full page width for page anchored images.
func (g Geometry) PageWidthEMU() int64 {
	return int64(g.PageWidth) * EMUPerTwip
}

// PageHeightEMU is full page height for page anchored images.
func (g Geometry) PageHeightEMU() int64 {
	return int64(g.PageHeight) * EMUPerTwip
}
