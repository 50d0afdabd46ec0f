// Package style resolves presentation attributes of markup nodes.
//
// A Record describes only what a node declares itself. Inheritance is done
// by the caller walking the tree: child records are merged over parent ones
// with Merge, box attributes CSS does not inherit are removed with
// Inheritable before the merge.
package style

import (
	"htmldocx/units"
)

// Paragraph alignment values as used by w:jc.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
	AlignBoth   = "both"
)

// ListKind is list membership of a paragraph. It applies to the item
// paragraph only, descendants never inherit it.
type ListKind int

const (
	ListNone ListKind = iota
	ListBullet
	ListDecimal
)

// Float is CSS float.
type Float int

const (
	FloatNone Float = iota
	FloatLeft
	FloatRight
)

// Border styles understood by the renderers.
const (
	BorderNone   = "none"
	BorderSolid  = "solid"
	BorderDashed = "dashed"
	BorderDotted = "dotted"
	BorderDouble = "double"
)

// Border is a resolved border declaration, width in pixels.
type Border struct {
	Width float64
	Style string
	Color string
}

// Visible reports whether border should be drawn.
func (b Border) Visible() bool {
	return b.Style != BorderNone && b.Style != "" && b.Width > 0
}

// Sides holds four box values, units depend on the field.
type Sides struct {
	Top, Right, Bottom, Left float64
}

// IsZero reports whether all sides are zero.
func (s Sides) IsZero() bool {
	return s == Sides{}
}

// Record is a set of optional presentation attributes.
type Record struct {
	// inherited
	Align        Opt[string]
	Bold         Opt[bool]
	Italic       Opt[bool]
	Underline    Opt[bool]
	Strike       Opt[bool]
	Color        Opt[string]
	Highlight    Opt[string] // run shading
	FontFamily   Opt[string]
	FontSize     Opt[int] // half-points
	VertAlign    Opt[string]
	LineHeight   Opt[float64] // multiplier
	IndentLeft   Opt[int]     // twips
	IndentRight  Opt[int]     // twips
	NoSpacing    Opt[bool]
	InBox        Opt[bool]
	Preformatted Opt[bool]

	// box scoped
	Background      Opt[string]
	Gradient        Opt[units.Gradient]
	Border          Opt[Border]
	Padding         Opt[Sides] // twips
	Margin          Opt[Sides] // pixels
	SpacingBefore   Opt[int]   // twips
	SpacingAfter    Opt[int]   // twips
	Width           Opt[string]
	Height          Opt[string]
	Radius          Opt[float64] // pixels
	Float           Opt[Float]
	CellVAlign      Opt[string]
	Heading         Opt[int]
	ListKind        Opt[ListKind]
	ListLevel       Opt[int]
	PageBreakBefore Opt[bool]
	PageBreakAfter  Opt[bool]
	Hidden          Opt[bool]
}

// Merge returns record where every attribute set in child overrides r and
// every attribute child does not set is taken from r. Merge is associative
// and idempotent.
func (r Record) Merge(child Record) Record {
	return Record{
		Align:        child.Align.over(r.Align),
		Bold:         child.Bold.over(r.Bold),
		Italic:       child.Italic.over(r.Italic),
		Underline:    child.Underline.over(r.Underline),
		Strike:       child.Strike.over(r.Strike),
		Color:        child.Color.over(r.Color),
		Highlight:    child.Highlight.over(r.Highlight),
		FontFamily:   child.FontFamily.over(r.FontFamily),
		FontSize:     child.FontSize.over(r.FontSize),
		VertAlign:    child.VertAlign.over(r.VertAlign),
		LineHeight:   child.LineHeight.over(r.LineHeight),
		IndentLeft:   child.IndentLeft.over(r.IndentLeft),
		IndentRight:  child.IndentRight.over(r.IndentRight),
		NoSpacing:    child.NoSpacing.over(r.NoSpacing),
		InBox:        child.InBox.over(r.InBox),
		Preformatted: child.Preformatted.over(r.Preformatted),

		Background:      child.Background.over(r.Background),
		Gradient:        child.Gradient.over(r.Gradient),
		Border:          child.Border.over(r.Border),
		Padding:         child.Padding.over(r.Padding),
		Margin:          child.Margin.over(r.Margin),
		SpacingBefore:   child.SpacingBefore.over(r.SpacingBefore),
		SpacingAfter:    child.SpacingAfter.over(r.SpacingAfter),
		Width:           child.Width.over(r.Width),
		Height:          child.Height.over(r.Height),
		Radius:          child.Radius.over(r.Radius),
		Float:           child.Float.over(r.Float),
		CellVAlign:      child.CellVAlign.over(r.CellVAlign),
		Heading:         child.Heading.over(r.Heading),
		ListKind:        child.ListKind.over(r.ListKind),
		ListLevel:       child.ListLevel.over(r.ListLevel),
		PageBreakBefore: child.PageBreakBefore.over(r.PageBreakBefore),
		PageBreakAfter:  child.PageBreakAfter.over(r.PageBreakAfter),
		Hidden:          child.Hidden.over(r.Hidden),
	}
}

// Inheritable returns copy of r without box scoped attributes, this is what
// descendants of the node see.
func (r Record) Inheritable() Record {
	r.Background = Opt[string]{}
	r.Gradient = Opt[units.Gradient]{}
	r.Border = Opt[Border]{}
	r.Padding = Opt[Sides]{}
	r.Margin = Opt[Sides]{}
	r.SpacingBefore = Opt[int]{}
	r.SpacingAfter = Opt[int]{}
	r.Width = Opt[string]{}
	r.Height = Opt[string]{}
	r.Radius = Opt[float64]{}
	r.Float = Opt[Float]{}
	r.CellVAlign = Opt[string]{}
	r.Heading = Opt[int]{}
	r.ListKind = Opt[ListKind]{}
	r.ListLevel = Opt[int]{}
	r.PageBreakBefore = Opt[bool]{}
	r.PageBreakAfter = Opt[bool]{}
	r.Hidden = Opt[bool]{}
	return r
}

// HasBackground reports whether node declares solid or gradient fill.
func (r Record) HasBackground() bool {
	return r.Background.IsSet() || r.Gradient.IsSet()
}

// IsDecoratedBox reports whether block must be rendered as a shape: it needs
// a background and at least one of padding, explicit width or corner radius.
func (r Record) IsDecoratedBox() bool {
	if !r.HasBackground() {
		return false
	}
	return r.Padding.IsSet() || r.Width.IsSet() || r.Radius.Value() > 0
}
