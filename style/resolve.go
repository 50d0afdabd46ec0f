package style

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"htmldocx/css"
	"htmldocx/units"
)

// Sides order used by box shorthands.
const (
	top = iota
	right
	bottom
	left
)

// box accumulates margin or padding declarations in source order so
// longhands may override shorthand and the other way around.
type box struct {
	set [4]bool
	val [4]units.Length
}

func (b *box) shorthand(value string) {
	parts := strings.Fields(value)
	if len(parts) == 0 || len(parts) > 4 {
		return
	}
	var sides [4]string
	switch len(parts) {
	case 1:
		sides = [4]string{parts[0], parts[0], parts[0], parts[0]}
	case 2:
		sides = [4]string{parts[0], parts[1], parts[0], parts[1]}
	case 3:
		sides = [4]string{parts[0], parts[1], parts[2], parts[1]}
	case 4:
		sides = [4]string{parts[0], parts[1], parts[2], parts[3]}
	}
	for i, s := range sides {
		b.side(i, s)
	}
}

func (b *box) side(i int, value string) {
	l, ok := units.ParseLength(value)
	if !ok {
		// auto and friends
		return
	}
	if l.Value < 0 {
		l.Value = 0
	}
	b.set[i], b.val[i] = true, l
}

func (b *box) any() bool {
	return b.set[top] || b.set[right] || b.set[bottom] || b.set[left]
}

var sideNames = [4]string{"top", "right", "bottom", "left"}

// Resolve computes record from node own inline declarations and structural
// attributes. Nothing is inherited here.
func Resolve(n *html.Node) Record {
	var r Record
	if n == nil || n.Type != html.ElementNode {
		return r
	}

	if v, ok := attr(n, "align"); ok {
		if a, ok := alignment(v); ok {
			r.Align = Some(a)
		}
	}
	if _, ok := attr(n, "data-no-spacing"); ok {
		r.NoSpacing = Some(true)
	}
	if _, ok := attr(n, "data-page-break"); ok {
		r.PageBreakBefore = Some(true)
	}
	switch n.DataAtom {
	case atom.Img, atom.Td, atom.Th, atom.Table:
		if v, ok := attr(n, "width"); ok && len(strings.TrimSpace(v)) > 0 {
			r.Width = Some(strings.TrimSpace(v))
		}
		if v, ok := attr(n, "height"); ok && len(strings.TrimSpace(v)) > 0 {
			r.Height = Some(strings.TrimSpace(v))
		}
	}

	style, ok := attr(n, "style")
	if !ok {
		return r
	}
	return r.Merge(FromDeclarations(css.ParseInline(style)))
}

// FromDeclarations maps parsed inline declarations onto record.
func FromDeclarations(decls css.Declarations) Record {
	var (
		r       Record
		margin  box
		padding box
		border  Border
		bset    bool
	)

	for _, d := range decls {
		v := strings.TrimSpace(d.Value)
		lv := strings.ToLower(v)

		switch d.Property {
		case "text-align":
			if a, ok := alignment(lv); ok {
				r.Align = Some(a)
			}
		case "font-weight":
			if b, ok := fontWeight(lv); ok {
				r.Bold = Some(b)
			}
		case "font-style":
			switch lv {
			case "italic", "oblique":
				r.Italic = Some(true)
			case "normal":
				r.Italic = Some(false)
			}
		case "text-decoration", "text-decoration-line":
			if lv == "none" {
				r.Underline, r.Strike = Some(false), Some(false)
				continue
			}
			if strings.Contains(lv, "underline") {
				r.Underline = Some(true)
			}
			if strings.Contains(lv, "line-through") {
				r.Strike = Some(true)
			}
		case "color":
			if c, ok := units.ParseColor(lv); ok {
				r.Color = Some(c)
			}
		case "background-color":
			if c, ok := units.ParseColor(lv); ok {
				r.Background = Some(c)
			}
		case "background", "background-image":
			if g, ok := units.ParseGradient(lv); ok {
				r.Gradient = Some(g)
				continue
			}
			for _, f := range units.SplitTopLevel(lv, ' ') {
				if units.LooksLikeColor(f) {
					if c, ok := units.ParseColor(f); ok {
						r.Background = Some(c)
					}
					break
				}
			}
		case "font-size":
			if hp, ok := units.FontSize(lv); ok {
				r.FontSize = Some(hp)
			}
		case "font-family":
			if f := fontFamily(v); len(f) > 0 {
				r.FontFamily = Some(f)
			}
		case "line-height":
			if lh, ok := lineHeight(lv); ok {
				r.LineHeight = Some(lh)
			}
		case "margin":
			margin.shorthand(lv)
		case "margin-top", "margin-right", "margin-bottom", "margin-left":
			margin.side(sideIndex(strings.TrimPrefix(d.Property, "margin-")), lv)
		case "padding":
			padding.shorthand(lv)
		case "padding-top", "padding-right", "padding-bottom", "padding-left":
			padding.side(sideIndex(strings.TrimPrefix(d.Property, "padding-")), lv)
		case "border":
			border, bset = borderShorthand(lv), true
		case "border-width":
			if w, ok := borderWidth(lv); ok {
				border.Width, bset = w, true
			}
		case "border-style":
			border.Style, bset = lv, true
		case "border-color":
			border.Color, bset = units.Color(lv), true
		case "border-radius":
			// elliptical and per-corner radii collapse to the first value
			first, _, _ := strings.Cut(lv, " ")
			if l, ok := units.ParseLength(first); ok && l.Unit != units.UnitPercent && l.Value >= 0 {
				r.Radius = Some(l.Pixels())
			}
		case "width":
			if lv != "auto" {
				r.Width = Some(lv)
			}
		case "height":
			if lv != "auto" {
				r.Height = Some(lv)
			}
		case "float":
			switch lv {
			case "left":
				r.Float = Some(FloatLeft)
			case "right":
				r.Float = Some(FloatRight)
			case "none":
				r.Float = Some(FloatNone)
			}
		case "vertical-align":
			switch lv {
			case "super", "sub":
				r.VertAlign = Some(lv)
			case "baseline":
				r.VertAlign = Some("")
			case "top", "bottom":
				r.CellVAlign = Some(lv)
			case "middle":
				r.CellVAlign = Some("center")
			}
		case "page-break-before", "break-before":
			if isPageBreak(lv) {
				r.PageBreakBefore = Some(true)
			}
		case "page-break-after", "break-after":
			if isPageBreak(lv) {
				r.PageBreakAfter = Some(true)
			}
		case "display":
			r.Hidden = Some(lv == "none")
		case "white-space":
			switch lv {
			case "pre", "pre-wrap", "break-spaces":
				r.Preformatted = Some(true)
			case "normal", "nowrap", "pre-line":
				r.Preformatted = Some(false)
			}
		}
	}

	if margin.any() {
		var px Sides
		for i, set := range margin.set {
			if !set {
				continue
			}
			l := margin.val[i]
			tw := units.Twips(l)
			switch i {
			case top:
				px.Top = l.Pixels()
				r.SpacingBefore = Some(tw)
			case right:
				px.Right = l.Pixels()
				r.IndentRight = Some(tw)
			case bottom:
				px.Bottom = l.Pixels()
				r.SpacingAfter = Some(tw)
			case left:
				px.Left = l.Pixels()
				r.IndentLeft = Some(tw)
			}
		}
		r.Margin = Some(px)
	}
	if padding.any() {
		var tw Sides
		for i, set := range padding.set {
			if !set {
				continue
			}
			v := float64(units.Twips(padding.val[i]))
			switch i {
			case top:
				tw.Top = v
			case right:
				tw.Right = v
			case bottom:
				tw.Bottom = v
			case left:
				tw.Left = v
			}
		}
		r.Padding = Some(tw)
	}
	if bset {
		if len(border.Style) == 0 && border.Width > 0 {
			border.Style = BorderSolid
		}
		if len(border.Color) == 0 {
			border.Color = units.Black
		}
		if border.Width == 0 && border.Style != BorderNone && len(border.Style) > 0 {
			border.Width = 3
		}
		r.Border = Some(border)
	}
	return r
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func alignment(v string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "left", "start":
		return AlignLeft, true
	case "center", "middle":
		return AlignCenter, true
	case "right", "end":
		return AlignRight, true
	case "justify":
		return AlignBoth, true
	}
	return "", false
}

func fontWeight(v string) (bool, bool) {
	switch v {
	case "bold", "bolder":
		return true, true
	case "normal", "lighter":
		return false, true
	}
	w, err := strconv.Atoi(v)
	if err != nil {
		return false, false
	}
	return w >= 600, true
}

func fontFamily(v string) string {
	first := strings.TrimSpace(strings.SplitN(v, ",", 2)[0])
	return strings.TrimSpace(strings.Trim(first, `"'`))
}

func lineHeight(v string) (float64, bool) {
	if v == "normal" {
		return 0, false
	}
	l, ok := units.ParseLength(v)
	if !ok || l.Value <= 0 {
		return 0, false
	}
	switch l.Unit {
	case units.UnitNone:
		return l.Value, true
	case units.UnitPercent:
		return l.Value / 100, true
	case units.UnitEm, units.UnitRem:
		return l.Value, true
	}
	return 0, false
}

func sideIndex(name string) int {
	for i, s := range sideNames {
		if s == name {
			return i
		}
	}
	return top
}

var borderWidths = map[string]float64{
	"thin":   1,
	"medium": 3,
	"thick":  5,
}

var borderStyles = map[string]bool{
	BorderNone:   true,
	"hidden":     true,
	BorderSolid:  true,
	BorderDashed: true,
	BorderDotted: true,
	BorderDouble: true,
	"groove":     true,
	"ridge":      true,
	"inset":      true,
	"outset":     true,
}

func borderWidth(v string) (float64, bool) {
	if w, ok := borderWidths[v]; ok {
		return w, true
	}
	l, ok := units.ParseLength(v)
	if !ok || l.Unit == units.UnitPercent || l.Value < 0 {
		return 0, false
	}
	return l.Pixels(), true
}

func borderShorthand(v string) Border {
	var b Border
	for _, f := range units.SplitTopLevel(v, ' ') {
		switch {
		case borderStyles[f]:
			if f == "hidden" {
				f = BorderNone
			}
			b.Style = f
		case units.LooksLikeColor(f):
			b.Color = units.Color(f)
		default:
			if w, ok := borderWidth(f); ok {
				b.Width = w
			}
		}
	}
	return b
}

func isPageBreak(v string) bool {
	switch v {
	case "always", "page", "left", "right":
		return true
	}
	return false
}
