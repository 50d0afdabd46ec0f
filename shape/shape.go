// Package shape produces VML shapes: decorated text boxes and page border
// overlay.
package shape

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"htmldocx/units"
)

const (
	// DefaultWidth and DefaultHeight are text box extents in EMU when block
	// does not declare them.
	DefaultWidth  int64 = 9144000
	DefaultHeight int64 = 914400
	// ReferenceWidth is text width percentages are taken of.
	ReferenceWidth int64 = 5943600
	// DefaultPadding is text box inset in twips.
	DefaultPadding = 100
	// DefaultFill is text box background.
	DefaultFill = "FFFFFF"

	firstShapeID = 1025
)

// Counter issues shape identifiers for one conversion.
type Counter struct {
	next atomic.Int64
}

// NewCounter returns counter starting at the first identifier Word uses.
func NewCounter() *Counter {
	c := &Counter{}
	c.next.Store(firstShapeID)
	return c
}

// Next returns next shape id.
func (c *Counter) Next() string {
	return fmt.Sprintf("_x0000_s%d", c.next.Add(1)-1)
}

// CSS gradient angles point where gradient goes to, VML angles where it
// comes from and run counterclockwise.
var vmlAngles = map[int]int{
	180: 0,
	225: 315,
	270: 270,
	315: 225,
	0:   180,
	45:  135,
	90:  90,
	135: 45,
}

// VMLAngle converts CSS linear-gradient angle into v:fill angle.
func VMLAngle(cssDeg float64) int {
	deg := units.Round(units.NormalizeAngle(cssDeg)) % 360
	if a, ok := vmlAngles[deg]; ok {
		return a
	}
	return ((180-deg)%360 + 360) % 360
}

// ArcSize returns corner rounding as VML fraction: radius is limited to half
// of the shorter side and expressed relative to it.
func ArcSize(radius, w, h float64) float64 {
	if radius <= 0 {
		return 0
	}
	half := math.Min(w, h) / 2
	if half <= 0 {
		return 0
	}
	return units.Clamp(math.Min(radius, half)/half, 0, 1)
}

// Dimension converts CSS width or height into EMU. Percent is taken of
// ReferenceWidth, unitless values are pixels.
func Dimension(value string, def int64) int64 {
	l, ok := units.ParseLength(value)
	if !ok || l.Value <= 0 {
		return def
	}
	switch l.Unit {
	case units.UnitEm, units.UnitRem:
		return def
	}
	return units.EMU(l, ReferenceWidth)
}

// pt formats points the way Word writes them.
func pt(v float64) string {
	return num(v) + "pt"
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
