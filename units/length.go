// Package units converts CSS lengths, colors and gradients into the units
// used by WordprocessingML and VML.
package units

import (
	"math"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
)

const (
	PixelsPerInch = 96
	TwipsPerInch  = 1440
	TwipsPerPoint = 20
	EMUPerInch    = 914400
	EMUPerPixel   = EMUPerInch / PixelsPerInch
	EMUPerPoint   = 12700
	EMUPerCm      = 360000
	EMUPerMm      = 36000

	// font-relative units resolve against the browser default
	pixelsPerEm = 16
)

// Unit is a CSS length unit.
type Unit int

const (
	UnitNone Unit = iota
	UnitPx
	UnitPt
	UnitIn
	UnitCm
	UnitMm
	UnitPercent
	UnitEm
	UnitRem
)

var unitNames = map[string]Unit{
	"":    UnitNone,
	"px":  UnitPx,
	"pt":  UnitPt,
	"in":  UnitIn,
	"cm":  UnitCm,
	"mm":  UnitMm,
	"%":   UnitPercent,
	"em":  UnitEm,
	"rem": UnitRem,
}

func (u Unit) String() string {
	for k, v := range unitNames {
		if v == u {
			return k
		}
	}
	return "?"
}

// Length is a parsed CSS length.
type Length struct {
	Value float64
	Unit  Unit
}

// ParseLength parses number with optional unit suffix. Units it does not know
// are treated as pixels, strings without leading number (auto, inherit, etc.)
// are rejected.
func ParseLength(s string) (Length, bool) {
	b := []byte(strings.ToLower(strings.TrimSpace(s)))
	if len(b) == 0 {
		return Length{}, false
	}
	num, unit := parse.Dimension(b)
	if num == 0 {
		return Length{}, false
	}
	v, err := strconv.ParseFloat(string(b[:num]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Length{}, false
	}
	suffix := string(b[num : num+unit])
	if len(suffix) == 0 && num < len(b) && b[num] == '%' {
		suffix = "%"
	}
	u, ok := unitNames[suffix]
	if !ok {
		u = UnitPx
	}
	return Length{Value: v, Unit: u}, true
}

// MustParse is ParseLength for known good literals, it returns zero length on
// failure.
func MustParse(s string) Length {
	l, _ := ParseLength(s)
	return l
}

// Pixels returns length in CSS pixels. Percent and unitless values are
// returned as is.
func (l Length) Pixels() float64 {
	switch l.Unit {
	case UnitPt:
		return l.Value * PixelsPerInch / 72
	case UnitIn:
		return l.Value * PixelsPerInch
	case UnitCm:
		return l.Value * PixelsPerInch / 2.54
	case UnitMm:
		return l.Value * PixelsPerInch / 25.4
	case UnitEm, UnitRem:
		return l.Value * pixelsPerEm
	default:
		return l.Value
	}
}

// Points returns length in typographic points, unitless values are points.
func (l Length) Points() float64 {
	switch l.Unit {
	case UnitPt, UnitNone:
		return l.Value
	case UnitPercent:
		return 0
	default:
		return l.Pixels() * 72 / PixelsPerInch
	}
}

// HalfPoints converts font size into half-points. Pixels are scaled by 1.5
// (96 px to 72 pt, doubled), unitless numbers are taken as points and percent
// is relative to the 12pt medium size.
func HalfPoints(l Length) int {
	switch l.Unit {
	case UnitPx:
		return Round(l.Value * 1.5)
	case UnitPt, UnitNone:
		return Round(l.Value * 2)
	case UnitPercent:
		return Round(24 * l.Value / 100)
	default:
		return Round(l.Points() * 2)
	}
}

// Twips converts spacing and indentation into twentieths of a point.
// Unitless values are pixels. Percent has no reference here and yields zero.
func Twips(l Length) int {
	switch l.Unit {
	case UnitPt:
		return Round(l.Value * TwipsPerPoint)
	case UnitIn:
		return Round(l.Value * TwipsPerInch)
	case UnitPercent:
		return 0
	default:
		return Round(l.Pixels() * TwipsPerInch / PixelsPerInch)
	}
}

// EMU converts geometry into English Metric Units. Percent is taken of
// reference, unitless values are pixels.
func EMU(l Length, reference int64) int64 {
	switch l.Unit {
	case UnitPt:
		return int64(math.Round(l.Value * EMUPerPoint))
	case UnitIn:
		return int64(math.Round(l.Value * EMUPerInch))
	case UnitCm:
		return int64(math.Round(l.Value * EMUPerCm))
	case UnitMm:
		return int64(math.Round(l.Value * EMUPerMm))
	case UnitPercent:
		return int64(math.Round(float64(reference) * l.Value / 100))
	default:
		return int64(math.Round(l.Pixels() * EMUPerPixel))
	}
}

// InchesToTwips is used for page geometry options which are always inches.
func InchesToTwips(in float64) int {
	return Round(in * TwipsPerInch)
}

// InchesToEMU is used for page geometry options which are always inches.
func InchesToEMU(in float64) int64 {
	return int64(math.Round(in * EMUPerInch))
}

// PixelsToEMU converts device pixels at 96 dpi.
func PixelsToEMU(px float64) int64 {
	return int64(math.Round(px * EMUPerPixel))
}

// TwipsToPoints formats twips as points for VML style attributes.
func TwipsToPoints(tw int) float64 {
	return float64(tw) / TwipsPerPoint
}

// EMUToPoints converts EMU to points, rounded to whole points.
func EMUToPoints(emu int64) int {
	return Round(float64(emu) / EMUPerInch * 72)
}

var fontKeywords = map[string]int{
	"xx-small": 14,
	"x-small":  15,
	"small":    20,
	"medium":   24,
	"large":    27,
	"x-large":  36,
	"xx-large": 48,
}

// FontSize resolves a CSS font-size value into half-points. Relative keywords
// (smaller, larger) need parent size and are not handled here.
func FontSize(s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if hp, ok := fontKeywords[s]; ok {
		return hp, true
	}
	l, ok := ParseLength(s)
	if !ok || l.Value <= 0 {
		return 0, false
	}
	hp := HalfPoints(l)
	if hp <= 0 {
		return 0, false
	}
	return hp, true
}

// Round rounds half away from zero.
func Round(f float64) int {
	return int(math.Round(f))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
