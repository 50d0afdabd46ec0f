package units

import (
	"strings"
)

// Black is used for every color notation which is not understood.
const Black = "000000"

var namedColors = map[string]string{
	"black":   "000000",
	"white":   "FFFFFF",
	"red":     "FF0000",
	"green":   "008000",
	"blue":    "0000FF",
	"yellow":  "FFFF00",
	"gray":    "808080",
	"grey":    "808080",
	"silver":  "C0C0C0",
	"maroon":  "800000",
	"olive":   "808000",
	"lime":    "00FF00",
	"aqua":    "00FFFF",
	"cyan":    "00FFFF",
	"teal":    "008080",
	"navy":    "000080",
	"fuchsia": "FF00FF",
	"magenta": "FF00FF",
	"purple":  "800080",
	"orange":  "FFA500",
}

// keywords which mean "no color" rather than a bad color
var noColor = map[string]bool{
	"":             true,
	"transparent":  true,
	"none":         true,
	"inherit":      true,
	"initial":      true,
	"unset":        true,
	"revert":       true,
	"currentcolor": true,
}

// ParseColor normalizes CSS color into uppercase RRGGBB. Hex forms with 3, 4,
// 6 or 8 digits are accepted (alpha is dropped) as well as a small set of
// named colors. Functional notations (rgb(), hsl()) and anything else become
// black. The second result is false when the value does not specify a color
// at all (transparent, inherit and similar keywords).
func ParseColor(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "!important"))
	if noColor[s] {
		return "", false
	}
	if c, ok := namedColors[s]; ok {
		return c, true
	}
	hex, hashed := strings.CutPrefix(s, "#")
	if !isHex(hex) {
		return Black, true
	}
	switch len(hex) {
	case 3, 4:
		var b strings.Builder
		for _, r := range hex[:3] {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		if !hashed && len(hex) == 4 {
			// bare four digit strings are too ambiguous
			return Black, true
		}
		return strings.ToUpper(b.String()), true
	case 6, 8:
		return strings.ToUpper(hex[:6]), true
	}
	return Black, true
}

// LooksLikeColor reports whether a token from shorthand property (background,
// border) is meant to be a color.
func LooksLikeColor(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(s, "#") {
		return true
	}
	if _, ok := namedColors[s]; ok {
		return true
	}
	for _, fn := range []string{"rgb(", "rgba(", "hsl(", "hsla(", "hwb(", "lab(", "lch(", "oklab(", "oklch(", "color("} {
		if strings.HasPrefix(s, fn) {
			return true
		}
	}
	return false
}

// Color is ParseColor with black for values which do not specify a color.
func Color(s string) string {
	if c, ok := ParseColor(s); ok {
		return c
	}
	return Black
}

func isHex(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			return false
		}
	}
	return true
}
