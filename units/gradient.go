package units

import (
	"math"
	"strconv"
	"strings"
)

// Gradient is a parsed linear-gradient() declaration. Angle follows CSS
// convention: degrees clockwise with 0 pointing up.
type Gradient struct {
	Angle float64
	Stops []string
}

// First returns color of the first stop.
func (g Gradient) First() string {
	if len(g.Stops) == 0 {
		return Black
	}
	return g.Stops[0]
}

// Last returns color of the last stop.
func (g Gradient) Last() string {
	if len(g.Stops) == 0 {
		return Black
	}
	return g.Stops[len(g.Stops)-1]
}

var directions = map[string]float64{
	"to top":          0,
	"to top right":    45,
	"to right top":    45,
	"to right":        90,
	"to bottom right": 135,
	"to right bottom": 135,
	"to bottom":       180,
	"to bottom left":  225,
	"to left bottom":  225,
	"to left":         270,
	"to top left":     315,
	"to left top":     315,
}

const defaultGradientAngle = 180

// ParseGradient recognizes linear-gradient() with at least two color stops
// anywhere in the value (so background shorthand works). Repeating and
// radial gradients are not recognized.
func ParseGradient(s string) (Gradient, bool) {
	s = strings.ToLower(s)
	const fn = "linear-gradient("
	start := strings.Index(s, fn)
	if start < 0 || strings.HasSuffix(s[:start], "repeating-") {
		return Gradient{}, false
	}
	body, ok := insideParens(s[start+len(fn):])
	if !ok {
		return Gradient{}, false
	}
	args := SplitTopLevel(body, ',')
	if len(args) == 0 {
		return Gradient{}, false
	}

	g := Gradient{Angle: defaultGradientAngle}
	first := strings.Join(strings.Fields(args[0]), " ")
	if a, ok := directions[first]; ok {
		g.Angle = a
		args = args[1:]
	} else if a, ok := parseAngle(first); ok {
		g.Angle = a
		args = args[1:]
	}
	for _, arg := range args {
		fields := SplitTopLevel(strings.TrimSpace(arg), ' ')
		if len(fields) == 0 || len(fields[0]) == 0 {
			continue
		}
		g.Stops = append(g.Stops, Color(fields[0]))
	}
	if len(g.Stops) < 2 {
		return Gradient{}, false
	}
	return g, true
}

func parseAngle(s string) (float64, bool) {
	if s == "0" {
		return 0, true
	}
	for _, u := range []struct {
		suffix string
		scale  float64
	}{
		{"deg", 1},
		{"grad", 360.0 / 400},
		{"rad", 180 / math.Pi},
		{"turn", 360},
	} {
		num, found := strings.CutSuffix(s, u.suffix)
		if !found {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		return NormalizeAngle(v * u.scale), true
	}
	return 0, false
}

// NormalizeAngle brings degrees into [0, 360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// insideParens returns text up to the parenthesis closing the one already
// consumed.
func insideParens(s string) (string, bool) {
	depth := 1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[:i], true
			}
		}
	}
	return "", false
}

// SplitTopLevel splits s on sep ignoring separators nested in parentheses.
// Empty parts produced by repeated spaces are dropped.
func SplitTopLevel(s string, sep byte) []string {
	var (
		parts []string
		depth int
		last  int
	)
	add := func(p string) {
		p = strings.TrimSpace(p)
		if len(p) == 0 && sep == ' ' {
			return
		}
		parts = append(parts, p)
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '(':
			depth++
		case c == ')':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			add(s[last:i])
			last = i + 1
		}
	}
	add(s[last:])
	return parts
}
