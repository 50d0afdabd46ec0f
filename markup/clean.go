package markup

import (
	"regexp"
	"strings"
)

var (
	controlCharsRe = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x{7F}-\x{9F}]`)
	scriptRe       = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe        = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	unsafeTagRe    = regexp.MustCompile(`(?i)</?(iframe|object|embed|form|input|button|select|textarea)\b[^>]*>`)
	danglingTagRe  = regexp.MustCompile(`<[^>]*$`)
)

// Clean prepares raw markup for parsing: strips control characters, scripts,
// styles, embedded objects and form controls and a tag left incomplete at
// the end. Markup without html or body element is wrapped into them.
func Clean(markup string) string {
	if len(strings.TrimSpace(markup)) == 0 {
		return "<p></p>"
	}

	s := controlCharsRe.ReplaceAllString(markup, "")
	s = scriptRe.ReplaceAllString(s, "")
	s = styleRe.ReplaceAllString(s, "")
	s = unsafeTagRe.ReplaceAllString(s, "")
	s = danglingTagRe.ReplaceAllString(s, "")

	lower := strings.ToLower(s)
	if !strings.Contains(lower, "<body") && !strings.Contains(lower, "<html") {
		s = "<html><body>" + s + "</body></html>"
	}
	return s
}
