//go:build !windows

package config

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// CleanFileName removes characters not allowed in file name. Leading dots are
// removed so results are never hidden.
func CleanFileName(in string) string {
	return cleanName(strings.TrimLeft(in, "."), func(sym rune) bool {
		return sym == os.PathSeparator || sym == os.PathListSeparator
	})
}

// EnableColorOutput checks if colorized output is possible.
func EnableColorOutput(stream *os.File) bool {
	return term.IsTerminal(int(stream.Fd()))
}
