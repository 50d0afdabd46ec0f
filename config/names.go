package config

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxNameBytes is the common file name limit of ext4, NTFS and APFS.
const maxNameBytes = 255

const badFileName = "_bad_file_name_"

// cleanName drops control characters and those rejected by the caller, then
// trims result to file system limit without breaking UTF-8 sequences.
func cleanName(in string, reject func(rune) bool) string {
	out := strings.Map(func(sym rune) rune {
		if unicode.IsControl(sym) || reject(sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimSpace(out)
	for len(out) > maxNameBytes {
		_, size := utf8.DecodeLastRuneInString(out)
		out = out[:len(out)-size]
	}
	if len(out) == 0 {
		return badFileName
	}
	return out
}
