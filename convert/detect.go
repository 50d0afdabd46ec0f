package convert

import (
	"archive/zip"
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"htmldocx/config"
)

type srcEncoding int

const (
	encUnknown srcEncoding = iota
	encUTF8
	encUTF16BigEndian
	encUTF16LittleEndian
	encUTF32BigEndian
	encUTF32LittleEndian
)

// sourceKind is what conversion pipeline a file goes through.
type sourceKind int

const (
	kindNone sourceKind = iota
	kindHTML
	kindMarkdown
)

func (k sourceKind) String() string {
	switch k {
	case kindHTML:
		return "html"
	case kindMarkdown:
		return "markdown"
	}
	return "none"
}

// how much of the file we look at
const sniffLen = 1024

var htmlType = filetype.NewType("html", "text/html")

func init() {
	filetype.AddMatcher(htmlType, looksLikeHTML)
}

// looksLikeHTML accepts text which starts with markup after optional BOM
// and whitespace.
func looksLikeHTML(buf []byte) bool {
	buf = bytes.TrimPrefix(buf, []byte{0xEF, 0xBB, 0xBF})
	buf = bytes.TrimLeft(buf, " \t\r\n")
	if len(buf) == 0 || buf[0] != '<' {
		return false
	}
	head := bytes.ToLower(buf[:min(len(buf), sniffLen)])
	for _, marker := range [][]byte{[]byte("<!doctype html"), []byte("<html"), []byte("<?xml"), []byte("<head"), []byte("<body")} {
		if bytes.HasPrefix(head, marker) {
			return true
		}
	}
	// fragments are fine too as long as they look like tags
	return len(head) > 1 && (head[1] >= 'a' && head[1] <= 'z' || head[1] == '!')
}

func isUTF8BOM3(buf []byte) bool {
	return buf[0] == 0xEF && buf[1] == 0xBB && buf[2] == 0xBF
}

func isUTF16BigEndianBOM2(buf []byte) bool {
	return buf[0] == 0xFE && buf[1] == 0xFF
}

func isUTF16LittleEndianBOM2(buf []byte) bool {
	return buf[0] == 0xFF && buf[1] == 0xFE
}

func isUTF32BigEndianBOM4(buf []byte) bool {
	return buf[0] == 0x00 && buf[1] == 0x00 && buf[2] == 0xFE && buf[3] == 0xFF
}

func isUTF32LittleEndianBOM4(buf []byte) bool {
	return buf[0] == 0xFF && buf[1] == 0xFE && buf[2] == 0x00 && buf[3] == 0x00
}

// detectUTF looks for byte order mark, UTF-32 has to be checked first.
func detectUTF(buf []byte) srcEncoding {
	if len(buf) >= 4 {
		switch {
		case isUTF32BigEndianBOM4(buf):
			return encUTF32BigEndian
		case isUTF32LittleEndianBOM4(buf):
			return encUTF32LittleEndian
		}
	}
	if len(buf) >= 3 && isUTF8BOM3(buf) {
		return encUTF8
	}
	if len(buf) >= 2 {
		switch {
		case isUTF16BigEndianBOM2(buf):
			return encUTF16BigEndian
		case isUTF16LittleEndianBOM2(buf):
			return encUTF16LittleEndian
		}
	}
	return encUnknown
}

// selectReader returns reader producing UTF-8 for detected encoding.
func selectReader(r io.Reader, enc srcEncoding) io.Reader {
	switch enc {
	case encUnknown:
		return r
	case encUTF8:
		return transform.NewReader(r, unicode.UTF8BOM.NewDecoder())
	case encUTF16BigEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF16LittleEndian:
		return transform.NewReader(r, unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder())
	case encUTF32BigEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.BigEndian, utf32.ExpectBOM).NewDecoder())
	case encUTF32LittleEndian:
		return transform.NewReader(r, utf32.UTF32(utf32.LittleEndian, utf32.ExpectBOM).NewDecoder())
	}
	// this should never happen
	panic(fmt.Sprintf("unexpected source encoding %d", enc))
}

// readSource reads whole source as UTF-8 text. Without BOM HTML declares its
// own charset (meta tag), Markdown is expected to be UTF-8.
func readSource(r io.Reader, enc srcEncoding, kind sourceKind, limit int64) (string, error) {
	rd := selectReader(io.LimitReader(r, limit+1), enc)
	if enc == encUnknown && kind == kindHTML {
		br := bufio.NewReader(rd)
		head, _ := br.Peek(sniffLen)
		if e, name := determineEncoding(head); name != "utf-8" {
			rd = transform.NewReader(br, e.NewDecoder())
		} else {
			rd = br
		}
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return "", fmt.Errorf("unable to read source: %w", err)
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("source is larger than %d bytes", limit)
	}
	return string(data), nil
}

// determineEncoding trusts BOM and meta declarations. Meta prescan results
// are reported as uncertain, windows-1252 is also returned when nothing was
// found and then UTF-8 is assumed.
func determineEncoding(head []byte) (encoding.Encoding, string) {
	e, name, certain := charset.DetermineEncoding(head, "text/html")
	if !certain && name == "windows-1252" && !bytes.Contains(bytes.ToLower(head), []byte("charset")) {
		return nil, "utf-8"
	}
	return e, name
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.ContainsFunc(exts, func(e string) bool { return strings.EqualFold(e, ext) })
}

// kindByName selects pipeline from file extension.
func kindByName(name string, in *config.InputConfig) sourceKind {
	switch {
	case hasExt(name, in.HTMLExtensions):
		return kindHTML
	case hasExt(name, in.MarkdownExtensions):
		return kindMarkdown
	}
	return kindNone
}

// classify checks content of a file with known extension.
func classify(head []byte, kind sourceKind) (sourceKind, srcEncoding) {
	enc := detectUTF(head)
	switch kind {
	case kindHTML:
		if enc == encUnknown || enc == encUTF8 {
			if !filetype.Is(head, htmlType.Extension) {
				return kindNone, encUnknown
			}
		}
		// wide encodings are trusted by extension
		return kindHTML, enc
	case kindMarkdown:
		if filetype.IsArchive(head) || filetype.IsImage(head) {
			return kindNone, encUnknown
		}
		return kindMarkdown, enc
	}
	return kindNone, encUnknown
}

func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return nil, err
	}
	return head[:n], nil
}

// isArchiveFile checks if file is zip archive.
func isArchiveFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHead(file)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// isSourceFile checks if file could be converted and how.
func isSourceFile(path string, in *config.InputConfig) (sourceKind, srcEncoding, error) {
	file, err := os.Open(path)
	if err != nil {
		return kindNone, encUnknown, err
	}
	defer file.Close()

	kind := kindByName(path, in)
	if kind == kindNone {
		return kindNone, encUnknown, nil
	}
	head, err := readHead(file)
	if err != nil {
		return kindNone, encUnknown, err
	}
	kind, enc := classify(head, kind)
	return kind, enc, nil
}

// isSourceInArchive checks if archive entry could be converted and how.
func isSourceInArchive(f *zip.File, in *config.InputConfig) (sourceKind, srcEncoding, error) {
	kind := kindByName(f.FileHeader.Name, in)
	if kind == kindNone {
		return kindNone, encUnknown, nil
	}
	r, err := f.Open()
	if err != nil {
		return kindNone, encUnknown, err
	}
	defer r.Close()

	head, err := readHead(r)
	if err != nil {
		return kindNone, encUnknown, err
	}
	kind, enc := classify(head, kind)
	return kind, enc, nil
}
