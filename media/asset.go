package media

import (
	"strings"
)

// Part identifies package part which owns relationships.
type Part int

const (
	PartDocument Part = iota
	PartHeader
	PartFooter
)

func (p Part) String() string {
	switch p {
	case PartDocument:
		return "document"
	case PartHeader:
		return "header"
	case PartFooter:
		return "footer"
	}
	return "unknown"
}

// Asset is an image stored in the package.
type Asset struct {
	RelID       string
	ImageID     int
	Filename    string
	Ext         string
	ContentType string
	Data        []byte
	Alt         string
	Part        Part
	// intrinsic size in pixels, zero when image could not be decoded
	Width  int
	Height int
}

// Target is relationship target relative to word/ directory.
func (a *Asset) Target() string {
	return "media/" + a.Filename
}

// Name is archive entry name.
func (a *Asset) Name() string {
	return "word/media/" + a.Filename
}

// Link is an external hyperlink relationship.
type Link struct {
	RelID  string
	Target string
	Part   Part
}

var contentTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"jpg":  "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
}

// ContentType returns MIME type registered for extension in the package.
func ContentType(ext string) string {
	if ct, ok := contentTypes[strings.ToLower(ext)]; ok {
		return ct
	}
	return "application/octet-stream"
}

func knownExt(ext string) bool {
	_, ok := contentTypes[ext]
	return ok || ext == "webp"
}
