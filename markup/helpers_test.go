package markup

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap/zaptest"

	"htmldocx/config"
	"htmldocx/media"
	"htmldocx/shape"
)

// a4 with one inch margins, text width 9026 twips
var a4 = shape.Geometry{
	PageWidth:    11906,
	PageHeight:   16838,
	MarginTop:    1440,
	MarginRight:  1440,
	MarginBottom: 1440,
	MarginLeft:   1440,
	MarginHeader: 720,
}

func newTestTransducer(t *testing.T, opts *config.ConversionOptions) (*Transducer, *media.Manager) {
	t.Helper()
	if opts == nil {
		o := config.DefaultOptions()
		opts = &o
	}
	log := zaptest.NewLogger(t)
	mgr := media.NewManager(nil, &config.ImagesConfig{}, log)
	return NewTransducer(mgr, media.PartDocument, opts, a4, shape.NewCounter(), log), mgr
}

func process(t *testing.T, tr *Transducer, markup string) Body {
	t.Helper()
	body, err := tr.ProcessMarkup(context.Background(), markup)
	if err != nil {
		t.Fatalf("ProcessMarkup() error = %v", err)
	}
	return body
}

func pngDataURI(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func attrOf(t *testing.T, el *etree.Element, path, key string) string {
	t.Helper()
	found := el
	if len(path) > 0 {
		found = el.FindElement(path)
	}
	if found == nil {
		t.Fatalf("element %q not found in %s", path, elementString(el))
	}
	return found.SelectAttrValue(key, "")
}

func elementString(el *etree.Element) string {
	var buf bytes.Buffer
	el.WriteTo(&buf, &etree.WriteSettings{})
	return buf.String()
}
