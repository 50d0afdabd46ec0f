package markup

import (
	"context"
	"strconv"

	"github.com/beevik/etree"
	"golang.org/x/net/html"

	"htmldocx/media"
	"htmldocx/style"
	"htmldocx/units"
)

const (
	defaultImageWidth  = 300
	defaultImageHeight = 200

	pictureURI = "http://schemas.openxmlformats.org/drawingml/2006/picture"
)

// Placement describes floating image position. Zero value is inline image.
type Placement struct {
	Anchor bool
	// distance from text, EMU
	DistT, DistB, DistL, DistR int64
	// relativeFrom values of positionH and positionV
	RelH, RelV string
	// horizontal alignment, when empty OffsetX is used
	AlignH           string
	OffsetX, OffsetY int64
	// wrapSquare when WrapText is set, wrapTopAndBottom otherwise
	WrapText string
}

// PageAnchor places image at absolute page position.
func PageAnchor(x, y int64, wrapText string) Placement {
	return Placement{Anchor: true, RelH: "page", RelV: "page", OffsetX: x, OffsetY: y, WrapText: wrapText}
}

func dist(v int64) string {
	return strconv.FormatInt(v, 10)
}

// ImageRun returns run with drawing of asset of size cx by cy EMU.
func ImageRun(a *media.Asset, cx, cy int64, pl Placement) *etree.Element {
	r := etree.NewElement("w:r")
	drawing := r.CreateElement("w:drawing")

	var frame *etree.Element
	if pl.Anchor {
		frame = drawing.CreateElement("wp:anchor")
		frame.CreateAttr("distT", dist(pl.DistT))
		frame.CreateAttr("distB", dist(pl.DistB))
		frame.CreateAttr("distL", dist(pl.DistL))
		frame.CreateAttr("distR", dist(pl.DistR))
		frame.CreateAttr("simplePos", "0")
		frame.CreateAttr("relativeHeight", "0")
		frame.CreateAttr("behindDoc", "0")
		frame.CreateAttr("locked", "0")
		frame.CreateAttr("layoutInCell", "0")
		frame.CreateAttr("allowOverlap", "0")

		sp := frame.CreateElement("wp:simplePos")
		sp.CreateAttr("x", "0")
		sp.CreateAttr("y", "0")

		ph := frame.CreateElement("wp:positionH")
		ph.CreateAttr("relativeFrom", pl.RelH)
		if len(pl.AlignH) > 0 {
			ph.CreateElement("wp:align").SetText(pl.AlignH)
		} else {
			ph.CreateElement("wp:posOffset").SetText(dist(pl.OffsetX))
		}
		pv := frame.CreateElement("wp:positionV")
		pv.CreateAttr("relativeFrom", pl.RelV)
		pv.CreateElement("wp:posOffset").SetText(dist(pl.OffsetY))
	} else {
		frame = drawing.CreateElement("wp:inline")
		for _, k := range []string{"distT", "distB", "distL", "distR"} {
			frame.CreateAttr(k, "0")
		}
	}

	extent := frame.CreateElement("wp:extent")
	extent.CreateAttr("cx", dist(cx))
	extent.CreateAttr("cy", dist(cy))
	ee := frame.CreateElement("wp:effectExtent")
	for _, k := range []string{"l", "t", "r", "b"} {
		ee.CreateAttr(k, "0")
	}

	if pl.Anchor {
		if len(pl.WrapText) > 0 {
			frame.CreateElement("wp:wrapSquare").CreateAttr("wrapText", pl.WrapText)
		} else {
			frame.CreateElement("wp:wrapTopAndBottom")
		}
	}

	id := strconv.Itoa(a.ImageID)
	name := a.Alt
	if len(name) == 0 {
		name = "Image"
	}
	docPr := frame.CreateElement("wp:docPr")
	docPr.CreateAttr("id", id)
	docPr.CreateAttr("name", name)
	frame.CreateElement("wp:cNvGraphicFramePr").CreateElement("a:graphicFrameLocks").CreateAttr("noChangeAspect", "1")

	data := frame.CreateElement("a:graphic").CreateElement("a:graphicData")
	data.CreateAttr("uri", pictureURI)
	pic := data.CreateElement("pic:pic")
	nv := pic.CreateElement("pic:nvPicPr")
	cnv := nv.CreateElement("pic:cNvPr")
	cnv.CreateAttr("id", id)
	cnv.CreateAttr("name", name)
	nv.CreateElement("pic:cNvPicPr")

	fill := pic.CreateElement("pic:blipFill")
	fill.CreateElement("a:blip").CreateAttr("r:embed", a.RelID)
	fill.CreateElement("a:stretch").CreateElement("a:fillRect")

	xfrm := pic.CreateElement("pic:spPr")
	x := xfrm.CreateElement("a:xfrm")
	off := x.CreateElement("a:off")
	off.CreateAttr("x", "0")
	off.CreateAttr("y", "0")
	ext := x.CreateElement("a:ext")
	ext.CreateAttr("cx", dist(cx))
	ext.CreateAttr("cy", dist(cy))
	geom := xfrm.CreateElement("a:prstGeom")
	geom.CreateAttr("prst", "rect")
	geom.CreateElement("a:avLst")
	return r
}

// imagePixels resolves length of image side, percent is taken of reference.
func imagePixels(s string, reference float64) (float64, bool) {
	l, ok := units.ParseLength(s)
	if !ok || l.Value <= 0 {
		return 0, false
	}
	if l.Unit == units.UnitPercent {
		return reference * l.Value / 100, true
	}
	return l.Pixels(), true
}

// imageSize returns image size in pixels keeping intrinsic aspect ratio when
// only one side is known. Intrinsic size never exceeds text width.
func (t *Transducer) imageSize(rec style.Record, a *media.Asset) (float64, float64) {
	textPx := float64(t.textWidth()) / units.TwipsPerInch * units.PixelsPerInch
	w, wok := imagePixels(rec.Width.Value(), textPx)
	h, hok := imagePixels(rec.Height.Value(), textPx)
	intrinsic := a.Width > 0 && a.Height > 0
	ratio := 0.0
	if intrinsic {
		ratio = float64(a.Height) / float64(a.Width)
	}

	switch {
	case wok && hok:
	case wok:
		h = defaultImageHeight
		if intrinsic {
			h = w * ratio
		}
	case hok:
		w = defaultImageWidth
		if intrinsic {
			w = h / ratio
		}
	case intrinsic:
		w, h = float64(a.Width), float64(a.Height)
		if w > textPx {
			w, h = textPx, textPx*ratio
		}
	default:
		w, h = defaultImageWidth, defaultImageHeight
	}
	return w, h
}

// image resolves img element into run, nil when image is not available.
func (t *Transducer) image(ctx context.Context, n *html.Node, rec style.Record) *etree.Element {
	if t.media == nil {
		return nil
	}
	src, _ := attr(n, "src")
	alt, _ := attr(n, "alt")
	a := t.media.Resolve(ctx, src, alt, t.part)
	if a == nil {
		return nil
	}

	w, h := t.imageSize(rec, a)
	cx, cy := units.PixelsToEMU(w), units.PixelsToEMU(h)
	m := rec.Margin.Value()

	var pl Placement
	switch f := rec.Float.Value(); {
	case hasAttr(n, "data-section-header"):
		x := int64(t.geom.MarginLeft)*emuPerTwip + units.PixelsToEMU(m.Left)
		if hasAttr(n, "data-cover") {
			x = 0
			if pw := int64(t.geom.PageWidth) * emuPerTwip; pw > 0 {
				if cx > 0 {
					cy = cy * pw / cx
				}
				cx = pw
			}
		}
		y := int64(t.geom.MarginTop)*emuPerTwip + units.PixelsToEMU(m.Top)
		pl = PageAnchor(x, y, "")
	case f == style.FloatLeft || f == style.FloatRight:
		pl = Placement{
			Anchor:   true,
			DistT:    units.PixelsToEMU(m.Top),
			DistB:    units.PixelsToEMU(m.Bottom),
			DistL:    units.PixelsToEMU(m.Left),
			DistR:    units.PixelsToEMU(m.Right),
			RelH:     "column",
			RelV:     "paragraph",
			AlignH:   "left",
			WrapText: "right",
		}
		if f == style.FloatRight {
			pl.AlignH, pl.WrapText = "right", "left"
		}
	}
	return ImageRun(a, cx, cy, pl)
}

const emuPerTwip = units.EMUPerInch / units.TwipsPerInch
