package markup

import (
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"htmldocx/style"
)

const (
	monospaceFont  = "Courier New"
	hyperlinkStyle = "Hyperlink"
)

// runProperties builds w:rPr for record, nil when nothing is set.
func runProperties(rec style.Record, charStyle string) *etree.Element {
	rpr := etree.NewElement("w:rPr")
	if len(charStyle) > 0 {
		rpr.CreateElement("w:rStyle").CreateAttr("w:val", charStyle)
	}
	if f, ok := rec.FontFamily.Get(); ok && len(f) > 0 {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", f)
		fonts.CreateAttr("w:hAnsi", f)
		fonts.CreateAttr("w:cs", f)
	}
	if rec.Bold.Value() {
		rpr.CreateElement("w:b")
	}
	if rec.Italic.Value() {
		rpr.CreateElement("w:i")
	}
	if rec.Strike.Value() {
		rpr.CreateElement("w:strike")
	}
	if c, ok := rec.Color.Get(); ok {
		rpr.CreateElement("w:color").CreateAttr("w:val", c)
	}
	if sz, ok := rec.FontSize.Get(); ok && sz > 0 {
		rpr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(sz))
		rpr.CreateElement("w:szCs").CreateAttr("w:val", strconv.Itoa(sz))
	}
	if rec.Underline.Value() {
		rpr.CreateElement("w:u").CreateAttr("w:val", "single")
	}
	if c, ok := rec.Highlight.Get(); ok {
		shading(rpr, c)
	}
	switch rec.VertAlign.Value() {
	case "super":
		rpr.CreateElement("w:vertAlign").CreateAttr("w:val", "superscript")
	case "sub":
		rpr.CreateElement("w:vertAlign").CreateAttr("w:val", "subscript")
	}
	if len(rpr.Child) == 0 {
		return nil
	}
	return rpr
}

func shading(parent *etree.Element, fill string) {
	shd := parent.CreateElement("w:shd")
	shd.CreateAttr("w:val", "clear")
	shd.CreateAttr("w:color", "auto")
	shd.CreateAttr("w:fill", fill)
}

func newRun(rec style.Record, charStyle string) *etree.Element {
	r := etree.NewElement("w:r")
	if rpr := runProperties(rec, charStyle); rpr != nil {
		r.AddChild(rpr)
	}
	return r
}

// textRun creates run with text preserving spaces.
func textRun(text string, rec style.Record, charStyle string) *etree.Element {
	r := newRun(rec, charStyle)
	t := r.CreateElement("w:t")
	t.CreateAttr("xml:space", "preserve")
	t.SetText(text)
	return r
}

// preformattedRun keeps line breaks and tabs of text.
func preformattedRun(text string, rec style.Record, charStyle string) *etree.Element {
	r := newRun(rec, charStyle)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			r.CreateElement("w:br")
		}
		for j, chunk := range strings.Split(line, "\t") {
			if j > 0 {
				r.CreateElement("w:tab")
			}
			if len(chunk) == 0 {
				continue
			}
			t := r.CreateElement("w:t")
			t.CreateAttr("xml:space", "preserve")
			t.SetText(chunk)
		}
	}
	return r
}

func breakRun(rec style.Record) *etree.Element {
	r := newRun(rec, "")
	r.CreateElement("w:br")
	return r
}

func pageBreakRun() *etree.Element {
	r := etree.NewElement("w:r")
	r.CreateElement("w:br").CreateAttr("w:type", "page")
	return r
}

// pageNumberRuns produces PAGE field.
func pageNumberRuns(rec style.Record) []*etree.Element {
	fld := func(typ string) *etree.Element {
		r := newRun(rec, "")
		r.CreateElement("w:fldChar").CreateAttr("w:fldCharType", typ)
		return r
	}
	instr := newRun(rec, "")
	it := instr.CreateElement("w:instrText")
	it.CreateAttr("xml:space", "preserve")
	it.SetText(" PAGE ")

	return []*etree.Element{
		fld("begin"),
		instr,
		fld("separate"),
		textRun("1", rec, ""),
		fld("end"),
	}
}

// PageNumberParagraph is paragraph holding PAGE field with given alignment.
func PageNumberParagraph(align string) *etree.Element {
	p := etree.NewElement("w:p")
	if len(align) > 0 {
		p.CreateElement("w:pPr").CreateElement("w:jc").CreateAttr("w:val", align)
	}
	for _, r := range pageNumberRuns(style.Record{}) {
		p.AddChild(r)
	}
	return p
}
