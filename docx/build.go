// Package docx assembles WordprocessingML package from HTML markup.
package docx

import (
	"context"
	"fmt"
	"regexp"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"htmldocx/config"
	"htmldocx/markup"
	"htmldocx/media"
	"htmldocx/misc"
	"htmldocx/shape"
	"htmldocx/units"
)

// Deps carries collaborators of a single conversion. Zero value is usable:
// remote images are skipped and nothing is logged.
type Deps struct {
	Fetcher media.Fetcher
	Images  *config.ImagesConfig
	Workers int
	Timeout time.Duration
	FixZip  bool
	Log     *zap.Logger
	// for reproducible output
	Now func() time.Time
	ID  uuid.UUID
}

var pageNumberRe = regexp.MustCompile(`(?i)<page-number\b`)

// Convert transforms HTML into DOCX archive bytes.
func Convert(ctx context.Context, html string, opts config.ConversionOptions, deps Deps) ([]byte, error) {
	pkg, err := Build(ctx, html, opts, deps)
	if err != nil {
		return nil, err
	}
	if deps.FixZip {
		return pkg.FixedBytes()
	}
	return pkg.Bytes()
}

// Build transforms HTML into package. Options are sanitized on a copy.
func Build(ctx context.Context, html string, opts config.ConversionOptions, deps Deps) (pkg *Package, err error) {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("Conversion panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			pkg, err = nil, fmt.Errorf("unable to convert document: panic: %v", r)
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts = opts.Clone()
	opts.Sanitize(log)

	images := deps.Images
	if images == nil {
		images = &config.ImagesConfig{}
	}
	var mopts []media.Option
	if deps.Workers > 0 {
		mopts = append(mopts, media.WithWorkers(deps.Workers))
	}
	if deps.Timeout > 0 {
		mopts = append(mopts, media.WithTimeout(deps.Timeout))
	}

	b := &builder{
		opts: &opts,
		geom: NewGeometry(&opts),
		mgr:  media.NewManager(deps.Fetcher, images, log, mopts...),
		ids:  shape.NewCounter(),
		root: log,
		log:  log.Named("docx"),
	}
	b.log.Debug("Page geometry",
		zap.Int("width", b.geom.PageWidth), zap.Int("height", b.geom.PageHeight),
		zap.Bool("landscape", b.geom.Landscape))

	body, err := markup.NewTransducer(b.mgr, media.PartDocument, b.opts, b.geom.Geometry, b.ids, b.root).ProcessMarkup(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("unable to process document: %w", err)
	}
	header, err := b.header(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to process header: %w", err)
	}
	footer, err := b.footer(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to process footer: %w", err)
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	meta := Metadata{Title: opts.Title, Creator: opts.Creator, ID: deps.ID, Created: now()}
	if len(meta.Creator) == 0 {
		meta.Creator = misc.GetAppName()
	}
	if meta.ID == uuid.Nil {
		if meta.ID, err = uuid.NewV7(); err != nil {
			return nil, fmt.Errorf("unable to generate document id: %w", err)
		}
	}

	pkg, err = b.assemble(body.Elements(), header, footer, meta)
	if err != nil {
		return nil, err
	}
	b.log.Debug("Package assembled", zap.Int("parts", len(pkg.parts)), zap.Int("images", len(b.mgr.All())))
	return pkg, nil
}

type builder struct {
	opts *config.ConversionOptions
	geom Geometry
	mgr  *media.Manager
	ids  *shape.Counter
	// transducers name their own loggers
	root *zap.Logger
	log  *zap.Logger
}

// header returns header content, nil when document has no header. Page
// border lives in header so it repeats on every page.
func (b *builder) header(ctx context.Context) ([]*etree.Element, error) {
	if !b.opts.HeaderEnabled() && !b.opts.PageBorderEnabled() {
		return nil, nil
	}
	var els []*etree.Element
	if b.opts.HeaderEnabled() {
		var err error
		if els, err = b.partContent(ctx, media.PartHeader, b.opts.Header, b.opts.HeaderHeight.Float()); err != nil {
			return nil, err
		}
	}
	if b.opts.PageBorderEnabled() {
		pb := b.opts.PageBorder
		spec := shape.BorderSpec{
			Style:  pb.Style,
			Color:  pb.Color,
			Size:   pb.Size.Float(),
			Radius: pb.Radius.Float(),
		}
		if pb.MarginOffset != nil {
			off := pb.MarginOffset.Float()
			spec.MarginOffset = &off
		}
		els = append(els, shape.PageBorder(b.geom.Geometry, spec, b.ids))
	}
	return ensureParagraph(els), nil
}

// footer returns footer content, nil when document has no footer.
func (b *builder) footer(ctx context.Context) ([]*etree.Element, error) {
	if !b.opts.FooterEnabled() && !b.opts.EnablePageNumbers {
		return nil, nil
	}
	var els []*etree.Element
	if b.opts.FooterEnabled() {
		var err error
		if els, err = b.partContent(ctx, media.PartFooter, b.opts.Footer, b.opts.FooterHeight.Float()); err != nil {
			return nil, err
		}
	}
	if b.opts.EnablePageNumbers && !(b.opts.FooterEnabled() && pageNumberRe.MatchString(b.opts.Footer)) {
		els = append(els, markup.PageNumberParagraph(b.opts.PageNumberAlignment))
	}
	return ensureParagraph(els), nil
}

// partContent converts header or footer content: data URI image becomes full
// width image anchored to the page edge, anything else is markup.
func (b *builder) partContent(ctx context.Context, part media.Part, content string, heightIn float64) ([]*etree.Element, error) {
	if !media.IsDataURI(content) {
		body, err := markup.NewTransducer(b.mgr, part, b.opts, b.geom.Geometry, b.ids, b.root).ProcessMarkup(ctx, content)
		if err != nil {
			return nil, err
		}
		return body.Elements(), nil
	}

	name := "Header Image"
	if part == media.PartFooter {
		name = "Footer Image"
	}
	a := b.mgr.Resolve(ctx, content, name, part)
	if a == nil {
		return nil, nil
	}
	cx, cy := b.geom.PageWidthEMU(), units.InchesToEMU(heightIn)
	y := int64(0)
	if part == media.PartFooter {
		y = max(b.geom.PageHeightEMU()-cy, 0)
	}
	p := etree.NewElement("w:p")
	p.CreateElement("w:pPr").CreateElement("w:jc").CreateAttr("w:val", "center")
	p.AddChild(markup.ImageRun(a, cx, cy, markup.PageAnchor(0, y, "bothSides")))
	return []*etree.Element{p}, nil
}

// ensureParagraph makes sure header or footer is not empty, Word requires at
// least one paragraph.
func ensureParagraph(els []*etree.Element) []*etree.Element {
	if len(els) == 0 || els[len(els)-1].Tag != "p" {
		els = append(els, etree.NewElement("w:p"))
	}
	return els
}

func (b *builder) sectionProperties(header, footer bool) *etree.Element {
	g := b.geom
	sect := etree.NewElement("w:sectPr")
	if header {
		ref := sect.CreateElement("w:headerReference")
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", relHeader)
	}
	if footer {
		ref := sect.CreateElement("w:footerReference")
		ref.CreateAttr("w:type", "default")
		ref.CreateAttr("r:id", relFooter)
	}
	sz := sect.CreateElement("w:pgSz")
	sz.CreateAttr("w:w", strconv.Itoa(g.PageWidth))
	sz.CreateAttr("w:h", strconv.Itoa(g.PageHeight))
	if g.Landscape {
		sz.CreateAttr("w:orient", "landscape")
	}
	mar := sect.CreateElement("w:pgMar")
	for _, m := range []struct {
		name string
		v    int
	}{
		{"top", g.MarginTop}, {"right", g.MarginRight}, {"bottom", g.MarginBottom}, {"left", g.MarginLeft},
		{"header", g.MarginHeader}, {"footer", g.MarginFooter}, {"gutter", 0},
	} {
		mar.CreateAttr("w:"+m.name, strconv.Itoa(m.v))
	}
	sect.CreateElement("w:cols").CreateAttr("w:space", "720")
	sect.CreateElement("w:docGrid").CreateAttr("w:linePitch", "360")
	return sect
}

func storedExt(ext string) bool {
	switch ext {
	case "png", "jpeg", "jpg", "gif":
		return true
	}
	return false
}

func (b *builder) assemble(body, header, footer []*etree.Element, meta Metadata) (*Package, error) {
	pkg := newPackage(meta.Created)
	hasHeader, hasFooter := header != nil, footer != nil

	doc := newDocument()
	wbody := wordRoot(doc, "w:document").CreateElement("w:body")
	for _, el := range body {
		wbody.AddChild(el)
	}
	wbody.AddChild(b.sectionProperties(hasHeader, hasFooter))

	type xmlPart struct {
		name string
		doc  *etree.Document
	}
	parts := []xmlPart{
		{"[Content_Types].xml", contentTypesPart(b.mgr.Extensions(), hasHeader, hasFooter)},
		{"_rels/.rels", packageRelsPart()},
		{"word/document.xml", doc},
		{"word/_rels/document.xml.rels", documentRelsPart(b.mgr, hasHeader, hasFooter)},
		{"word/styles.xml", stylesPart(b.opts)},
		{"word/numbering.xml", numberingPart()},
		{"word/settings.xml", settingsPart()},
		{"word/fontTable.xml", fontTablePart(b.opts.FontFamily, "Courier New")},
		{"word/webSettings.xml", webSettingsPart()},
	}
	for _, hf := range []struct {
		on   bool
		part media.Part
		name string
		tag  string
		els  []*etree.Element
	}{
		{hasHeader, media.PartHeader, "header1.xml", "w:hdr", header},
		{hasFooter, media.PartFooter, "footer1.xml", "w:ftr", footer},
	} {
		if !hf.on {
			continue
		}
		d := newDocument()
		root := wordRoot(d, hf.tag)
		for _, el := range hf.els {
			root.AddChild(el)
		}
		parts = append(parts, xmlPart{"word/" + hf.name, d})
		if rels := mediaRelationships(b.mgr, hf.part); len(rels) > 0 {
			parts = append(parts, xmlPart{"word/_rels/" + hf.name + ".rels", relationshipsPart(rels)})
		}
	}
	parts = append(parts,
		xmlPart{"docProps/app.xml", appPart()},
		xmlPart{"docProps/core.xml", corePart(meta)},
	)

	for _, p := range parts {
		if err := pkg.addXML(p.name, p.doc); err != nil {
			return nil, err
		}
	}
	for _, a := range b.mgr.All() {
		pkg.Add(Part{Name: a.Name(), Data: a.Data, Store: storedExt(a.Ext)})
	}
	return pkg, nil
}
