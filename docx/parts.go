package docx

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"htmldocx/config"
	"htmldocx/media"
	"htmldocx/misc"
	"htmldocx/units"
)

const (
	nsW   = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsWP  = "http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
	nsA   = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPic = "http://schemas.openxmlformats.org/drawingml/2006/picture"
	nsV   = "urn:schemas-microsoft-com:vml"
	nsO   = "urn:schemas-microsoft-com:office:office"
	nsW10 = "urn:schemas-microsoft-com:office:word"

	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	nsRelationships = "http://schemas.openxmlformats.org/package/2006/relationships"

	relBase = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/"

	ctMain      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	ctWordPart  = "application/vnd.openxmlformats-officedocument.wordprocessingml."
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
	ctApp       = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
	ctCore      = "application/vnd.openxmlformats-package.core-properties+xml"
	ctXML       = "application/xml"
	listHanging = 360
)

// fixed relationship ids of document part, media and links start at rId100
const (
	relStyles      = "rId1"
	relNumbering   = "rId2"
	relSettings    = "rId3"
	relFontTable   = "rId4"
	relWebSettings = "rId5"
	relHeader      = "rId6"
	relFooter      = "rId7"
)

func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

// wordRoot creates root element carrying every namespace fragments may use.
func wordRoot(doc *etree.Document, tag string) *etree.Element {
	root := doc.CreateElement(tag)
	for _, ns := range [][2]string{
		{"w", nsW}, {"r", nsR}, {"wp", nsWP}, {"a", nsA}, {"pic", nsPic},
		{"v", nsV}, {"o", nsO}, {"w10", nsW10},
	} {
		root.CreateAttr("xmlns:"+ns[0], ns[1])
	}
	return root
}

func val(parent *etree.Element, tag, v string) *etree.Element {
	el := parent.CreateElement(tag)
	el.CreateAttr("w:val", v)
	return el
}

type relationship struct {
	id, typ, target string
	external        bool
}

func relationshipsPart(rels []relationship) *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", nsRelationships)
	for _, r := range rels {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", r.id)
		el.CreateAttr("Type", r.typ)
		el.CreateAttr("Target", r.target)
		if r.external {
			el.CreateAttr("TargetMode", "External")
		}
	}
	return doc
}

// mediaRelationships lists images and hyperlinks owned by part.
func mediaRelationships(mgr *media.Manager, part media.Part) []relationship {
	var rels []relationship
	for _, a := range mgr.Assets(part) {
		rels = append(rels, relationship{id: a.RelID, typ: relBase + "image", target: a.Target()})
	}
	for _, l := range mgr.Links(part) {
		rels = append(rels, relationship{id: l.RelID, typ: relBase + "hyperlink", target: l.Target, external: true})
	}
	return rels
}

func packageRelsPart() *etree.Document {
	return relationshipsPart([]relationship{
		{id: "rId1", typ: relBase + "officeDocument", target: "word/document.xml"},
		{id: "rId2", typ: "http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties", target: "docProps/core.xml"},
		{id: "rId3", typ: relBase + "extended-properties", target: "docProps/app.xml"},
	})
}

func documentRelsPart(mgr *media.Manager, header, footer bool) *etree.Document {
	rels := []relationship{
		{id: relStyles, typ: relBase + "styles", target: "styles.xml"},
		{id: relNumbering, typ: relBase + "numbering", target: "numbering.xml"},
		{id: relSettings, typ: relBase + "settings", target: "settings.xml"},
		{id: relFontTable, typ: relBase + "fontTable", target: "fontTable.xml"},
		{id: relWebSettings, typ: relBase + "webSettings", target: "webSettings.xml"},
	}
	if header {
		rels = append(rels, relationship{id: relHeader, typ: relBase + "header", target: "header1.xml"})
	}
	if footer {
		rels = append(rels, relationship{id: relFooter, typ: relBase + "footer", target: "footer1.xml"})
	}
	return relationshipsPart(append(rels, mediaRelationships(mgr, media.PartDocument)...))
}

func contentTypesPart(exts []string, header, footer bool) *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("Types")
	root.CreateAttr("xmlns", nsContentTypes)

	def := func(ext, ct string) {
		el := root.CreateElement("Default")
		el.CreateAttr("Extension", ext)
		el.CreateAttr("ContentType", ct)
	}
	over := func(name, ct string) {
		el := root.CreateElement("Override")
		el.CreateAttr("PartName", name)
		el.CreateAttr("ContentType", ct)
	}

	def("rels", ctRels)
	def("xml", ctXML)
	for _, ext := range exts {
		def(ext, media.ContentType(ext))
	}
	over("/word/document.xml", ctMain)
	over("/word/styles.xml", ctWordPart+"styles+xml")
	over("/word/numbering.xml", ctWordPart+"numbering+xml")
	over("/word/settings.xml", ctWordPart+"settings+xml")
	over("/word/fontTable.xml", ctWordPart+"fontTable+xml")
	over("/word/webSettings.xml", ctWordPart+"webSettings+xml")
	if header {
		over("/word/header1.xml", ctWordPart+"header+xml")
	}
	if footer {
		over("/word/footer1.xml", ctWordPart+"footer+xml")
	}
	over("/docProps/app.xml", ctApp)
	over("/docProps/core.xml", ctCore)
	return doc
}

// heading font sizes, half-points
var headingSizes = [...]int{32, 26, 24, 22, 20, 18}

func runFonts(parent *etree.Element, family string) {
	f := parent.CreateElement("w:rFonts")
	f.CreateAttr("w:ascii", family)
	f.CreateAttr("w:hAnsi", family)
	f.CreateAttr("w:eastAsia", family)
	f.CreateAttr("w:cs", family)
}

func fontSize(parent *etree.Element, hp int) {
	val(parent, "w:sz", strconv.Itoa(hp))
	val(parent, "w:szCs", strconv.Itoa(hp))
}

func stylesPart(opts *config.ConversionOptions) *etree.Document {
	doc := newDocument()
	root := wordRoot(doc, "w:styles")

	size := units.Round(opts.FontSize.Float() * 2)
	line := strconv.Itoa(units.Round(opts.LineHeight.Float() * 240))

	defaults := root.CreateElement("w:docDefaults")
	rpr := defaults.CreateElement("w:rPrDefault").CreateElement("w:rPr")
	runFonts(rpr, opts.FontFamily)
	fontSize(rpr, size)
	val(rpr, "w:lang", "en-US")
	spacing := defaults.CreateElement("w:pPrDefault").CreateElement("w:pPr").CreateElement("w:spacing")
	spacing.CreateAttr("w:after", "160")
	spacing.CreateAttr("w:line", line)
	spacing.CreateAttr("w:lineRule", "auto")

	style := func(typ, id, name string) *etree.Element {
		s := root.CreateElement("w:style")
		s.CreateAttr("w:type", typ)
		s.CreateAttr("w:styleId", id)
		val(s, "w:name", name)
		return s
	}

	normal := style("paragraph", "Normal", "Normal")
	normal.CreateAttr("w:default", "1")
	normal.CreateElement("w:qFormat")

	for i, hp := range headingSizes {
		level := strconv.Itoa(i + 1)
		h := style("paragraph", "Heading"+level, "heading "+level)
		val(h, "w:basedOn", "Normal")
		val(h, "w:next", "Normal")
		h.CreateElement("w:qFormat")
		ppr := h.CreateElement("w:pPr")
		ppr.CreateElement("w:keepNext")
		sp := ppr.CreateElement("w:spacing")
		sp.CreateAttr("w:before", "240")
		sp.CreateAttr("w:after", "120")
		val(ppr, "w:outlineLvl", strconv.Itoa(i))
		hr := h.CreateElement("w:rPr")
		hr.CreateElement("w:b")
		fontSize(hr, hp)
	}

	link := style("character", "Hyperlink", "Hyperlink")
	val(link, "w:uiPriority", "99")
	lr := link.CreateElement("w:rPr")
	val(lr, "w:color", "0563C1")
	val(lr, "w:u", "single")

	grid := style("table", "TableGrid", "Table Grid")
	val(grid, "w:basedOn", "TableNormal")
	gp := grid.CreateElement("w:pPr").CreateElement("w:spacing")
	gp.CreateAttr("w:after", "0")
	gp.CreateAttr("w:line", "240")
	gp.CreateAttr("w:lineRule", "auto")
	borders := grid.CreateElement("w:tblPr").CreateElement("w:tblBorders")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		b := val(borders, "w:"+side, "single")
		b.CreateAttr("w:sz", "4")
		b.CreateAttr("w:space", "0")
		b.CreateAttr("w:color", "auto")
	}

	normalTable := style("table", "TableNormal", "Normal Table")
	normalTable.CreateAttr("w:default", "1")
	normalTable.CreateElement("w:semiHidden")
	mar := normalTable.CreateElement("w:tblPr").CreateElement("w:tblCellMar")
	for _, side := range []struct{ name, w string }{{"top", "0"}, {"left", "108"}, {"bottom", "0"}, {"right", "108"}} {
		m := mar.CreateElement("w:" + side.name)
		m.CreateAttr("w:w", side.w)
		m.CreateAttr("w:type", "dxa")
	}
	return doc
}

var (
	bulletLevels  = [...][2]string{{"bullet", "•"}, {"bullet", "◦"}, {"bullet", "▪"}}
	decimalLevels = [...][2]string{{"decimal", "%1."}, {"lowerLetter", "%2."}, {"lowerRoman", "%3."}}
)

func numberingPart() *etree.Document {
	doc := newDocument()
	root := wordRoot(doc, "w:numbering")

	abstract := func(id int, nsid string, levels [3][2]string) {
		an := root.CreateElement("w:abstractNum")
		an.CreateAttr("w:abstractNumId", strconv.Itoa(id))
		val(an, "w:nsid", nsid)
		val(an, "w:multiLevelType", "hybridMultilevel")
		for i, l := range levels {
			lvl := an.CreateElement("w:lvl")
			lvl.CreateAttr("w:ilvl", strconv.Itoa(i))
			val(lvl, "w:start", "1")
			val(lvl, "w:numFmt", l[0])
			val(lvl, "w:lvlText", l[1])
			val(lvl, "w:lvlJc", "left")
			ind := lvl.CreateElement("w:pPr").CreateElement("w:ind")
			ind.CreateAttr("w:left", strconv.Itoa(720*(i+1)))
			ind.CreateAttr("w:hanging", strconv.Itoa(listHanging))
		}
	}
	abstract(0, "1B2C3D4E", bulletLevels)
	abstract(1, "2B3C4D5E", decimalLevels)

	for numID, abstractID := range []int{0, 1} {
		num := root.CreateElement("w:num")
		num.CreateAttr("w:numId", strconv.Itoa(numID+1))
		val(num, "w:abstractNumId", strconv.Itoa(abstractID))
	}
	return doc
}

func settingsPart() *etree.Document {
	doc := newDocument()
	root := wordRoot(doc, "w:settings")
	zoom := root.CreateElement("w:zoom")
	zoom.CreateAttr("w:percent", "100")
	val(root, "w:defaultTabStop", "720")
	val(root, "w:characterSpacingControl", "doNotCompress")
	cs := root.CreateElement("w:compat").CreateElement("w:compatSetting")
	cs.CreateAttr("w:name", "compatibilityMode")
	cs.CreateAttr("w:uri", "http://schemas.microsoft.com/office/word")
	cs.CreateAttr("w:val", "15")
	return doc
}

func fontTablePart(families ...string) *etree.Document {
	doc := newDocument()
	root := wordRoot(doc, "w:fonts")
	seen := make(map[string]bool)
	for _, f := range families {
		if len(f) == 0 || seen[f] {
			continue
		}
		seen[f] = true
		font := root.CreateElement("w:font")
		font.CreateAttr("w:name", f)
		val(font, "w:charset", "00")
		val(font, "w:family", "auto")
		val(font, "w:pitch", "variable")
	}
	return doc
}

func webSettingsPart() *etree.Document {
	doc := newDocument()
	root := wordRoot(doc, "w:webSettings")
	root.CreateElement("w:optimizeForBrowser")
	root.CreateElement("w:allowPNG")
	return doc
}

func appPart() *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("Properties")
	root.CreateAttr("xmlns", "http://schemas.openxmlformats.org/officeDocument/2006/extended-properties")
	root.CreateAttr("xmlns:vt", "http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes")
	root.CreateElement("Application").SetText(misc.GetAppName())
	root.CreateElement("AppVersion").SetText(appVersion())
	return doc
}

// appVersion formats version as XX.YYYY which is the only form Word accepts.
func appVersion() string {
	var major, minor int
	if _, err := fmt.Sscanf(misc.GetVersion(), "%d.%d", &major, &minor); err != nil {
		return "1.0000"
	}
	return fmt.Sprintf("%d.%04d", major, minor)
}

// Metadata goes to core properties part.
type Metadata struct {
	Title   string
	Creator string
	ID      uuid.UUID
	Created time.Time
}

func corePart(meta Metadata) *etree.Document {
	doc := newDocument()
	root := doc.CreateElement("cp:coreProperties")
	root.CreateAttr("xmlns:cp", "http://schemas.openxmlformats.org/package/2006/metadata/core-properties")
	root.CreateAttr("xmlns:dc", "http://purl.org/dc/elements/1.1/")
	root.CreateAttr("xmlns:dcterms", "http://purl.org/dc/terms/")
	root.CreateAttr("xmlns:dcmitype", "http://purl.org/dc/dcmitype/")
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")

	if len(meta.Title) > 0 {
		root.CreateElement("dc:title").SetText(meta.Title)
	}
	root.CreateElement("dc:creator").SetText(meta.Creator)
	root.CreateElement("cp:lastModifiedBy").SetText(meta.Creator)
	if meta.ID != uuid.Nil {
		root.CreateElement("dc:identifier").SetText(meta.ID.URN())
	}
	stamp := meta.Created.UTC().Format(time.RFC3339)
	for _, tag := range []string{"dcterms:created", "dcterms:modified"} {
		el := root.CreateElement(tag)
		el.CreateAttr("xsi:type", "dcterms:W3CDTF")
		el.SetText(stamp)
	}
	return doc
}
