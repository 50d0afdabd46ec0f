package markup

import (
	"context"
	"errors"
	"strings"
	"testing"

	"htmldocx/config"
	"htmldocx/media"
)

func TestProcessMarkup_Paragraphs(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			"plain and bold",
			"<p>Hello <strong>world</strong></p>",
			`<w:p><w:r><w:t xml:space="preserve">Hello </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">world</w:t></w:r></w:p>`,
		},
		{
			"collapsed whitespace",
			"<p>  a\n   b  </p>",
			`<w:p><w:r><w:t xml:space="preserve">a b</w:t></w:r></w:p>`,
		},
		{
			"alignment",
			`<p style="text-align:center">a</p>`,
			`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t xml:space="preserve">a</w:t></w:r></w:p>`,
		},
		{
			"span formatting",
			`<p><span style="color:red;font-size:12pt;font-family:'Arial'">x</span></p>`,
			`<w:p><w:r><w:rPr><w:rFonts w:ascii="Arial" w:hAnsi="Arial" w:cs="Arial"/><w:color w:val="FF0000"/><w:sz w:val="24"/><w:szCs w:val="24"/></w:rPr><w:t xml:space="preserve">x</w:t></w:r></w:p>`,
		},
		{
			"font tag",
			`<p><font size="7" color="#00f">x</font></p>`,
			`<w:p><w:r><w:rPr><w:color w:val="0000FF"/><w:sz w:val="72"/><w:szCs w:val="72"/></w:rPr><w:t xml:space="preserve">x</w:t></w:r></w:p>`,
		},
		{
			"nested emphasis",
			"<p><b><i>x</i></b></p>",
			`<w:p><w:r><w:rPr><w:b/><w:i/></w:rPr><w:t xml:space="preserve">x</w:t></w:r></w:p>`,
		},
		{
			"line break",
			"<p>a<br>b</p>",
			`<w:p><w:r><w:t xml:space="preserve">a</w:t></w:r><w:r><w:br/></w:r><w:r><w:t xml:space="preserve">b</w:t></w:r></w:p>`,
		},
		{
			"lone break",
			"<br>",
			`<w:p/>`,
		},
		{
			"empty paragraph",
			"<p></p>",
			`<w:p/>`,
		},
		{
			"no spacing",
			`<p data-no-spacing>a</p>`,
			`<w:p><w:pPr><w:spacing w:before="0" w:after="0" w:line="240" w:lineRule="auto"/></w:pPr><w:r><w:t xml:space="preserve">a</w:t></w:r></w:p>`,
		},
		{
			"horizontal rule",
			"<hr>",
			`<w:p><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="auto"/></w:pBdr></w:pPr></w:p>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransducer(t, nil)
			if got := string(process(t, tr, tt.markup).Bytes()); got != tt.want {
				t.Errorf("ProcessMarkup() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestProcessMarkup_Inline(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   []string
	}{
		{"italic", "<p><em>a</em><cite>b</cite></p>", []string{"<w:i/>"}},
		{"underline", "<p><u>a</u></p>", []string{`<w:u w:val="single"/>`}},
		{"strike", "<p><del>a</del></p>", []string{"<w:strike/>"}},
		{"superscript", "<p><sup>2</sup></p>", []string{`<w:vertAlign w:val="superscript"/>`}},
		{"subscript", "<p><sub>2</sub></p>", []string{`<w:vertAlign w:val="subscript"/>`}},
		{"code", "<p><code>x</code></p>", []string{`w:ascii="Courier New"`}},
		{"mark", "<p><mark>x</mark></p>", []string{`w:fill="FFFF00"`}},
		{"small", "<p><small>x</small></p>", []string{`<w:sz w:val="18"/>`}},
		{"big", "<p><big>x</big></p>", []string{`<w:sz w:val="26"/>`}},
		{"background", `<p><span style="background-color:#ccc">x</span></p>`, []string{`w:fill="CCCCCC"`}},
		{"page number", "<p>Page <page-number></page-number></p>", []string{`w:fldCharType="begin"`, "> PAGE <", `w:fldCharType="end"`}},
		{"inline page break", "<p>a<page-break></page-break>b</p>", []string{`<w:br w:type="page"/>`}},
		{"escaped text", "<p>a &amp; b &lt;c&gt;</p>", []string{"a &amp; b &lt;c&gt;"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransducer(t, nil)
			got := string(process(t, tr, tt.markup).Bytes())
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ProcessMarkup() = %s, want it to contain %s", got, w)
				}
			}
		})
	}
}

func TestProcessMarkup_Hyperlinks(t *testing.T) {
	tr, mgr := newTestTransducer(t, nil)
	body := process(t, tr, `<p><a href="https://example.com">x</a> and <a href="#local">y</a></p>`)
	if len(body) != 1 {
		t.Fatalf("ProcessMarkup() fragments = %d, want 1", len(body))
	}
	p := body[0].Element()
	if got := attrOf(t, p, "w:hyperlink", "r:id"); got != "rId100" {
		t.Errorf("hyperlink r:id = %q, want rId100", got)
	}
	if got := attrOf(t, p, "w:hyperlink/w:r/w:rPr/w:rStyle", "w:val"); got != "Hyperlink" {
		t.Errorf("hyperlink rStyle = %q, want Hyperlink", got)
	}
	if n := len(p.FindElements("w:hyperlink")); n != 1 {
		t.Errorf("hyperlinks = %d, want 1", n)
	}
	if !strings.Contains(body[0].String(), ">y<") {
		t.Errorf("local link text missing: %s", body[0])
	}
	links := mgr.Links(media.PartDocument)
	if len(links) != 1 || links[0].Target != "https://example.com" {
		t.Errorf("Links() = %+v, want single link to https://example.com", links)
	}
}

func TestProcessMarkup_Headings(t *testing.T) {
	tr, _ := newTestTransducer(t, nil)
	body := process(t, tr, "<h1>One</h1><h6>Six</h6>")
	if len(body) != 2 {
		t.Fatalf("ProcessMarkup() fragments = %d, want 2", len(body))
	}
	for i, want := range []string{"Heading1", "Heading6"} {
		if got := attrOf(t, body[i].Element(), "w:pPr/w:pStyle", "w:val"); got != want {
			t.Errorf("heading %d style = %q, want %q", i, got, want)
		}
	}
}

func TestProcessMarkup_HeadingReplacement(t *testing.T) {
	opts := config.DefaultOptions()
	opts.HeadingReplacements = []string{
		`<div data-h1 style="color:#ff0000"><p data-no-spacing>Chapter: HEADING_TEXT</p></div>`,
	}
	tr, _ := newTestTransducer(t, &opts)
	body := process(t, tr, "<h1>A &amp;  <em>B</em></h1><h2>Plain</h2>")
	if len(body) != 2 {
		t.Fatalf("ProcessMarkup() fragments = %d, want 2", len(body))
	}

	got := body[0].String()
	for _, want := range []string{`<w:color w:val="FF0000"/>`, "Chapter: A &amp; B", `w:line="240"`} {
		if !strings.Contains(got, want) {
			t.Errorf("replaced heading = %s, want it to contain %s", got, want)
		}
	}
	if strings.Contains(got, "Heading1") {
		t.Errorf("replaced heading = %s, must not carry heading style", got)
	}
	if got := attrOf(t, body[1].Element(), "w:pPr/w:pStyle", "w:val"); got != "Heading2" {
		t.Errorf("second heading style = %q, want Heading2", got)
	}
}

func TestProcessMarkup_HeadingTemplateWithHeading(t *testing.T) {
	opts := config.DefaultOptions()
	opts.HeadingReplacements = []string{`<div data-h1><h1>Title: HEADING_TEXT</h1></div>`}
	tr, _ := newTestTransducer(t, &opts)
	body := process(t, tr, "<h1>X</h1>")
	if len(body) != 1 {
		t.Fatalf("ProcessMarkup() fragments = %d, want 1: %s", len(body), body.Bytes())
	}
	p := body[0].Element()
	if got := attrOf(t, p, "w:pPr/w:pStyle", "w:val"); got != "Heading1" {
		t.Errorf("heading style = %q, want Heading1", got)
	}
	var text strings.Builder
	for _, el := range p.FindElements(".//w:t") {
		text.WriteString(el.Text())
	}
	if got := text.String(); got != "Title: X" {
		t.Errorf("heading text = %q, want %q", got, "Title: X")
	}
}

func TestProcessMarkup_Lists(t *testing.T) {
	tr, _ := newTestTransducer(t, nil)
	body := process(t, tr, `<ul><li>a<ul><li>b<ul><li>c<ul><li>d</li></ul></li></ul></li></ul></li></ul><ol><li><p>e</p><p>f</p></li><li></li></ol>`)

	want := []struct {
		num, ilvl string
	}{
		{"1", "0"}, {"1", "1"}, {"1", "2"}, {"1", "2"}, {"2", "0"}, {"", ""}, {"2", "0"},
	}
	if len(body) != len(want) {
		t.Fatalf("ProcessMarkup() fragments = %d, want %d: %s", len(body), len(want), body.Bytes())
	}
	for i, w := range want {
		p := body[i].Element()
		num := p.FindElement("w:pPr/w:numPr/w:numId")
		if len(w.num) == 0 {
			if num != nil {
				t.Errorf("paragraph %d is numbered, want plain", i)
			}
			if got := attrOf(t, p, "w:pPr/w:ind", "w:left"); got != "720" {
				t.Errorf("paragraph %d indent = %q, want 720", i, got)
			}
			continue
		}
		if num == nil {
			t.Errorf("paragraph %d is not numbered", i)
			continue
		}
		if got := num.SelectAttrValue("w:val", ""); got != w.num {
			t.Errorf("paragraph %d numId = %q, want %q", i, got, w.num)
		}
		if got := attrOf(t, p, "w:pPr/w:numPr/w:ilvl", "w:val"); got != w.ilvl {
			t.Errorf("paragraph %d ilvl = %q, want %q", i, got, w.ilvl)
		}
	}
}

func TestProcessMarkup_Table(t *testing.T) {
	tr, _ := newTestTransducer(t, nil)
	body := process(t, tr, `<table style="width:50%">
<thead><tr><th style="width:25%">a</th><th>b</th></tr></thead>
<tbody><tr><td colspan="2" style="background:#eee;padding:4px;vertical-align:middle">c</td></tr>
<tr><td><table><tr><td>x</td></tr></table></td><td></td></tr></tbody>
</table>`)
	if len(body) != 1 || body[0].Kind() != KindTable {
		t.Fatalf("ProcessMarkup() = %d fragments, want single table", len(body))
	}
	tbl := body[0].Element()

	if got := attrOf(t, tbl, "w:tblPr/w:tblW", "w:w"); got != "2500" {
		t.Errorf("tblW = %q, want 2500", got)
	}
	if got := attrOf(t, tbl, "w:tblPr/w:tblW", "w:type"); got != "pct" {
		t.Errorf("tblW type = %q, want pct", got)
	}
	cols := tbl.FindElements("w:tblGrid/w:gridCol")
	if len(cols) != 2 {
		t.Fatalf("grid columns = %d, want 2", len(cols))
	}
	for i, want := range []string{"2257", "2256"} {
		if got := cols[i].SelectAttrValue("w:w", ""); got != want {
			t.Errorf("gridCol[%d] = %q, want %q", i, got, want)
		}
	}

	rows := tbl.FindElements("w:tr")
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].FindElement("w:tc/w:p/w:r/w:rPr/w:b") == nil {
		t.Error("header cell is not bold")
	}
	span := rows[1].FindElement("w:tc/w:tcPr")
	if got := attrOf(t, span, "w:gridSpan", "w:val"); got != "2" {
		t.Errorf("gridSpan = %q, want 2", got)
	}
	if got := attrOf(t, span, "w:tcW", "w:w"); got != "4513" {
		t.Errorf("spanned tcW = %q, want 4513", got)
	}
	if got := attrOf(t, span, "w:shd", "w:fill"); got != "EEEEEE" {
		t.Errorf("cell shading = %q, want EEEEEE", got)
	}
	if got := attrOf(t, span, "w:tcMar/w:top", "w:w"); got != "60" {
		t.Errorf("cell margin = %q, want 60", got)
	}
	if got := attrOf(t, span, "w:vAlign", "w:val"); got != "center" {
		t.Errorf("vAlign = %q, want center", got)
	}

	cells := rows[2].FindElements("w:tc")
	if len(cells) != 2 {
		t.Fatalf("last row cells = %d, want 2", len(cells))
	}
	// nested table must be followed by paragraph, empty cell gets one
	for i, c := range cells {
		kids := c.ChildElements()
		if last := kids[len(kids)-1]; last.Tag != "p" {
			t.Errorf("cell %d ends with %s, want paragraph", i, last.Tag)
		}
	}
	if cells[0].FindElement("w:tbl") == nil {
		t.Error("nested table is missing")
	}
}

func TestProcessMarkup_TableGridFirstRow(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{
			"style widths",
			`<table>
<tr><td style="width:86px">a</td><td style="width:86px">b</td><td style="width:100px">c</td><td style="width:295px">d</td></tr>
<tr><td style="width:300px">e</td><td style="width:10px">f</td><td>g</td><td style="width:50px">h</td></tr>
<tr><td>i</td><td>j</td><td style="width:400px">k</td><td>l</td></tr>
</table>`,
		},
		{
			"attribute widths",
			`<table>
<tr><td width="86">a</td><td width="86">b</td><td width="100">c</td><td width="295">d</td></tr>
<tr><td width="300">e</td><td width="10">f</td><td>g</td><td width="50">h</td></tr>
<tr><td>i</td><td>j</td><td width="400">k</td><td>l</td></tr>
</table>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransducer(t, nil)
			body := process(t, tr, tt.markup)
			if len(body) != 1 || body[0].Kind() != KindTable {
				t.Fatalf("ProcessMarkup() = %d fragments, want single table", len(body))
			}
			var got []string
			for _, c := range body[0].Element().FindElements("w:tblGrid/w:gridCol") {
				got = append(got, c.SelectAttrValue("w:w", ""))
			}
			if g, want := strings.Join(got, ","), "1290,1290,1500,4425"; g != want {
				t.Errorf("grid = %s, want %s", g, want)
			}
		})
	}
}

func TestProcessMarkup_PageBreaks(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		breaks []bool
	}{
		{"before", `<p style="page-break-before:always">a</p>`, []bool{true, false}},
		{"after", `<p style="break-after:page">a</p>`, []bool{false, true}},
		{"attribute", `<div data-page-break><p>a</p></div>`, []bool{true, false}},
		{"element", `<p>a</p><page-break></page-break><p>b</p>`, []bool{false, true, false}},
		{"self closed element", `<p>a</p><page-break/><p>b</p>`, []bool{false, true, false}},
		{"table", `<table style="page-break-before:always"><tr><td>a</td></tr></table>`, []bool{true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransducer(t, nil)
			body := process(t, tr, tt.markup)
			if len(body) != len(tt.breaks) {
				t.Fatalf("ProcessMarkup() fragments = %d, want %d: %s", len(body), len(tt.breaks), body.Bytes())
			}
			for i, want := range tt.breaks {
				got := body[i].Kind() == KindParagraph && body[i].Element().FindElement("w:r/w:br[@w:type='page']") != nil
				if got != want {
					t.Errorf("fragment %d page break = %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestProcessMarkup_Blocks(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		count  int
		want   []string
	}{
		{"hidden", `<p style="display:none">x</p><p>y</p>`, 1, []string{">y<"}},
		{"skipped", `<noscript>x</noscript><template><p>t</p></template><p>y</p>`, 1, []string{">y<"}},
		{"blockquote", "<blockquote>q</blockquote>", 1, []string{`<w:ind w:left="720"/>`}},
		{"nested indent", `<blockquote><div style="margin-left:10px">q</div></blockquote>`, 1, []string{`<w:ind w:left="870"/>`}},
		{"preformatted", "<pre>a\n\tb</pre>", 1, []string{"<w:tab/>", "<w:br/>", `w:ascii="Courier New"`}},
		{"container text", "<div>a<p>b</p>c</div>", 3, nil},
		{"container background", `<div style="background:#eee">a</div>`, 1, []string{`w:fill="EEEEEE"`}},
		{"unknown element with blocks", "<custom-box><p>a</p><p>b</p></custom-box>", 2, nil},
		{"definition list", "<dl><dt>t</dt><dd>d</dd></dl>", 2, []string{`<w:ind w:left="720"/>`}},
		{"bordered paragraph", `<p style="border:2px dashed #f00">a</p>`, 1, []string{`<w:top w:val="dashed" w:sz="12" w:space="0" w:color="FF0000"/>`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _ := newTestTransducer(t, nil)
			body := process(t, tr, tt.markup)
			if len(body) != tt.count {
				t.Fatalf("ProcessMarkup() fragments = %d, want %d: %s", len(body), tt.count, body.Bytes())
			}
			got := string(body.Bytes())
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("ProcessMarkup() = %s, want it to contain %s", got, w)
				}
			}
		})
	}
}

func TestProcessMarkup_DecoratedBox(t *testing.T) {
	tr, _ := newTestTransducer(t, nil)
	plain := process(t, tr, `<div style="color:#123456"><p>Boxed <b>text</b></p></div>`)
	body := process(t, tr, `<div style="background:#eee;padding:10px;border-radius:8px;color:#123456"><p>Boxed <b>text</b></p><div style="background:#ddd;padding:5px">inner</div></div>`)
	if len(body) != 1 {
		t.Fatalf("ProcessMarkup() fragments = %d, want 1", len(body))
	}
	box := body[0].Element()
	rect := box.FindElement("w:r/w:pict/v:roundrect")
	if rect == nil {
		t.Fatalf("roundrect missing: %s", body[0])
	}
	if got := rect.SelectAttrValue("fillcolor", ""); got != "#EEEEEE" {
		t.Errorf("fillcolor = %q, want #EEEEEE", got)
	}
	content := rect.FindElement("v:textbox/w:txbxContent")
	if content == nil {
		t.Fatal("txbxContent missing")
	}
	ps := content.ChildElements()
	if len(ps) != 2 {
		t.Fatalf("box paragraphs = %d, want 2", len(ps))
	}
	// runs inside the box are identical to plain rendering
	if got, want := elementString(ps[0]), plain[0].String(); got != want {
		t.Errorf("boxed paragraph = %s, want %s", got, want)
	}
	// nested decorated block is not boxed again
	if ps[1].FindElement("w:r/w:pict") != nil {
		t.Error("nested box rendered as text box")
	}
}

func TestProcessMarkup_Images(t *testing.T) {
	src := pngDataURI(t, 4, 2)

	t.Run("inline intrinsic", func(t *testing.T) {
		tr, mgr := newTestTransducer(t, nil)
		body := process(t, tr, `<p><img src="`+src+`" alt="dot"></p>`)
		if len(body) != 1 {
			t.Fatalf("ProcessMarkup() fragments = %d, want 1", len(body))
		}
		p := body[0].Element()
		inline := p.FindElement("w:r/w:drawing/wp:inline")
		if inline == nil {
			t.Fatalf("inline drawing missing: %s", body[0])
		}
		if got := attrOf(t, inline, "wp:extent", "cx"); got != "38100" {
			t.Errorf("extent cx = %q, want 38100", got)
		}
		if got := attrOf(t, inline, "wp:docPr", "name"); got != "dot" {
			t.Errorf("docPr name = %q, want dot", got)
		}
		if got := attrOf(t, inline, "a:graphic/a:graphicData/pic:pic/pic:blipFill/a:blip", "r:embed"); got != "rId100" {
			t.Errorf("blip embed = %q, want rId100", got)
		}
		if assets := mgr.Assets(media.PartDocument); len(assets) != 1 {
			t.Errorf("Assets() = %d, want 1", len(assets))
		}
	})

	t.Run("width keeps ratio", func(t *testing.T) {
		tr, _ := newTestTransducer(t, nil)
		body := process(t, tr, `<p><img style="width:100px" src="`+src+`"></p>`)
		ext := body[0].Element().FindElement("w:r/w:drawing/wp:inline/wp:extent")
		if cx, cy := ext.SelectAttrValue("cx", ""), ext.SelectAttrValue("cy", ""); cx != "952500" || cy != "476250" {
			t.Errorf("extent = %s x %s, want 952500 x 476250", cx, cy)
		}
	})

	t.Run("float right", func(t *testing.T) {
		tr, _ := newTestTransducer(t, nil)
		body := process(t, tr, `<p><img style="float:right;margin:10px" width="40" height="20" src="`+src+`">text</p>`)
		anchor := body[0].Element().FindElement("w:r/w:drawing/wp:anchor")
		if anchor == nil {
			t.Fatalf("anchor missing: %s", body[0])
		}
		if got := anchor.SelectAttrValue("distT", ""); got != "95250" {
			t.Errorf("distT = %q, want 95250", got)
		}
		if got := anchor.FindElement("wp:positionH/wp:align").Text(); got != "right" {
			t.Errorf("align = %q, want right", got)
		}
		if got := attrOf(t, anchor, "wp:wrapSquare", "wrapText"); got != "left" {
			t.Errorf("wrapText = %q, want left", got)
		}
		if got := attrOf(t, anchor, "wp:positionV", "relativeFrom"); got != "paragraph" {
			t.Errorf("positionV relativeFrom = %q, want paragraph", got)
		}
	})

	t.Run("section cover", func(t *testing.T) {
		tr, _ := newTestTransducer(t, nil)
		body := process(t, tr, `<img data-section-header data-cover src="`+src+`">`)
		anchor := body[0].Element().FindElement("w:r/w:drawing/wp:anchor")
		if anchor == nil {
			t.Fatalf("anchor missing: %s", body[0])
		}
		if got := anchor.FindElement("wp:positionH/wp:posOffset").Text(); got != "0" {
			t.Errorf("x offset = %q, want 0", got)
		}
		if got := anchor.FindElement("wp:positionV/wp:posOffset").Text(); got != "914400" {
			t.Errorf("y offset = %q, want 914400", got)
		}
		if got := attrOf(t, anchor, "wp:extent", "cx"); got != "7560310" {
			t.Errorf("extent cx = %q, want 7560310", got)
		}
		if anchor.FindElement("wp:wrapTopAndBottom") == nil {
			t.Error("wrapTopAndBottom missing")
		}
	})

	t.Run("section header", func(t *testing.T) {
		tr, _ := newTestTransducer(t, nil)
		body := process(t, tr, `<img data-section-header style="margin-left:10px" src="`+src+`">`)
		anchor := body[0].Element().FindElement("w:r/w:drawing/wp:anchor")
		if got := anchor.FindElement("wp:positionH/wp:posOffset").Text(); got != "1009650" {
			t.Errorf("x offset = %q, want 1009650", got)
		}
	})

	t.Run("unavailable", func(t *testing.T) {
		tr, _ := newTestTransducer(t, nil)
		if body := process(t, tr, `<p><img src="images/missing.png"></p>`); len(body) != 1 || body[0].Element().FindElement("w:r/w:drawing") != nil {
			t.Errorf("ProcessMarkup() = %s, want empty paragraph", body.Bytes())
		}
	})
}

func TestProcessMarkup_Canceled(t *testing.T) {
	tr, _ := newTestTransducer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := tr.ProcessMarkup(ctx, "<p>a</p>"); !errors.Is(err, context.Canceled) {
		t.Errorf("ProcessMarkup() error = %v, want context.Canceled", err)
	}
}

func TestImageRun_PageAnchor(t *testing.T) {
	a := &media.Asset{RelID: "rId7", ImageID: 3}
	r := ImageRun(a, 100, 50, PageAnchor(0, 42, "bothSides"))
	anchor := r.FindElement("w:drawing/wp:anchor")
	if anchor == nil {
		t.Fatal("anchor missing")
	}
	if got := attrOf(t, anchor, "wp:positionH", "relativeFrom"); got != "page" {
		t.Errorf("positionH relativeFrom = %q, want page", got)
	}
	if got := anchor.FindElement("wp:positionV/wp:posOffset").Text(); got != "42" {
		t.Errorf("y offset = %q, want 42", got)
	}
	if got := attrOf(t, anchor, "wp:docPr", "name"); got != "Image" {
		t.Errorf("docPr name = %q, want Image", got)
	}
	if got := attrOf(t, anchor, "wp:wrapSquare", "wrapText"); got != "bothSides" {
		t.Errorf("wrapText = %q, want bothSides", got)
	}
}
