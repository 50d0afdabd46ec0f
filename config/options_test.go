package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	yaml "gopkg.in/yaml.v3"
)

func TestNumber_Decode(t *testing.T) {
	var v struct {
		A Number `yaml:"a" json:"a"`
		B Number `yaml:"b" json:"b"`
		C Number `yaml:"c" json:"c"`
	}

	if err := yaml.Unmarshal([]byte("a: 12\nb: '1.5'\nc: nope\n"), &v); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if v.A != 12 || v.B != 1.5 || !math.IsNaN(v.C.Float()) {
		t.Errorf("yaml decoded %v %v %v, want 12 1.5 NaN", v.A, v.B, v.C)
	}

	if err := json.Unmarshal([]byte(`{"a": 3, "b": "4", "c": [1]}`), &v); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if v.A != 3 || v.B != 4 || !math.IsNaN(v.C.Float()) {
		t.Errorf("json decoded %v %v %v, want 3 4 NaN", v.A, v.B, v.C)
	}
}

func TestSanitize(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)

	border := &PageBorder{Style: "wavy", Color: "rgb(1,2,3)", Size: -2, Radius: Number(math.NaN())}
	bad := Number(-0.5)
	border.MarginOffset = &bad

	o := ConversionOptions{
		FontSize:            -12,
		LineHeight:          Number(math.NaN()),
		PageSize:            PageSize{Name: "letter"},
		Orientation:         "sideways",
		MarginTop:           -1,
		MarginRight:         0,
		MarginBottom:        2,
		MarginLeft:          Number(math.Inf(1)),
		MarginHeader:        Number(math.NaN()),
		MarginFooter:        0.3,
		HeaderHeight:        0,
		FooterHeight:        2,
		PageNumberAlignment: "RIGHT",
		PageBorder:          border,
		HeadingReplacements: []string{`<div data-h2>HEADING_TEXT</div>`, `<div>HEADING_TEXT</div>`},
	}
	o.Sanitize(zap.New(core))

	checks := []struct {
		name string
		got  Number
		want Number
	}{
		{"font_size", o.FontSize, DefaultFontSize},
		{"line_height", o.LineHeight, DefaultLineHeight},
		{"margin_top", o.MarginTop, DefaultMargin},
		{"margin_right", o.MarginRight, 0},
		{"margin_bottom", o.MarginBottom, 2},
		{"margin_left", o.MarginLeft, DefaultMargin},
		{"margin_header", o.MarginHeader, DefaultMarginHeader},
		{"margin_footer", o.MarginFooter, 0.3},
		{"header_height", o.HeaderHeight, DefaultHeaderHeight},
		{"footer_height", o.FooterHeight, 2},
		{"page_border.size", o.PageBorder.Size, DefaultBorderSize},
		{"page_border.radius", o.PageBorder.Radius, 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if o.FontFamily != DefaultFontFamily {
		t.Errorf("FontFamily = %q, want %q", o.FontFamily, DefaultFontFamily)
	}
	if o.PageSize.Name != PageLetter {
		t.Errorf("PageSize = %+v, want Letter", o.PageSize)
	}
	if o.Orientation != "portrait" {
		t.Errorf("Orientation = %q, want portrait", o.Orientation)
	}
	if o.PageNumberAlignment != "right" {
		t.Errorf("PageNumberAlignment = %q, want right", o.PageNumberAlignment)
	}
	if o.PageBorder.Style != BorderSingle || o.PageBorder.Color != "000000" || o.PageBorder.MarginOffset != nil {
		t.Errorf("PageBorder = %+v, want single black without offset", o.PageBorder)
	}
	if len(o.HeadingReplacements) != 1 {
		t.Errorf("HeadingReplacements = %q, want only marked template", o.HeadingReplacements)
	}
	if logs.Len() == 0 {
		t.Error("Sanitize() logged no warnings")
	}
}

func TestSanitize_DefaultsUntouched(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	o := DefaultOptions()
	o.Sanitize(zap.New(core))
	if logs.Len() != 0 {
		t.Errorf("Sanitize() of defaults logged %d warnings", logs.Len())
	}
	if w, h := o.PageSize.Dimensions(); w != 8.27 || h != 11.69 {
		t.Errorf("Dimensions() = %v, %v, want A4", w, h)
	}
}

func TestSanitize_CustomPageSize(t *testing.T) {
	o := DefaultOptions()
	o.PageSize = PageSize{Width: 5, Height: 0}
	o.Sanitize(nil)
	if o.PageSize.Name != PageA4 {
		t.Errorf("PageSize = %+v, want A4 for zero height", o.PageSize)
	}
}

func TestOptionsEnabled(t *testing.T) {
	off := false
	o := DefaultOptions()
	if o.HeaderEnabled() || o.FooterEnabled() || o.PageBorderEnabled() {
		t.Error("defaults must not enable header, footer or border")
	}
	o.Header = "<p>head</p>"
	o.PageBorder = &PageBorder{}
	if !o.HeaderEnabled() || !o.PageBorderEnabled() {
		t.Error("content must enable header and border")
	}
	o.EnableHeader = &off
	o.EnablePageBorder = &off
	if o.HeaderEnabled() || o.PageBorderEnabled() {
		t.Error("explicit flags must disable header and border")
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"opts.yaml": "font_size: 14\npage_size: Legal\npage_border:\n  style: dashed\n  margin_offset: 0.25\n",
		"opts.json": `{"fontSize": "14", "pageSize": "legal", "pageBorder": {"style": "dashed", "marginOffset": 0.25}}`,
		"opts.toml": "font_size = 14\npage_size = \"LEGAL\"\n[page_border]\nstyle = \"dashed\"\nmargin_offset = 0.25\n",
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("Failed to write options: %v", err)
			}
			o, err := LoadOptions(path, DefaultOptions(), nil)
			if err != nil {
				t.Fatalf("LoadOptions() error = %v", err)
			}
			if o.FontSize != 14 {
				t.Errorf("FontSize = %v, want 14", o.FontSize)
			}
			if o.PageSize.Name != PageLegal {
				t.Errorf("PageSize = %+v, want Legal", o.PageSize)
			}
			if o.PageBorder == nil || o.PageBorder.Style != BorderDashed {
				t.Fatalf("PageBorder = %+v, want dashed", o.PageBorder)
			}
			if o.PageBorder.MarginOffset == nil || *o.PageBorder.MarginOffset != 0.25 {
				t.Errorf("MarginOffset = %v, want 0.25", o.PageBorder.MarginOffset)
			}
			if o.FontFamily != DefaultFontFamily {
				t.Errorf("FontFamily = %q, want default", o.FontFamily)
			}
		})
	}
}

func TestLoadOptions_Missing(t *testing.T) {
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "none.yaml"), DefaultOptions(), nil); err == nil {
		t.Error("LoadOptions() expected error for missing file")
	}
}

func TestClone(t *testing.T) {
	off := Number(0.25)
	on := true
	orig := DefaultOptions()
	orig.HeadingReplacements = []string{"<div>HEADING_TEXT</div>"}
	orig.PageBorder = &PageBorder{Style: BorderSingle, Size: 1, MarginOffset: &off}
	orig.EnableHeader = &on

	c := orig.Clone()
	c.HeadingReplacements[0] = "changed"
	c.PageBorder.Size = 5
	*c.PageBorder.MarginOffset = 1
	*c.EnableHeader = false

	if orig.HeadingReplacements[0] != "<div>HEADING_TEXT</div>" {
		t.Errorf("HeadingReplacements shared after Clone()")
	}
	if orig.PageBorder.Size != 1 || *orig.PageBorder.MarginOffset != 0.25 {
		t.Errorf("PageBorder shared after Clone(): %+v", orig.PageBorder)
	}
	if !*orig.EnableHeader {
		t.Error("EnableHeader shared after Clone()")
	}
	if c.EnableFooter != nil {
		t.Error("nil EnableFooter became non-nil")
	}
}
