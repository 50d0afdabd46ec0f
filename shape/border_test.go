package shape

import (
	"strings"
	"testing"
)

func a4() Geometry {
	return Geometry{
		PageWidth:    11906,
		PageHeight:   16838,
		MarginTop:    1440,
		MarginRight:  1440,
		MarginBottom: 1440,
		MarginLeft:   1440,
		MarginHeader: 720,
	}
}

func TestPageBorder_Geometry(t *testing.T) {
	p := PageBorder(a4(), BorderSpec{Style: "single", Color: "FF0000", Size: 1}, NewCounter())
	style := attr(t, p, "w:r/w:pict/v:roundrect", "style")

	// text area is 451.3pt x 697.9pt, default offset is half inch (36pt)
	for _, want := range []string{
		"position:absolute;",
		"mso-position-horizontal-relative:page;",
		"mso-position-vertical-relative:page;",
		"left:36pt;",
		"top:36pt;",
		"width:523.3pt;",
		"height:769.9pt;",
	} {
		if !strings.Contains(style, want) {
			t.Errorf("style %q does not contain %q", style, want)
		}
	}
	if got := attr(t, p, "w:r/w:pict/v:roundrect", "fillcolor"); got != "transparent" {
		t.Errorf("fillcolor = %q", got)
	}
	if got := attr(t, p, "w:r/w:pict/v:roundrect/v:stroke", "insetpen"); got != "t" {
		t.Errorf("insetpen = %q", got)
	}
	if got := attr(t, p, "w:r/w:pict/v:roundrect/v:stroke", "color"); got != "#FF0000" {
		t.Errorf("color = %q", got)
	}
}

func TestPageBorder_Offset(t *testing.T) {
	zero := 0.0
	p := PageBorder(a4(), BorderSpec{Size: 1, MarginOffset: &zero}, NewCounter())
	style := attr(t, p, "w:r/w:pict/v:roundrect", "style")
	if !strings.Contains(style, "left:72pt;") || !strings.Contains(style, "width:451.3pt;") {
		t.Errorf("zero offset style = %q", style)
	}

	huge := 5.0
	p = PageBorder(a4(), BorderSpec{Size: 1, MarginOffset: &huge}, NewCounter())
	style = attr(t, p, "w:r/w:pict/v:roundrect", "style")
	if !strings.Contains(style, "left:0pt;") {
		t.Errorf("left is not clamped to zero: %q", style)
	}

	g := a4()
	g.MarginHeader = 2000
	p = PageBorder(g, BorderSpec{Size: 1}, NewCounter())
	style = attr(t, p, "w:r/w:pict/v:roundrect", "style")
	if !strings.Contains(style, "top:0pt;") {
		t.Errorf("top is not clamped to zero: %q", style)
	}
}

func TestPageBorder_Styles(t *testing.T) {
	tests := []struct {
		style     string
		weight    string
		dash      string
		linestyle string
	}{
		{"single", "2pt", "", ""},
		{"dotted", "2pt", "dot", ""},
		{"dashed", "2pt", "dash", ""},
		{"double", "2pt", "", "thickThin"},
		{"thick", "4pt", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			p := PageBorder(a4(), BorderSpec{Style: tt.style, Size: 2}, NewCounter())
			stroke := "w:r/w:pict/v:roundrect/v:stroke"
			if got := attr(t, p, stroke, "weight"); got != tt.weight {
				t.Errorf("weight = %q, want %q", got, tt.weight)
			}
			if got := attr(t, p, stroke, "dashstyle"); got != tt.dash {
				t.Errorf("dashstyle = %q, want %q", got, tt.dash)
			}
			if got := attr(t, p, stroke, "linestyle"); got != tt.linestyle {
				t.Errorf("linestyle = %q, want %q", got, tt.linestyle)
			}
		})
	}
}

func TestPageBorder_ThickSmall(t *testing.T) {
	p := PageBorder(a4(), BorderSpec{Style: "thick", Size: 10}, NewCounter())
	if got := attr(t, p, "w:r/w:pict/v:roundrect/v:stroke", "weight"); got != "15pt" {
		t.Errorf("weight = %q, want 15pt", got)
	}
}

func TestPageBorder_ArcSize(t *testing.T) {
	p := PageBorder(a4(), BorderSpec{Size: 1, Radius: 10000}, NewCounter())
	if got := attr(t, p, "w:r/w:pict/v:roundrect", "arcsize"); got != "1" {
		t.Errorf("arcsize = %q, want 1", got)
	}
	p = PageBorder(a4(), BorderSpec{Size: 1}, NewCounter())
	if got := attr(t, p, "w:r/w:pict/v:roundrect", "arcsize"); got != "0" {
		t.Errorf("arcsize = %q, want 0", got)
	}
}
