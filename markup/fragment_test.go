package markup

import (
	"testing"

	"github.com/beevik/etree"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindParagraph, "paragraph"},
		{KindTable, "table"},
		{Kind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestFragment_Immutable(t *testing.T) {
	f := fragment(etree.NewElement("w:p"))
	copied := f.Element()
	copied.CreateElement("w:r")
	if got := f.String(); got != "<w:p/>" {
		t.Errorf("Fragment changed with returned element: %s", got)
	}
}

func TestBody_Kinds(t *testing.T) {
	body := paragraphs([]*etree.Element{etree.NewElement("w:p"), etree.NewElement("w:tbl")})
	if body[0].Kind() != KindParagraph || body[1].Kind() != KindTable {
		t.Errorf("paragraphs() kinds = %v, %v, want paragraph, table", body[0].Kind(), body[1].Kind())
	}
	if got := string(body.Bytes()); got != "<w:p/><w:tbl/>" {
		t.Errorf("Body.Bytes() = %s", got)
	}
	if n := len(body.Elements()); n != 2 {
		t.Errorf("Body.Elements() = %d, want 2", n)
	}
}

func TestPageNumberParagraph(t *testing.T) {
	p := PageNumberParagraph("right")
	if got := attrOf(t, p, "w:pPr/w:jc", "w:val"); got != "right" {
		t.Errorf("alignment = %q, want right", got)
	}
	if got := p.FindElement("w:r/w:instrText").Text(); got != " PAGE " {
		t.Errorf("instrText = %q, want \" PAGE \"", got)
	}
	if n := len(p.FindElements("w:r/w:fldChar")); n != 3 {
		t.Errorf("fldChar count = %d, want 3", n)
	}
}

func TestCollapseSpaces(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a  b", "a b"},
		{"\n\ta\r\n", " a "},
		{"", ""},
		{"ä b", "ä b"},
	}
	for _, tt := range tests {
		if got := collapseSpaces(tt.in); got != tt.want {
			t.Errorf("collapseSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
