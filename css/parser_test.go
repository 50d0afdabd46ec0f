package css_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"htmldocx/css"
)

func TestParseInline(t *testing.T) {
	p := css.NewParser(zaptest.NewLogger(t))

	tests := []struct {
		name  string
		style string
		want  css.Declarations
	}{
		{
			name:  "simple",
			style: "color: red; font-weight: bold",
			want: css.Declarations{
				{Property: "color", Value: "red"},
				{Property: "font-weight", Value: "bold"},
			},
		},
		{
			name:  "case and whitespace",
			style: "  TEXT-ALIGN :   center ;;margin:0   auto",
			want: css.Declarations{
				{Property: "text-align", Value: "center"},
				{Property: "margin", Value: "0 auto"},
			},
		},
		{
			name:  "functions",
			style: "background: linear-gradient(to right, #fff, rgb(0, 0, 0))",
			want: css.Declarations{
				{Property: "background", Value: "linear-gradient(to right,#fff,rgb(0,0,0))"},
			},
		},
		{
			name:  "important",
			style: "color: #00f !important",
			want: css.Declarations{
				{Property: "color", Value: "#00f", Important: true},
			},
		},
		{
			name:  "empty",
			style: "   ",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ParseInline(tt.style)
			if len(got) != len(tt.want) {
				t.Fatalf("ParseInline(%q) = %+v, want %+v", tt.style, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseInline(%q)[%d] = %+v, want %+v", tt.style, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDeclarationsGet(t *testing.T) {
	d := css.ParseInline("color: red; color: blue")
	if v, ok := d.Get("color"); !ok || v != "blue" {
		t.Errorf("Get(color) = %q, %v, want blue, true", v, ok)
	}
	if _, ok := d.Get("margin"); ok {
		t.Error("Get(margin) found value, want none")
	}
}
