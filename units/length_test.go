package units

import (
	"testing"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		in     string
		want   Length
		wantOK bool
	}{
		{"12px", Length{12, UnitPx}, true},
		{" 1.5in ", Length{1.5, UnitIn}, true},
		{"10PT", Length{10, UnitPt}, true},
		{"50%", Length{50, UnitPercent}, true},
		{"2em", Length{2, UnitEm}, true},
		{"1rem", Length{1, UnitRem}, true},
		{"2.54cm", Length{2.54, UnitCm}, true},
		{"25.4mm", Length{25.4, UnitMm}, true},
		{"-3px", Length{-3, UnitPx}, true},
		{".5pt", Length{0.5, UnitPt}, true},
		{"14", Length{14, UnitNone}, true},
		{"3vw", Length{3, UnitPx}, true},
		{"auto", Length{}, false},
		{"", Length{}, false},
		{"px", Length{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseLength(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseLength(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseLength(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestOneInch(t *testing.T) {
	inch := []string{"1in", "96px", "72pt", "2.54cm", "25.4mm", "6em"}
	for _, s := range inch {
		l := MustParse(s)
		if got := Twips(l); got != TwipsPerInch {
			t.Errorf("Twips(%s) = %d, want %d", s, got, TwipsPerInch)
		}
		if got := EMU(l, 0); got != EMUPerInch {
			t.Errorf("EMU(%s) = %d, want %d", s, got, EMUPerInch)
		}
		if got := HalfPoints(l); got != 144 {
			t.Errorf("HalfPoints(%s) = %d, want 144", s, got)
		}
	}
}

func TestConversionsMonotonic(t *testing.T) {
	for _, u := range []Unit{UnitPx, UnitPt, UnitIn, UnitCm, UnitMm, UnitEm, UnitNone} {
		prevTw, prevEMU, prevHP := Twips(Length{0, u}), EMU(Length{0, u}, 0), HalfPoints(Length{0, u})
		for v := 0.25; v < 200; v += 0.25 {
			l := Length{v, u}
			tw, emu, hp := Twips(l), EMU(l, 0), HalfPoints(l)
			if tw < prevTw || emu < prevEMU || hp < prevHP {
				t.Fatalf("conversion of %v%s is not monotonic: twips %d<%d emu %d<%d hp %d<%d",
					v, u, tw, prevTw, emu, prevEMU, hp, prevHP)
			}
			prevTw, prevEMU, prevHP = tw, emu, hp
		}
	}
}

func TestHalfPoints(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"16px", 24},
		{"13px", 20},
		{"12pt", 24},
		{"11", 22},
		{"100%", 24},
		{"1em", 24},
	}
	for _, tt := range tests {
		if got := HalfPoints(MustParse(tt.in)); got != tt.want {
			t.Errorf("HalfPoints(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTwipsAndEMU(t *testing.T) {
	if got := Twips(MustParse("86px")); got != 1290 {
		t.Errorf("Twips(86px) = %d, want 1290", got)
	}
	if got := Twips(MustParse("10")); got != 150 {
		t.Errorf("Twips(10) = %d, want 150", got)
	}
	if got := Twips(MustParse("50%")); got != 0 {
		t.Errorf("Twips(50%%) = %d, want 0", got)
	}
	if got := EMU(MustParse("300px"), 0); got != 2857500 {
		t.Errorf("EMU(300px) = %d, want 2857500", got)
	}
	if got := EMU(MustParse("50%"), 5943600); got != 2971800 {
		t.Errorf("EMU(50%%) = %d, want 2971800", got)
	}
	if got := EMU(MustParse("1pt"), 0); got != EMUPerPoint {
		t.Errorf("EMU(1pt) = %d, want %d", got, EMUPerPoint)
	}
	if got := EMUToPoints(9144000); got != 720 {
		t.Errorf("EMUToPoints(9144000) = %d, want 720", got)
	}
	if got := InchesToTwips(8.5); got != 12240 {
		t.Errorf("InchesToTwips(8.5) = %d, want 12240", got)
	}
}

func TestFontSize(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"medium", 24, true},
		{"x-large", 36, true},
		{"18px", 27, true},
		{"14pt", 28, true},
		{"0", 0, false},
		{"-2px", 0, false},
		{"larger", 0, false},
	}
	for _, tt := range tests {
		got, ok := FontSize(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("FontSize(%q) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(2, 0, 1); got != 1 {
		t.Errorf("Clamp(2) = %v, want 1", got)
	}
	if got := Clamp(-1, 0, 1); got != 0 {
		t.Errorf("Clamp(-1) = %v, want 0", got)
	}
}
