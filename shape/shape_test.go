package shape

import (
	"math"
	"testing"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	if got := c.Next(); got != "_x0000_s1025" {
		t.Errorf("Next() = %q, want _x0000_s1025", got)
	}
	if got := c.Next(); got != "_x0000_s1026" {
		t.Errorf("Next() = %q, want _x0000_s1026", got)
	}
	if got := NewCounter().Next(); got != "_x0000_s1025" {
		t.Errorf("new counter Next() = %q, want _x0000_s1025", got)
	}
}

func TestVMLAngle(t *testing.T) {
	tests := []struct {
		css  float64
		want int
	}{
		{180, 0},
		{225, 315},
		{270, 270},
		{315, 225},
		{0, 180},
		{45, 135},
		{90, 90},
		{135, 45},
		{360, 180},
		{-90, 270},
		{30, 150},
		{200, 340},
	}
	for _, tt := range tests {
		if got := VMLAngle(tt.css); got != tt.want {
			t.Errorf("VMLAngle(%v) = %d, want %d", tt.css, got, tt.want)
		}
	}
}

func TestArcSize(t *testing.T) {
	tests := []struct {
		name    string
		r, w, h float64
		want    float64
	}{
		{"no radius", 0, 100, 50, 0},
		{"quarter", 5, 100, 20, 0.5},
		{"clamped", 100, 100, 20, 1},
		{"square", 25, 100, 100, 0.5},
		{"no extent", 10, 0, 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ArcSize(tt.r, tt.w, tt.h)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ArcSize(%v, %v, %v) = %v, want %v", tt.r, tt.w, tt.h, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("ArcSize() = %v out of [0, 1]", got)
			}
		})
	}
}

func TestDimension(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"96px", 914400},
		{"96", 914400},
		{"100%", ReferenceWidth},
		{"50%", ReferenceWidth / 2},
		{"1in", 914400},
		{"2.54cm", 914400},
		{"25.4mm", 914400},
		{"72pt", 914400},
		{"auto", DefaultWidth},
		{"", DefaultWidth},
		{"-10px", DefaultWidth},
	}
	for _, tt := range tests {
		if got := Dimension(tt.in, DefaultWidth); got != tt.want {
			t.Errorf("Dimension(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
