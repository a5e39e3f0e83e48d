package token

import (
	"math"
	"testing"
)

func TestParseColorForms(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#ff0000", Color{R: 255, A: 1}, true},
		{"#F00", Color{R: 255, A: 1}, true},
		{"rgb(0, 128, 255)", Color{G: 128, B: 255, A: 1}, true},
		{"rgba(0, 0, 0, 0.5)", Color{A: 0.5}, true},
		{"  #1a2b3c ", Color{R: 0x1a, G: 0x2b, B: 0x3c, A: 1}, true},
		{"#12345", Color{}, false},
		{"rgb(300, 0, 0)", Color{}, false},
		{"rgba(0, 0, 0, 1.5)", Color{}, false},
		{"blue", Color{}, false},
		{"", Color{}, false},
	}
	for _, tc := range cases {
		got, ok := ParseColor(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseColor(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseColor(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestHexRoundTrip(t *testing.T) {
	c, ok := ParseColor("#1a2b3c")
	if !ok {
		t.Fatal("ParseColor failed")
	}
	if got := c.Hex(); got != "#1a2b3c" {
		t.Fatalf("Hex() = %q, want %q", got, "#1a2b3c")
	}
}

func TestContrastRatioBounds(t *testing.T) {
	white := Color{R: 255, G: 255, B: 255, A: 1}
	black := Color{A: 1}

	if got := ContrastRatio(white, black); math.Abs(got-21) > 0.01 {
		t.Fatalf("ContrastRatio(white, black) = %v, want 21", got)
	}
	if got := ContrastRatio(white, white); math.Abs(got-1) > 0.01 {
		t.Fatalf("ContrastRatio(white, white) = %v, want 1", got)
	}
	// Symmetric regardless of argument order.
	if a, b := ContrastRatio(white, black), ContrastRatio(black, white); a != b {
		t.Fatalf("ContrastRatio not symmetric: %v vs %v", a, b)
	}
}

func TestDarkenLighten(t *testing.T) {
	red := Color{R: 255, A: 1}

	if got := red.Darken(0.10).Hex(); got != "#e60000" {
		t.Fatalf("Darken(0.10) = %q, want #e60000", got)
	}
	if got := red.Lighten(1).Hex(); got != "#ffffff" {
		t.Fatalf("Lighten(1) = %q, want #ffffff", got)
	}
	if got := red.Darken(1).Hex(); got != "#000000" {
		t.Fatalf("Darken(1) = %q, want #000000", got)
	}
	// Out-of-range amounts clamp instead of wrapping.
	if got := red.Darken(2).Hex(); got != "#000000" {
		t.Fatalf("Darken(2) = %q, want #000000", got)
	}
}

func TestDistanceNormalized(t *testing.T) {
	white := Color{R: 255, G: 255, B: 255, A: 1}
	black := Color{A: 1}

	if got := Distance(black, white); math.Abs(got-1) > 1e-9 {
		t.Fatalf("Distance(black, white) = %v, want 1", got)
	}
	if got := Distance(white, white); got != 0 {
		t.Fatalf("Distance(white, white) = %v, want 0", got)
	}
}

func TestStringUsesRGBAWhenTranslucent(t *testing.T) {
	c := Color{R: 10, G: 20, B: 30, A: 0.5}
	if got := c.String(); got != "rgba(10, 20, 30, 0.5)" {
		t.Fatalf("String() = %q", got)
	}
	opaque := Color{R: 10, G: 20, B: 30, A: 1}
	if got := opaque.String(); got != "#0a141e" {
		t.Fatalf("String() = %q, want #0a141e", got)
	}
}
