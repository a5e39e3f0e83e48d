package token

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color is an 8-bit-per-channel sRGB color with alpha.
type Color struct {
	R, G, B uint8
	A       float64
}

// ParseColor accepts #rgb, #rrggbb, rgb(r,g,b) and rgba(r,g,b,a).
func ParseColor(raw string) (Color, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return Color{}, false
	}
	if strings.HasPrefix(s, "#") {
		return parseHex(s[1:])
	}
	if strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")") {
		return parseRGBParts(s[5:len(s)-1], true)
	}
	if strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")") {
		return parseRGBParts(s[4:len(s)-1], false)
	}
	return Color{}, false
}

func parseHex(hex string) (Color, bool) {
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return Color{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, false
	}
	return Color{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 1,
	}, true
}

func parseRGBParts(body string, withAlpha bool) (Color, bool) {
	parts := strings.Split(body, ",")
	want := 3
	if withAlpha {
		want = 4
	}
	if len(parts) != want {
		return Color{}, false
	}
	ch := make([]uint8, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return Color{}, false
		}
		ch[i] = uint8(n)
	}
	a := 1.0
	if withAlpha {
		f, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || f < 0 || f > 1 {
			return Color{}, false
		}
		a = f
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: a}, true
}

// Hex renders the color as #rrggbb. Alpha is dropped; use String for
// rgba output when alpha < 1.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	if c.A < 1 {
		return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'g', 3, 64))
	}
	return c.Hex()
}

// Luminance is the WCAG relative luminance in [0, 1].
func (c Color) Luminance() float64 {
	lin := func(ch uint8) float64 {
		v := float64(ch) / 255
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// ContrastRatio is the WCAG contrast ratio between two colors, in [1, 21].
func ContrastRatio(a, b Color) float64 {
	la, lb := a.Luminance(), b.Luminance()
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

// Darken moves the color toward black by amount in [0, 1].
func (c Color) Darken(amount float64) Color {
	amount = clamp01(amount)
	f := 1 - amount
	return Color{
		R: uint8(math.Round(float64(c.R) * f)),
		G: uint8(math.Round(float64(c.G) * f)),
		B: uint8(math.Round(float64(c.B) * f)),
		A: c.A,
	}
}

// Lighten moves the color toward white by amount in [0, 1].
func (c Color) Lighten(amount float64) Color {
	amount = clamp01(amount)
	mix := func(ch uint8) uint8 {
		return uint8(math.Round(float64(ch) + (255-float64(ch))*amount))
	}
	return Color{R: mix(c.R), G: mix(c.G), B: mix(c.B), A: c.A}
}

// WithAlpha returns the color with the given alpha in [0, 1].
func (c Color) WithAlpha(a float64) Color {
	c.A = clamp01(a)
	return c
}

// Distance is the normalized RGB-space distance between two colors in
// [0, 1]; 1 is black vs white.
func Distance(a, b Color) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr+dg*dg+db*db) / math.Sqrt(3*255*255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
