// color.go holds colour constructors, hex parsing, and HSV interpolation
// used for rarity gradients.

package drawing

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// RGB returns an opaque colour.
func RGB(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 255} }

// RGBA returns a colour with straight alpha.
func RGBA(r, g, b, a uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: a} }

// WithAlphaOf returns c with its alpha replaced.
func WithAlphaOf(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

// Invert returns 255-c per channel, keeping alpha.
func Invert(c color.NRGBA) color.NRGBA {
	return color.NRGBA{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B, A: c.A}
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an opaque colour.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), nil
}

// IsWhite reports whether c is opaque-agnostic pure white.
func IsWhite(c color.NRGBA) bool { return c.R == 255 && c.G == 255 && c.B == 255 }

// ///////////////////////////////////////////////
// HSV Interpolation
// ///////////////////////////////////////////////

// Interpolate blends from and to by t in HSV space. t is clamped to [0, 1].
func Interpolate(from, to color.NRGBA, t float64) color.NRGBA {
	t = math.Max(0, math.Min(1, t))
	h1, s1, v1 := rgbToHSV(from)
	h2, s2, v2 := rgbToHSV(to)
	r, g, b := hsvToRGB(h1+(h2-h1)*t, s1+(s2-s1)*t, v1+(v2-v1)*t)
	return RGB(clamp8(r), clamp8(g), clamp8(b))
}

// rgbToHSV returns hue and saturation in [0, 1] and value in [0, 255].
func rgbToHSV(c color.NRGBA) (h, s, v float64) {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)
	maxc := math.Max(r, math.Max(g, b))
	minc := math.Min(r, math.Min(g, b))
	v = maxc
	if maxc == minc {
		return 0, 0, v
	}
	s = (maxc - minc) / maxc
	rc := (maxc - r) / (maxc - minc)
	gc := (maxc - g) / (maxc - minc)
	bc := (maxc - b) / (maxc - minc)
	switch {
	case r == maxc:
		h = bc - gc
	case g == maxc:
		h = 2 + rc - bc
	default:
		h = 4 + gc - rc
	}
	h = math.Mod(h/6, 1)
	if h < 0 {
		h++
	}
	return h, s, v
}

// hsvToRGB is the inverse of rgbToHSV.
func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

func clamp8(f float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(f))))
}
