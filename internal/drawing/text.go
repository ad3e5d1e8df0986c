// text.go renders and measures text with Pillow-style anchors and width
// truncation.

package drawing

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/qingque-bot/qingque/internal/fonts"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// TruncationMarker is appended to text cut to fit a box.
const TruncationMarker = " ..."

// TextStyle configures [Canvas.Text].
type TextStyle struct {
	// Pos is the anchor point.
	Pos image.Point
	// Right, when positive, bounds the text to Right-Pos.X pixels.
	Right int
	// Size is the font size in pixels per em.
	Size float64
	// Family selects the typeface.
	Family fonts.Family
	// Anchor is a two-letter Pillow anchor ("la", "ms", "rt", ...). Empty
	// means "la".
	Anchor string
	// Color is the fill. Nil uses the canvas foreground.
	Color color.Color
	// Alpha is the text opacity. Zero means fully opaque.
	Alpha uint8
	// Stroke draws an outline this many pixels wide in StrokeColor.
	Stroke int
	// StrokeColor defaults to the canvas background.
	StrokeColor color.Color
	// NoEllipsis trims overflowing text without appending the marker.
	NoEllipsis bool
}

// ///////////////////////////////////////////////
// Anchors
// ///////////////////////////////////////////////

// Anchor is a parsed two-letter anchor: horizontal l/m/r and vertical
// a/t/m/s/b/d (ascender, top, middle, baseline, bottom, descender).
type Anchor struct {
	H byte
	V byte
}

// ParseAnchor validates s. Empty input yields "la".
func ParseAnchor(s string) (Anchor, error) {
	if s == "" {
		return Anchor{'l', 'a'}, nil
	}
	if len(s) != 2 {
		return Anchor{}, fmt.Errorf("invalid anchor %q", s)
	}
	a := Anchor{s[0], s[1]}
	switch a.H {
	case 'l', 'm', 'r':
	default:
		return Anchor{}, fmt.Errorf("invalid horizontal anchor %q", s)
	}
	switch a.V {
	case 'a', 't', 'm', 's', 'b', 'd':
	default:
		return Anchor{}, fmt.Errorf("invalid vertical anchor %q", s)
	}
	return a, nil
}

// Origin returns the baseline start point for drawing text so that the
// anchor lands on at.
func (a Anchor) Origin(face font.Face, text string, at image.Point) fixed.Point26_6 {
	adv := font.MeasureString(face, text)
	x := fixed.I(at.X)
	switch a.H {
	case 'm':
		x -= adv / 2
	case 'r':
		x -= adv
	}

	m := face.Metrics()
	y := fixed.I(at.Y)
	switch a.V {
	case 'a':
		y += m.Ascent
	case 't':
		b, _ := font.BoundString(face, text)
		y -= b.Min.Y
	case 'm':
		y += (m.Ascent - m.Descent) / 2
	case 'b':
		b, _ := font.BoundString(face, text)
		y -= b.Max.Y
	case 'd':
		y -= m.Descent
	}
	return fixed.Point26_6{X: x, Y: y}
}

// ///////////////////////////////////////////////
// Truncation
// ///////////////////////////////////////////////

// Truncate shortens text rune by rune until it fits maxWidth under measure.
// With ellipsis the kept prefix is followed by [TruncationMarker]. Text that
// already fits is returned unchanged, so Truncate is idempotent. If not even
// the bare marker fits, the result is empty.
func Truncate(measure func(string) int, text string, maxWidth int, ellipsis bool) string {
	if measure(text) <= maxWidth {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n >= 0; n-- {
		candidate := string(runes[:n])
		if ellipsis {
			candidate += TruncationMarker
		}
		if measure(candidate) <= maxWidth {
			return candidate
		}
	}
	return ""
}

// ///////////////////////////////////////////////
// Text
// ///////////////////////////////////////////////

// Measure returns the advance width of content in pixels.
func (c *Canvas) Measure(content string, size float64, family fonts.Family) (int, error) {
	face, err := c.face(family, size)
	if err != nil {
		return 0, err
	}
	return font.MeasureString(face, content).Round(), nil
}

func (c *Canvas) face(family fonts.Family, size float64) (font.Face, error) {
	if c.faces == nil {
		return nil, fmt.Errorf("drawing: canvas has no fonts")
	}
	return c.faces.Face(family, size)
}

// Text draws content and returns its rendered width.
func (c *Canvas) Text(content string, st TextStyle) (int, error) {
	face, err := c.face(st.Family, st.Size)
	if err != nil {
		return 0, err
	}
	anchor, err := ParseAnchor(st.Anchor)
	if err != nil {
		return 0, err
	}
	measure := func(s string) int { return font.MeasureString(face, s).Round() }
	if st.Right > 0 {
		content = Truncate(measure, content, st.Right-st.Pos.X, !st.NoEllipsis)
	}
	if content == "" {
		return 0, nil
	}

	fill := color.Color(c.fg)
	if st.Color != nil {
		fill = st.Color
	}
	stroke := color.Color(c.bg)
	if st.StrokeColor != nil {
		stroke = st.StrokeColor
	}
	dot := anchor.Origin(face, content, st.Pos)
	c.trace("text", "content", content, "size", st.Size, "anchor", st.Anchor)

	if st.Alpha == 0 || st.Alpha == 255 {
		drawString(c.img, face, content, dot, fill, stroke, st.Stroke)
		return measure(content), nil
	}

	// Translucent text is drawn opaque on an overlay and composited once so
	// overlapping glyph edges do not darken.
	bounds, _ := font.BoundString(face, content)
	pad := st.Stroke + 2
	area := image.Rect(
		(dot.X+bounds.Min.X).Floor()-pad, (dot.Y+bounds.Min.Y).Floor()-pad,
		(dot.X+bounds.Max.X).Ceil()+pad, (dot.Y+bounds.Max.Y).Ceil()+pad,
	).Intersect(c.img.Rect)
	if area.Empty() {
		return measure(content), nil
	}
	overlay := image.NewNRGBA(area)
	drawString(overlay, face, content, dot, fill, stroke, st.Stroke)
	draw.DrawMask(c.img, area, overlay, area.Min, image.NewUniform(color.Alpha{A: st.Alpha}), image.Point{}, draw.Over)
	return measure(content), nil
}

// drawString paints an optional stroke ring then the fill.
func drawString(dst draw.Image, face font.Face, s string, dot fixed.Point26_6, fill, stroke color.Color, width int) {
	d := &font.Drawer{Dst: dst, Face: face}
	if width > 0 {
		d.Src = image.NewUniform(stroke)
		for dy := -width; dy <= width; dy++ {
			for dx := -width; dx <= width; dx++ {
				if dx*dx+dy*dy > width*width || (dx == 0 && dy == 0) {
					continue
				}
				d.Dot = fixed.Point26_6{X: dot.X + fixed.I(dx), Y: dot.Y + fixed.I(dy)}
				d.DrawString(s)
			}
		}
	}
	d.Src = image.NewUniform(fill)
	d.Dot = dot
	d.DrawString(s)
}
