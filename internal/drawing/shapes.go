// shapes.go draws boxes, circles, gradients and lines. Anything that is not
// an axis-aligned rectangle is rasterised by gg into a single-channel mask at
// [Oversample]× resolution, downsampled with Catmull-Rom, and composited
// through.

package drawing

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

// Oversample is the mask resolution multiplier for anti-aliased shapes.
const Oversample = 4

// BoxStyle configures [Canvas.Box].
type BoxStyle struct {
	// Fill is the box colour. A zero value uses the canvas foreground.
	Fill color.NRGBA
	// Width draws an outline of this thickness instead of filling.
	Width int
	// Angle rotates the box clockwise around its centre, in degrees.
	Angle float64
}

// CircleStyle configures [Canvas.Circle].
type CircleStyle struct {
	// Fill paints the ellipse interior when its alpha is non-zero.
	Fill color.NRGBA
	// Outline is the ring colour drawn when Width > 0.
	Outline color.NRGBA
	// Width is the ring thickness, centred on the ellipse edge.
	Width float64
}

// Direction selects the gradient axis.
type Direction int

const (
	// Vertical blends from the top edge to the bottom edge.
	Vertical Direction = iota
	// Horizontal blends from the left edge to the right edge.
	Horizontal
)

// ///////////////////////////////////////////////
// Box
// ///////////////////////////////////////////////

// Box draws a filled or outlined rectangle.
func (c *Canvas) Box(r image.Rectangle, st BoxStyle) {
	fill := st.Fill
	if fill == (color.NRGBA{}) {
		fill = c.fg
	}
	r = r.Canon()
	c.trace("box", "rect", r, "width", st.Width, "angle", st.Angle)

	if math.Mod(st.Angle, 360) != 0 {
		c.rotatedBox(r, fill, st)
		return
	}

	src := image.NewUniform(fill)
	if st.Width <= 0 {
		draw.Draw(c.img, r, src, image.Point{}, draw.Over)
		return
	}
	w := st.Width
	strips := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
		image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y+w, r.Min.X+w, r.Max.Y-w),
		image.Rect(r.Max.X-w, r.Min.Y+w, r.Max.X, r.Max.Y-w),
	}
	for _, s := range strips {
		draw.Draw(c.img, s.Intersect(r), src, image.Point{}, draw.Over)
	}
}

func (c *Canvas) rotatedBox(r image.Rectangle, fill color.NRGBA, st BoxStyle) {
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	// The rotated rectangle always fits inside the circle through its corners.
	radius := math.Hypot(float64(r.Dx()), float64(r.Dy()))/2 + float64(st.Width) + 1
	bbox := image.Rect(
		int(math.Floor(cx-radius)), int(math.Floor(cy-radius)),
		int(math.Ceil(cx+radius)), int(math.Ceil(cy+radius)),
	)
	c.fillMask(bbox, fill, func(dc *gg.Context) {
		dc.RotateAbout(gg.Radians(st.Angle), cx, cy)
		dc.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
		dc.SetRGB(1, 1, 1)
		if st.Width > 0 {
			dc.SetLineWidth(float64(st.Width * Oversample))
			dc.Stroke()
			return
		}
		dc.Fill()
	})
}

// ///////////////////////////////////////////////
// Circle
// ///////////////////////////////////////////////

// Circle draws an ellipse inscribed in r: the interior in st.Fill and, when
// st.Width > 0, a ring in st.Outline.
func (c *Canvas) Circle(r image.Rectangle, st CircleStyle) {
	r = r.Canon()
	cx := float64(r.Min.X+r.Max.X) / 2
	cy := float64(r.Min.Y+r.Max.Y) / 2
	rx := float64(r.Dx()) / 2
	ry := float64(r.Dy()) / 2
	bbox := r.Inset(-int(math.Ceil(st.Width)) - 1)
	c.trace("circle", "rect", r, "width", st.Width)

	if st.Fill.A > 0 {
		c.fillMask(bbox, st.Fill, func(dc *gg.Context) {
			dc.DrawEllipse(cx, cy, rx, ry)
			dc.SetRGB(1, 1, 1)
			dc.Fill()
		})
	}
	if st.Width > 0 {
		half := st.Width / 2
		c.fillMask(bbox, st.Outline, func(dc *gg.Context) {
			dc.DrawEllipse(cx, cy, rx+half, ry+half)
			dc.SetRGB(1, 1, 1)
			dc.Fill()
			dc.DrawEllipse(cx, cy, math.Max(rx-half, 0), math.Max(ry-half, 0))
			dc.SetRGB(0, 0, 0)
			dc.Fill()
		})
	}
}

// ///////////////////////////////////////////////
// Line
// ///////////////////////////////////////////////

// Line draws an anti-aliased segment.
func (c *Canvas) Line(from, to image.Point, col color.NRGBA, width float64) {
	pad := int(math.Ceil(width)) + 1
	bbox := image.Rectangle{Min: from, Max: to}.Canon().Inset(-pad)
	c.fillMask(bbox, col, func(dc *gg.Context) {
		dc.SetLineWidth(width * Oversample)
		dc.SetLineCapButt()
		dc.DrawLine(float64(from.X), float64(from.Y), float64(to.X), float64(to.Y))
		dc.SetRGB(1, 1, 1)
		dc.Stroke()
	})
}

// ///////////////////////////////////////////////
// Gradient
// ///////////////////////////////////////////////

// GradientBox fills r with a two-colour HSV gradient along dir.
func (c *Canvas) GradientBox(r image.Rectangle, from, to color.NRGBA, dir Direction) {
	r = r.Canon()
	steps := r.Dy()
	if dir == Horizontal {
		steps = r.Dx()
	}
	c.trace("gradient", "rect", r, "dir", dir)
	for i := 0; i < steps; i++ {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		line := image.Rect(r.Min.X, r.Min.Y+i, r.Max.X, r.Min.Y+i+1)
		if dir == Horizontal {
			line = image.Rect(r.Min.X+i, r.Min.Y, r.Min.X+i+1, r.Max.Y)
		}
		draw.Draw(c.img, line, image.NewUniform(Interpolate(from, to, t)), image.Point{}, draw.Over)
	}
}

// ///////////////////////////////////////////////
// Masks
// ///////////////////////////////////////////////

// fillMask rasterises paint into an oversampled mask covering bbox (canvas
// coordinates; paint draws in canvas coordinates too), downsamples it, and
// composites col through it.
func (c *Canvas) fillMask(bbox image.Rectangle, col color.NRGBA, paint func(dc *gg.Context)) {
	bbox = bbox.Intersect(c.img.Rect)
	if bbox.Empty() {
		return
	}
	dc := gg.NewContext(bbox.Dx()*Oversample, bbox.Dy()*Oversample)
	dc.Scale(Oversample, Oversample)
	dc.Translate(-float64(bbox.Min.X), -float64(bbox.Min.Y))
	paint(dc)

	mask := downsampleMask(dc.Image(), bbox.Size())
	draw.DrawMask(c.img, bbox, image.NewUniform(col), image.Point{}, mask, image.Point{}, draw.Over)
}

// downsampleMask converts the red channel of an oversampled render into an
// alpha mask of the given size.
func downsampleMask(src image.Image, size image.Point) *image.Alpha {
	b := src.Bounds()
	big := image.NewAlpha(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := src.At(x, y).RGBA()
			big.Pix[big.PixOffset(x, y)] = uint8(r >> 8)
		}
	}
	small := image.NewAlpha(image.Rect(0, 0, size.X, size.Y))
	xdraw.CatmullRom.Scale(small, small.Rect, big, b, xdraw.Src, nil)
	return small
}
