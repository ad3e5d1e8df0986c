// Package drawing is the raster layer the card composers draw through.
//
// A [Canvas] owns one growable NRGBA buffer plus the card's background and
// foreground colours. Shapes are anti-aliased through oversampled masks,
// text goes through x/image/font faces from the fonts package, and bitmap
// helpers ([Tint], [Resize], [Crop], ...) always return new images so cached
// assets are never modified.
package drawing

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"

	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/logger"
)

// ErrInvalidExtent is returned when a canvas extension is not positive.
var ErrInvalidExtent = errors.New("drawing: canvas extension must be positive")

// ///////////////////////////////////////////////
// Canvas
// ///////////////////////////////////////////////

// Options configures a new [Canvas].
type Options struct {
	// Background fills the initial canvas and every extension.
	Background color.NRGBA
	// Foreground is the default colour for text and boxes.
	Foreground color.NRGBA
	// Faces supplies font faces for text. Required for [Canvas.Text].
	Faces *fonts.Faces
	// Logger receives per-primitive trace lines. Nil disables them.
	Logger *slog.Logger
}

// Canvas is a growable drawing surface. It is not safe for concurrent use.
type Canvas struct {
	img   *image.NRGBA
	bg    color.NRGBA
	fg    color.NRGBA
	faces *fonts.Faces
	log   *slog.Logger

	// extendedDown and extendedRight accumulate every extension.
	extendedDown  int
	extendedRight int
}

// New returns a w×h canvas filled with opts.Background.
func New(w, h int, opts Options) *Canvas {
	c := &Canvas{
		img:   image.NewNRGBA(image.Rect(0, 0, w, h)),
		bg:    opts.Background,
		fg:    opts.Foreground,
		faces: opts.Faces,
		log:   opts.Logger,
	}
	draw.Draw(c.img, c.img.Rect, image.NewUniform(c.bg), image.Point{}, draw.Src)
	return c
}

// Image returns the backing buffer. It stays owned by the canvas.
func (c *Canvas) Image() *image.NRGBA { return c.img }

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.img.Rect.Dx() }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.img.Rect.Dy() }

// Background returns the fill colour used for extensions.
func (c *Canvas) Background() color.NRGBA { return c.bg }

// Foreground returns the default drawing colour.
func (c *Canvas) Foreground() color.NRGBA { return c.fg }

// Faces returns the font faces bound to the canvas.
func (c *Canvas) Faces() *fonts.Faces { return c.faces }

// ExtendedDown returns the total height added by [Canvas.ExtendDown].
func (c *Canvas) ExtendedDown() int { return c.extendedDown }

// ExtendedRight returns the total width added by [Canvas.ExtendRight].
func (c *Canvas) ExtendedRight() int { return c.extendedRight }

func (c *Canvas) trace(msg string, args ...any) {
	if c.log != nil {
		logger.Trace(c.log, msg, args...)
	}
}

// ///////////////////////////////////////////////
// Extension
// ///////////////////////////////////////////////

// ExtendDown grows the canvas by n rows. Existing pixels keep their
// coordinates and the new area is filled with the background.
func (c *Canvas) ExtendDown(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: down by %d", ErrInvalidExtent, n)
	}
	c.grow(0, n)
	c.extendedDown += n
	c.trace("extended canvas down", "by", n, "height", c.Height())
	return nil
}

// ExtendRight grows the canvas by n columns.
func (c *Canvas) ExtendRight(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: right by %d", ErrInvalidExtent, n)
	}
	c.grow(n, 0)
	c.extendedRight += n
	c.trace("extended canvas right", "by", n, "width", c.Width())
	return nil
}

func (c *Canvas) grow(dw, dh int) {
	next := image.NewNRGBA(image.Rect(0, 0, c.Width()+dw, c.Height()+dh))
	draw.Draw(next, next.Rect, image.NewUniform(c.bg), image.Point{}, draw.Src)
	draw.Draw(next, c.img.Rect, c.img, image.Point{}, draw.Src)
	c.img = next
}

// ///////////////////////////////////////////////
// Pasting
// ///////////////////////////////////////////////

// Paste composites img over the canvas with its top-left corner at at.
func (c *Canvas) Paste(img image.Image, at image.Point) {
	b := img.Bounds()
	draw.Draw(c.img, b.Sub(b.Min).Add(at), img, b.Min, draw.Over)
}

// PasteMasked composites img through mask, both aligned at at.
func (c *Canvas) PasteMasked(img image.Image, at image.Point, mask image.Image) {
	b := img.Bounds()
	draw.DrawMask(c.img, b.Sub(b.Min).Add(at), img, b.Min, mask, mask.Bounds().Min, draw.Over)
}

// PasteAlpha composites img with its alpha scaled by alpha/255.
func (c *Canvas) PasteAlpha(img image.Image, at image.Point, alpha uint8) {
	b := img.Bounds()
	draw.DrawMask(c.img, b.Sub(b.Min).Add(at), img, b.Min, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
}

// Fill replaces every pixel inside r with col.
func (c *Canvas) Fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

// ///////////////////////////////////////////////
// Encoding
// ///////////////////////////////////////////////

// EncodePNG returns the canvas as PNG bytes.
func (c *Canvas) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	c.trace("encoded png", "bytes", buf.Len())
	return buf.Bytes(), nil
}
