// filters.go holds bitmap helpers. Every function returns a new image and
// leaves its input untouched, so images shared through the image cache are
// never modified.

package drawing

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Tint recolours img to col while keeping its alpha channel, the way element
// and path icons are coloured to match a card.
func Tint(img image.Image, col color.NRGBA) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{R: col.R, G: col.G, B: col.B, A: px.A}
	})
}

// Resize scales img to exactly w×h with a Lanczos filter.
func Resize(img image.Image, w, h int) *image.NRGBA {
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// ResizeWidth scales img to width w, keeping its aspect ratio.
func ResizeWidth(img image.Image, w int) *image.NRGBA {
	return imaging.Resize(img, w, 0, imaging.Lanczos)
}

// ResizeHeight scales img to height h, keeping its aspect ratio.
func ResizeHeight(img image.Image, h int) *image.NRGBA {
	return imaging.Resize(img, 0, h, imaging.Lanczos)
}

// Crop returns the part of img inside r, rebased to the origin.
func Crop(img image.Image, r image.Rectangle) *image.NRGBA {
	return imaging.Crop(img, r)
}

// Blur applies a Gaussian blur with the given sigma.
func Blur(img image.Image, sigma float64) *image.NRGBA {
	return imaging.Blur(img, sigma)
}

// Darken multiplies the colour channels by factor, which is clamped to [0, 1].
func Darken(img image.Image, factor float64) *image.NRGBA {
	factor = min(max(factor, 0), 1)
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: clamp8(float64(px.R) * factor),
			G: clamp8(float64(px.G) * factor),
			B: clamp8(float64(px.B) * factor),
			A: px.A,
		}
	})
}

// WithAlpha scales the alpha channel of img by a/255.
func WithAlpha(img image.Image, a uint8) *image.NRGBA {
	return imaging.AdjustFunc(img, func(px color.NRGBA) color.NRGBA {
		px.A = uint8(uint16(px.A) * uint16(a) / 255)
		return px
	})
}

// ///////////////////////////////////////////////
// Dominant Colour
// ///////////////////////////////////////////////

// DominantColor returns the most common colour of img's mostly opaque pixels,
// quantised to 4 bits per channel and averaged within the winning bucket.
// Fully transparent images yield ok == false.
func DominantColor(img image.Image) (c color.NRGBA, ok bool) {
	type bucket struct {
		n       int
		r, g, b int
	}
	src := imaging.Clone(img)
	buckets := make(map[uint16]*bucket)
	var best *bucket
	for i := 0; i+3 < len(src.Pix); i += 4 {
		if src.Pix[i+3] < 128 {
			continue
		}
		r, g, b := src.Pix[i], src.Pix[i+1], src.Pix[i+2]
		key := uint16(r>>4)<<8 | uint16(g>>4)<<4 | uint16(b>>4)
		bk := buckets[key]
		if bk == nil {
			bk = &bucket{}
			buckets[key] = bk
		}
		bk.n++
		bk.r += int(r)
		bk.g += int(g)
		bk.b += int(b)
		if best == nil || bk.n > best.n {
			best = bk
		}
	}
	if best == nil {
		return color.NRGBA{}, false
	}
	return RGB(uint8(best.r/best.n), uint8(best.g/best.n), uint8(best.b/best.n)), true
}
