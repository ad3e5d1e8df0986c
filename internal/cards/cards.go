// Package cards holds the card composers: the Mihomo character sheet, the
// battle chronicle overview, forgotten hall floors, simulated universe runs,
// character rosters and player summaries.
//
// Every composer implements [render.Composer] and is driven by [render.Run],
// which acquires the asset index, hands out a canvas and releases everything
// afterwards. Composers only describe layout.
package cards

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/qingque-bot/qingque/internal/drawing"
	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/records"
	"github.com/qingque-bot/qingque/internal/render"
)

// ErrLayout matches every [*LayoutError].
var ErrLayout = errors.New("card layout violation")

// LayoutError reports content that cannot be laid out, such as a box
// indicator longer than its box.
type LayoutError struct {
	// Kind names the element ("indicator", "slot", ...).
	Kind string
	// Value is the offending content.
	Value string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("layout: %s %q does not fit", e.Kind, e.Value)
}

// Is makes errors.Is(err, ErrLayout) hold.
func (e *LayoutError) Is(target error) bool { return target == ErrLayout }

// Footer text printed in the universe font on every card.
const supportedByLine = "Supported by Interastral Peace Corporation"

// timestampLayout formats chronicle times, which are always in UTC+8.
const timestampLayout = "Mon, Jan 02 2006 15:04"

// formatTimestamp renders t in UTC+8 with the zone suffix.
func formatTimestamp(t time.Time) string {
	return t.In(records.ChinaStandardTime).Format(timestampLayout) + " UTC+8"
}

// twoDigits zero-pads levels the way every card prints them.
func twoDigits(n int) string { return fmt.Sprintf("%02d", n) }

// ///////////////////////////////////////////////
// Painter
// ///////////////////////////////////////////////

// painter wraps a job and its canvas. The first failure sticks: later calls
// become no-ops and [painter.Err] reports it, so layout code reads top to
// bottom without an error check per primitive.
type painter struct {
	j   *render.Job
	c   *drawing.Canvas
	err error
}

func newPainter(j *render.Job, c *drawing.Canvas) *painter {
	return &painter{j: j, c: c}
}

// Err returns the first failure.
func (p *painter) Err() error { return p.err }

func (p *painter) fail(err error) {
	if p.err == nil && err != nil {
		p.err = err
	}
}

// section checks for cancellation before a named part of the card.
func (p *painter) section(name string) bool {
	if p.err != nil {
		return false
	}
	p.fail(p.j.Check(name))
	return p.err == nil
}

// image fetches an asset bitmap. The result is shared and read-only.
func (p *painter) image(path string) *image.NRGBA {
	if p.err != nil {
		return nil
	}
	img, err := p.j.Image(path)
	if err != nil {
		p.fail(fmt.Errorf("load %s: %w", path, err))
		return nil
	}
	return img
}

// icon fetches path and scales it to a size×size square.
func (p *painter) icon(path string, size int) *image.NRGBA {
	img := p.image(path)
	if img == nil {
		return nil
	}
	return drawing.Resize(img, size, size)
}

// tinted fetches path, recolours it to col and scales it to size×size.
func (p *painter) tinted(path string, size int, col color.NRGBA) *image.NRGBA {
	img := p.image(path)
	if img == nil {
		return nil
	}
	return drawing.Resize(drawing.Tint(img, col), size, size)
}

// tint recolours img to col. A nil img stays nil.
func (p *painter) tint(img *image.NRGBA, col color.NRGBA) *image.NRGBA {
	if img == nil {
		return nil
	}
	return drawing.Tint(img, col)
}

// resize scales img to w×h. A nil img stays nil.
func (p *painter) resize(img *image.NRGBA, w, h int) *image.NRGBA {
	if img == nil {
		return nil
	}
	return drawing.Resize(img, w, h)
}

// paste composites img at (x, y). A nil img is skipped.
func (p *painter) paste(img *image.NRGBA, x, y int) {
	if p.err != nil || img == nil {
		return
	}
	p.c.Paste(img, image.Pt(x, y))
}

func (p *painter) pasteAlpha(img *image.NRGBA, x, y int, alpha uint8) {
	if p.err != nil || img == nil {
		return
	}
	p.c.PasteAlpha(img, image.Pt(x, y), alpha)
}

// pasteMasked composites img through mask, both aligned at (x, y).
func (p *painter) pasteMasked(img, mask *image.NRGBA, x, y int) {
	if p.err != nil || img == nil || mask == nil {
		return
	}
	p.c.PasteMasked(img, image.Pt(x, y), mask)
}

// box fills the rectangle from (x0, y0) to (x1, y1). A zero fill uses the
// canvas foreground.
func (p *painter) box(x0, y0, x1, y1 int, fill color.NRGBA) {
	if p.err != nil {
		return
	}
	p.c.Box(image.Rect(x0, y0, x1, y1), drawing.BoxStyle{Fill: fill})
}

// outline draws a box border of the given width in fill.
func (p *painter) outline(x0, y0, x1, y1, width int, fill color.NRGBA) {
	if p.err != nil {
		return
	}
	p.c.Box(image.Rect(x0, y0, x1, y1), drawing.BoxStyle{Fill: fill, Width: width})
}

// circle fills the ellipse inscribed in the rectangle.
func (p *painter) circle(x0, y0, x1, y1 int, fill color.NRGBA) {
	if p.err != nil {
		return
	}
	p.c.Circle(image.Rect(x0, y0, x1, y1), drawing.CircleStyle{Fill: fill})
}

// ring strokes the ellipse inscribed in the rectangle.
func (p *painter) ring(x0, y0, x1, y1 int, width float64, col color.NRGBA) {
	if p.err != nil {
		return
	}
	p.c.Circle(image.Rect(x0, y0, x1, y1), drawing.CircleStyle{Outline: col, Width: width})
}

func (p *painter) line(x0, y0, x1, y1 int, width float64, col color.NRGBA) {
	if p.err != nil {
		return
	}
	p.c.Line(image.Pt(x0, y0), image.Pt(x1, y1), col, width)
}

func (p *painter) gradient(x0, y0, x1, y1 int, g Gradient, dir drawing.Direction) {
	if p.err != nil {
		return
	}
	p.c.GradientBox(image.Rect(x0, y0, x1, y1), g.From, g.To, dir)
}

// text draws content and returns its width.
func (p *painter) text(content string, st drawing.TextStyle) int {
	if p.err != nil {
		return 0
	}
	w, err := p.c.Text(content, st)
	p.fail(err)
	return w
}

// measure returns the width of content in the UI face.
func (p *painter) measure(content string, size float64) int {
	if p.err != nil {
		return 0
	}
	w, err := p.c.Measure(content, size, fonts.UI)
	p.fail(err)
	return w
}

func (p *painter) extendDown(n int) {
	if p.err != nil || n <= 0 {
		return
	}
	p.fail(p.c.ExtendDown(n))
}

// supportedBy writes the universe-font footer at the bottom left.
func (p *painter) supportedBy(alpha uint8) {
	p.text(supportedByLine, drawing.TextStyle{
		Pos:    image.Pt(20, p.c.Height()-20),
		Size:   20,
		Family: fonts.Universe,
		Anchor: "ls",
		Alpha:  alpha,
	})
}

// credits writes the credits line unless the context hides it.
func (p *painter) credits(key string, at image.Point, anchor string, size float64, alpha uint8) {
	if p.j.HideCredits() {
		return
	}
	p.text(p.j.T.T(key), drawing.TextStyle{Pos: at, Size: size, Anchor: anchor, Alpha: alpha})
}

// timestamp writes t unless the context hides it.
func (p *painter) timestamp(t time.Time, at image.Point, anchor string, alpha uint8) {
	if p.j.HideTimestamp() || t.IsZero() {
		return
	}
	p.text(formatTimestamp(t), drawing.TextStyle{Pos: at, Size: 20, Anchor: anchor, Alpha: alpha})
}

// statName returns the short localized name of a stat field, falling back
// to the upstream name when the catalog has none.
func statName(j *render.Job, s records.Stat) string {
	key := "mihomo.stats_simple." + s.Field
	if name := j.T.T(key); name != key {
		return name
	}
	return s.Name
}

// alpha converts a 0-1 opacity to a byte.
func alpha(f float64) uint8 {
	return uint8(f*255 + 0.5)
}
