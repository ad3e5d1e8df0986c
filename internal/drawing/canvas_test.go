package drawing

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

var (
	black = RGB(0, 0, 0)
	white = RGB(255, 255, 255)
	red   = RGB(255, 0, 0)
	blue  = RGB(0, 0, 255)
)

func newTestCanvas(w, h int) *Canvas {
	return New(w, h, Options{Background: black, Foreground: white})
}

// ///////////////////////////////////////////////
// Extension
// ///////////////////////////////////////////////

func TestExtendDownKeepsPixels(t *testing.T) {
	c := newTestCanvas(10, 10)
	c.Fill(image.Rect(0, 0, 1, 1), red)

	if err := c.ExtendDown(5); err != nil {
		t.Fatalf("ExtendDown: %v", err)
	}
	if err := c.ExtendDown(3); err != nil {
		t.Fatalf("ExtendDown: %v", err)
	}
	if c.Height() != 18 || c.Width() != 10 {
		t.Fatalf("size = %dx%d, want 10x18", c.Width(), c.Height())
	}
	if c.ExtendedDown() != 8 {
		t.Errorf("ExtendedDown = %d, want 8", c.ExtendedDown())
	}
	if got := c.Image().NRGBAAt(0, 0); got != red {
		t.Errorf("origin pixel = %v, want %v", got, red)
	}
	if got := c.Image().NRGBAAt(5, 17); got != black {
		t.Errorf("extension pixel = %v, want background %v", got, black)
	}
}

func TestExtendRejectsNonPositive(t *testing.T) {
	c := newTestCanvas(4, 4)
	for _, n := range []int{0, -3} {
		if err := c.ExtendDown(n); !errors.Is(err, ErrInvalidExtent) {
			t.Errorf("ExtendDown(%d) = %v, want ErrInvalidExtent", n, err)
		}
		if err := c.ExtendRight(n); !errors.Is(err, ErrInvalidExtent) {
			t.Errorf("ExtendRight(%d) = %v, want ErrInvalidExtent", n, err)
		}
	}
	if c.Width() != 4 || c.Height() != 4 {
		t.Errorf("size changed to %dx%d", c.Width(), c.Height())
	}
}

func TestExtendRight(t *testing.T) {
	c := newTestCanvas(4, 4)
	if err := c.ExtendRight(6); err != nil {
		t.Fatalf("ExtendRight: %v", err)
	}
	if c.Width() != 10 || c.ExtendedRight() != 6 {
		t.Errorf("width = %d extended = %d, want 10 and 6", c.Width(), c.ExtendedRight())
	}
}

// ///////////////////////////////////////////////
// Pasting and Shapes
// ///////////////////////////////////////////////

func TestPasteOffsetsSource(t *testing.T) {
	c := newTestCanvas(8, 8)
	src := image.NewNRGBA(image.Rect(10, 10, 12, 12))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	c.Paste(src, image.Pt(3, 3))

	if got := c.Image().NRGBAAt(4, 4); got != white {
		t.Errorf("pasted pixel = %v, want %v", got, white)
	}
	if got := c.Image().NRGBAAt(5, 5); got != black {
		t.Errorf("outside pixel = %v, want %v", got, black)
	}
}

func TestBoxFillAndOutline(t *testing.T) {
	c := newTestCanvas(20, 20)
	c.Box(image.Rect(2, 2, 8, 8), BoxStyle{Fill: red})
	if got := c.Image().NRGBAAt(5, 5); got != red {
		t.Errorf("filled pixel = %v, want %v", got, red)
	}

	c.Box(image.Rect(10, 10, 18, 18), BoxStyle{Width: 2})
	if got := c.Image().NRGBAAt(10, 14); got != white {
		t.Errorf("outline pixel = %v, want foreground", got)
	}
	if got := c.Image().NRGBAAt(14, 14); got != black {
		t.Errorf("interior pixel = %v, want background", got)
	}
}

func TestCircleCoversCentre(t *testing.T) {
	c := newTestCanvas(40, 40)
	c.Circle(image.Rect(0, 0, 40, 40), CircleStyle{Fill: red})

	if got := c.Image().NRGBAAt(20, 20); got.R < 250 || got.G != 0 {
		t.Errorf("centre = %v, want red", got)
	}
	if got := c.Image().NRGBAAt(0, 0); got != black {
		t.Errorf("corner = %v, want background", got)
	}
}

func TestGradientEndpoints(t *testing.T) {
	tests := []struct {
		name       string
		dir        Direction
		first, end image.Point
	}{
		{"vertical", Vertical, image.Pt(3, 0), image.Pt(3, 9)},
		{"horizontal", Horizontal, image.Pt(0, 3), image.Pt(9, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCanvas(10, 10)
			c.GradientBox(image.Rect(0, 0, 10, 10), red, blue, tt.dir)
			if got := c.Image().NRGBAAt(tt.first.X, tt.first.Y); got != red {
				t.Errorf("start = %v, want %v", got, red)
			}
			if got := c.Image().NRGBAAt(tt.end.X, tt.end.Y); got != blue {
				t.Errorf("end = %v, want %v", got, blue)
			}
		})
	}
}

func TestEncodePNG(t *testing.T) {
	c := newTestCanvas(3, 2)
	data, err := c.EncodePNG()
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Errorf("bounds = %v, want 3x2", b)
	}
}

// ///////////////////////////////////////////////
// Colours
// ///////////////////////////////////////////////

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", red, false},
		{"0000ff", blue, false},
		{" #ffffff ", white, false},
		{"#fff", color.NRGBA{}, true},
		{"#GG0000", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInterpolate(t *testing.T) {
	from, to := RGB(117, 70, 66), RGB(201, 164, 104)
	if got := Interpolate(from, to, 0); got != from {
		t.Errorf("t=0 got %v, want %v", got, from)
	}
	if got := Interpolate(from, to, 1); got != to {
		t.Errorf("t=1 got %v, want %v", got, to)
	}
	if got := Interpolate(from, to, 7); got != to {
		t.Errorf("t is not clamped: got %v", got)
	}
	grey := Interpolate(RGB(0, 0, 0), RGB(200, 200, 200), 0.5)
	if grey != RGB(100, 100, 100) {
		t.Errorf("grey midpoint = %v, want (100,100,100)", grey)
	}
}

func TestInvert(t *testing.T) {
	if got := Invert(RGBA(10, 20, 30, 40)); got != RGBA(245, 235, 225, 40) {
		t.Errorf("got %v", got)
	}
}
