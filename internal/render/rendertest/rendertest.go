// Package rendertest builds throwaway asset trees and render contexts for
// composer tests.
package rendertest

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/fonts"
	"github.com/qingque-bot/qingque/internal/i18n"
	"github.com/qingque-bot/qingque/internal/imagecache"
	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/qingque-bot/qingque/internal/render"
)

// Clock is the fixed time returned by contexts built here.
var Clock = time.Date(2024, time.February, 3, 12, 30, 0, 0, time.UTC)

// Assets writes an English asset index under a temp dir and returns its
// root. Tables not named in tables are written as empty objects.
func Assets(t testing.TB, tables map[string]string) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "index", "en")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range assets.Tables() {
		body := "{}"
		if b, ok := tables[name]; ok {
			body = b
		}
		if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	nick := `{"characters":{},"light_cones":{},"relic_sets":{}}`
	if b, ok := tables[assets.TableNicknames]; ok {
		nick = b
	}
	if err := os.WriteFile(filepath.Join(root, "index", "nickname.json"), []byte(nick), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

// Images writes a solid w×h PNG at every asset-relative path under root.
func Images(t testing.TB, root string, w, h int, paths ...string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xc0
	}
	for _, rel := range paths {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		f, err := os.Create(p)
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}
	}
}

// Context returns a render context over root using Go Regular for both
// font families and an English catalog built from catalogJSON.
func Context(t testing.TB, root string, catalogJSON string) *render.Context {
	t.Helper()
	f, err := fonts.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse font: %v", err)
	}
	catalog := i18n.NewCatalog(lang.EN)
	if catalogJSON == "" {
		catalogJSON = "{}"
	}
	if err := catalog.Add(lang.EN, []byte(catalogJSON)); err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return &render.Context{
		Tag:      lang.EN,
		Catalog:  catalog,
		Registry: assets.NewRegistry(root),
		Images:   imagecache.New(root),
		Fonts:    fonts.NewSet(f, f),
		Now:      func() time.Time { return Clock },
	}
}

// Decode parses PNG output and fails the test on error.
func Decode(t testing.TB, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

// Opaque reports whether every pixel of img is fully opaque.
func Opaque(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// Solid is a convenience for a fully opaque colour.
func Solid(r, g, b uint8) color.NRGBA { return color.NRGBA{R: r, G: g, B: b, A: 255} }
