package fonts

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

func TestParseTrueType(t *testing.T) {
	f, err := Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.tt == nil {
		t.Error("glyf font should be served by freetype")
	}
	face, err := f.NewFace(20)
	if err != nil {
		t.Fatalf("NewFace: %v", err)
	}
	defer face.Close()
	if w := font.MeasureString(face, "Qingque").Ceil(); w <= 0 {
		t.Errorf("width = %d, want > 0", w)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"random", []byte("definitely not a font")},
		{"cff header only", []byte("OTTO\x00\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.data); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestParseFileMissing(t *testing.T) {
	_, err := ParseFile(filepath.Join(t.TempDir(), "SDK_SC_Web.ttf"))
	if !errors.Is(err, ErrMissingFont) || !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("got %v, want ErrMissingFont", err)
	}
}

func TestLoadSetAndFaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "go.ttf")
	if err := os.WriteFile(path, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	set, err := LoadSet(path, path)
	if err != nil {
		t.Fatalf("LoadSet: %v", err)
	}

	faces := set.Faces()
	a, err := faces.Face(UI, 30)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	b, err := faces.Face(UI, 30)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if a != b {
		t.Error("same family and size should reuse the face")
	}
	big, err := faces.Face(Universe, 60)
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if font.MeasureString(big, "A") <= font.MeasureString(a, "A") {
		t.Error("larger size should measure wider")
	}
	if err := faces.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestLoadSetMissingUniverse(t *testing.T) {
	dir := t.TempDir()
	ui := filepath.Join(dir, "ui.ttf")
	if err := os.WriteFile(ui, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSet(ui, filepath.Join(dir, "FirstWorld.ttf")); !errors.Is(err, ErrMissingFont) {
		t.Errorf("got %v, want ErrMissingFont", err)
	}
}

func TestFamilyString(t *testing.T) {
	if UI.String() != "ui" || Universe.String() != "universe" {
		t.Errorf("got %q/%q", UI, Universe)
	}
}
