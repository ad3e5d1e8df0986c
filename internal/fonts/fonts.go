// Package fonts loads the two card typefaces and hands out sized faces.
//
// A [Set] holds the parsed fonts and is shared by every composer. Faces are
// not safe for concurrent use, so each composition takes its own [Faces]
// from [Set.Faces] and closes it when done.
package fonts

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	tdfont "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// ErrMissingFont is returned when a font file does not exist.
var ErrMissingFont = fmt.Errorf("missing font: %w", fs.ErrNotExist)

// Family selects one of the two card typefaces.
type Family int

const (
	// UI is the general text face.
	UI Family = iota
	// Universe is the display face used for titles and credits.
	Universe
)

// String returns the family name for logs.
func (f Family) String() string {
	switch f {
	case UI:
		return "ui"
	case Universe:
		return "universe"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// ///////////////////////////////////////////////
// Font
// ///////////////////////////////////////////////

// Font is a parsed font file. Glyph-outline TrueType files are served by
// freetype; CFF outlines and collections go through x/image/font/opentype.
type Font struct {
	tt *truetype.Font
	ot *opentype.Font
}

// Parse decodes TTF, OTF, TTC, WOFF or WOFF2 data.
func Parse(data []byte) (*Font, error) {
	if hasMagic(data, "wOFF") || hasMagic(data, "wOF2") {
		sfnt, err := tdfont.ToSFNT(data)
		if err != nil {
			return nil, fmt.Errorf("convert woff to sfnt: %w", err)
		}
		data = sfnt
	}

	switch {
	case hasMagic(data, "OTTO"):
		ot, err := opentype.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse opentype: %w", err)
		}
		return &Font{ot: ot}, nil
	case hasMagic(data, "ttcf"):
		coll, err := opentype.ParseCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parse collection: %w", err)
		}
		ot, err := coll.Font(0)
		if err != nil {
			return nil, fmt.Errorf("collection font 0: %w", err)
		}
		return &Font{ot: ot}, nil
	}

	tt, ttErr := truetype.Parse(data)
	if ttErr == nil {
		return &Font{tt: tt}, nil
	}
	// freetype rejects some tables that sfnt understands.
	ot, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", errors.Join(ttErr, err))
	}
	return &Font{ot: ot}, nil
}

// hasMagic reports whether data starts with the 4-byte tag.
func hasMagic(data []byte, tag string) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte(tag))
}

// ParseFile reads and parses a font file.
func ParseFile(path string) (*Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFont, path)
		}
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// NewFace returns a face at size pixels per em.
func (f *Font) NewFace(size float64) (font.Face, error) {
	if f.tt != nil {
		return truetype.NewFace(f.tt, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		}), nil
	}
	face, err := opentype.NewFace(f.ot, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face: %w", err)
	}
	return face, nil
}

// ///////////////////////////////////////////////
// Set
// ///////////////////////////////////////////////

// Set holds one parsed font per [Family].
type Set struct {
	fonts map[Family]*Font
}

// NewSet builds a set from already-parsed fonts.
func NewSet(ui, universe *Font) *Set {
	return &Set{fonts: map[Family]*Font{UI: ui, Universe: universe}}
}

// LoadSet parses the UI and universe font files.
func LoadSet(uiPath, universePath string) (*Set, error) {
	ui, err := ParseFile(uiPath)
	if err != nil {
		return nil, fmt.Errorf("ui font: %w", err)
	}
	universe, err := ParseFile(universePath)
	if err != nil {
		return nil, fmt.Errorf("universe font: %w", err)
	}
	return NewSet(ui, universe), nil
}

// Faces returns an empty face cache bound to s.
func (s *Set) Faces() *Faces {
	return &Faces{set: s, faces: make(map[faceKey]font.Face)}
}

// ///////////////////////////////////////////////
// Faces
// ///////////////////////////////////////////////

type faceKey struct {
	family Family
	size   float64
}

// Faces caches sized faces for a single composition. It is not safe for
// concurrent use.
type Faces struct {
	set   *Set
	faces map[faceKey]font.Face
}

// Face returns the face for family at size, creating it on first use.
func (fc *Faces) Face(family Family, size float64) (font.Face, error) {
	k := faceKey{family, size}
	if face, ok := fc.faces[k]; ok {
		return face, nil
	}
	f, ok := fc.set.fonts[family]
	if !ok || f == nil {
		return nil, fmt.Errorf("no %s font loaded", family)
	}
	face, err := f.NewFace(size)
	if err != nil {
		return nil, err
	}
	fc.faces[k] = face
	return face, nil
}

// Close releases every face.
func (fc *Faces) Close() error {
	var errs []error
	for k, face := range fc.faces {
		if err := face.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(fc.faces, k)
	}
	return errors.Join(errs...)
}
