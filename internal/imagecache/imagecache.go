// Package imagecache decodes asset bitmaps once and shares them between
// composers.
//
// Images are keyed by absolute path, so "icon/../icon/a.png" and "icon/a.png"
// share an entry. Cached images are read-only; every drawing primitive that
// would modify one works on a copy.
package imagecache

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/qingque-bot/qingque/internal/paths"
)

// ErrMissingAsset is returned when an image file does not exist.
var ErrMissingAsset = fmt.Errorf("missing asset: %w", fs.ErrNotExist)

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// Cache maps absolute asset paths to decoded images.
type Cache struct {
	// root resolves relative paths.
	root string
	// mu guards entries and owners.
	mu sync.Mutex
	// entries holds decoded images by absolute path.
	entries map[string]*image.NRGBA
	// owners maps a cached image back to its key so [Cache.Close] can evict it.
	owners map[*image.NRGBA]string
}

// New returns an empty cache resolving relative paths against root.
func New(root string) *Cache {
	return &Cache{
		root:    root,
		entries: make(map[string]*image.NRGBA),
		owners:  make(map[*image.NRGBA]string),
	}
}

// Root returns the directory relative paths are resolved against.
func (c *Cache) Root() string { return c.root }

// key returns the absolute, cleaned form of path.
func (c *Cache) key(path string) (string, error) {
	p := filepath.FromSlash(path)
	if !filepath.IsAbs(p) {
		p = paths.AssetDir{Root: c.root}.Resolve(path)
	}
	return filepath.Abs(p)
}

// Get returns the decoded image at path, decoding it on first use. The
// result must not be modified.
func (c *Cache) Get(path string) (*image.NRGBA, error) {
	key, err := c.key(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	c.mu.Lock()
	if img, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return img, nil
	}
	c.mu.Unlock()

	img, err := decode(key)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		// Another goroutine decoded the same file first.
		return existing, nil
	}
	c.entries[key] = img
	c.owners[img] = key
	return img, nil
}

// decode reads and decodes the file at path into NRGBA.
func decode(path string) (*image.NRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba, nil
	}
	return imaging.Clone(src), nil
}

// Close evicts img if it came from this cache. Images that are not
// cache-managed are ignored.
func (c *Cache) Close(img image.Image) {
	n, ok := img.(*image.NRGBA)
	if !ok || n == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if key, ok := c.owners[n]; ok {
		delete(c.owners, n)
		delete(c.entries, key)
	}
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
	clear(c.owners)
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// ///////////////////////////////////////////////
// Preload
// ///////////////////////////////////////////////

// Preload decodes every file under the cache root matching one of patterns
// (doublestar globs such as "icon/element/*.png"). It returns the number of
// images now cached from those patterns.
func (c *Cache) Preload(ctx context.Context, patterns ...string) (int, error) {
	fsys := os.DirFS(c.root)
	loaded := 0
	for _, pattern := range patterns {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return loaded, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if err := ctx.Err(); err != nil {
				return loaded, err
			}
			if _, err := c.Get(m); err != nil {
				slog.Warn("preload failed", "path", m, "error", err)
				continue
			}
			loaded++
		}
	}
	slog.Debug("preloaded images", "count", loaded, "patterns", len(patterns))
	return loaded, nil
}
