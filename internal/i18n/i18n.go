// Package i18n serves UI strings from per-locale JSON catalogs.
//
// Catalogs live under <assets>/i18n/<locale>/*.json, where <locale> is a
// display locale such as "en-US". Keys are dotted paths into the nested JSON
// ("chronicles.days_active"). A lookup falls back to the default language,
// then to the raw key.
package i18n

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/qingque-bot/qingque/internal/lang"
	"github.com/tidwall/gjson"
)

// Translator resolves UI strings for one language.
type Translator interface {
	// T returns the string at key with positional placeholders ({0}, {1}, ...)
	// replaced by params.
	T(key string, params ...string) string
}

// ///////////////////////////////////////////////
// Catalog
// ///////////////////////////////////////////////

// Catalog holds the raw JSON documents of every loaded locale.
type Catalog struct {
	// mu guards docs.
	mu sync.RWMutex
	// docs holds documents per tag in load order; later documents win.
	docs map[lang.Tag][][]byte
	// fallback is consulted when a key is missing in the requested language.
	fallback lang.Tag
}

// NewCatalog returns an empty catalog falling back to fallback.
func NewCatalog(fallback lang.Tag) *Catalog {
	return &Catalog{docs: make(map[lang.Tag][][]byte), fallback: fallback}
}

// Add merges a JSON document into the catalog for tag.
func (c *Catalog) Add(tag lang.Tag, doc []byte) error {
	if !gjson.ValidBytes(doc) {
		return fmt.Errorf("i18n: invalid JSON document for %s", tag)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[tag] = append(c.docs[tag], doc)
	return nil
}

// LoadDir reads every <locale>/*.json under root. Directories whose name is
// not a known locale are skipped with a warning.
func (c *Catalog) LoadDir(root string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read i18n dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		tag, ok := lang.FromExternal(e.Name())
		if !ok {
			slog.Warn("skipping unknown i18n locale", "dir", e.Name())
			continue
		}
		files, err := filepath.Glob(filepath.Join(root, e.Name(), "*.json"))
		if err != nil {
			return fmt.Errorf("glob %s: %w", e.Name(), err)
		}
		sort.Strings(files)
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			if err := c.Add(tag, data); err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}
			slog.Debug("loaded i18n file", "locale", e.Name(), "file", filepath.Base(f))
		}
	}
	return nil
}

// lookup returns the string at key in tag, searching newer documents first.
func (c *Catalog) lookup(tag lang.Tag, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	docs := c.docs[tag]
	for i := len(docs) - 1; i >= 0; i-- {
		r := gjson.GetBytes(docs[i], key)
		if r.Exists() && r.Type == gjson.String {
			return r.Str, true
		}
	}
	return "", false
}

// Translate resolves key for tag with the default-language and raw-key
// fallbacks, then formats it with positional and named parameters.
func (c *Catalog) Translate(tag lang.Tag, key string, args []string, named map[string]string) string {
	text, ok := c.lookup(tag, key)
	if !ok && tag != c.fallback {
		slog.Debug("translation missing, using fallback language", "key", key, "lang", tag, "fallback", c.fallback)
		text, ok = c.lookup(c.fallback, key)
	}
	if !ok {
		slog.Debug("translation missing, using raw key", "key", key)
		return key
	}
	return Format(text, args, named)
}

// For binds the catalog to tag.
func (c *Catalog) For(tag lang.Tag) *Bound {
	return &Bound{catalog: c, tag: tag}
}

// ///////////////////////////////////////////////
// Bound
// ///////////////////////////////////////////////

// Bound is a [Translator] for a single language.
type Bound struct {
	catalog *Catalog
	tag     lang.Tag
}

// T implements [Translator].
func (b *Bound) T(key string, params ...string) string {
	return b.catalog.Translate(b.tag, key, params, nil)
}

// Tag returns the bound language.
func (b *Bound) Tag() lang.Tag { return b.tag }

// ///////////////////////////////////////////////
// Formatting
// ///////////////////////////////////////////////

// Format replaces {n} with args[n] and {name} with named[name]. Placeholders
// with no matching value are kept verbatim. "{{" and "}}" produce literal
// braces.
func Format(text string, args []string, named map[string]string) string {
	if !strings.ContainsAny(text, "{}") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '{' && i+1 < len(text) && text[i+1] == '{':
			b.WriteByte('{')
			i++
		case ch == '}' && i+1 < len(text) && text[i+1] == '}':
			b.WriteByte('}')
			i++
		case ch == '{':
			end := strings.IndexByte(text[i+1:], '}')
			if end < 0 {
				b.WriteString(text[i:])
				return b.String()
			}
			name := text[i+1 : i+1+end]
			b.WriteString(resolve(name, args, named))
			i += end + 1
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// resolve returns the value for a placeholder name or the placeholder itself.
func resolve(name string, args []string, named map[string]string) string {
	if n, err := strconv.Atoi(name); err == nil && n >= 0 && n < len(args) {
		return args[n]
	}
	if v, ok := named[name]; ok {
		return v
	}
	return "{" + name + "}"
}
