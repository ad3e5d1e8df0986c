package assets

import (
	"context"
	"log/slog"
	"sync"

	"github.com/qingque-bot/qingque/internal/lang"
)

// ///////////////////////////////////////////////
// Registry
// ///////////////////////////////////////////////

// Registry hands out one shared [Index] per language. Each Acquire must be
// paired with a Release; the index is unloaded when its count drops to zero.
type Registry struct {
	// root is the asset directory every index reads from.
	root string
	// mu guards entries.
	mu      sync.Mutex
	entries map[lang.Tag]*entry
}

// entry is a shared index and its number of holders.
type entry struct {
	idx  *Index
	refs int
}

// NewRegistry returns a registry reading indexes under root.
func NewRegistry(root string) *Registry {
	return &Registry{root: root, entries: make(map[lang.Tag]*entry)}
}

// Acquire returns the loaded index for tag, loading it on first use.
func (r *Registry) Acquire(ctx context.Context, tag lang.Tag) (*Index, error) {
	r.mu.Lock()
	e, ok := r.entries[tag]
	if !ok {
		e = &entry{idx: New(r.root, tag)}
		r.entries[tag] = e
	}
	e.refs++
	r.mu.Unlock()

	if err := e.idx.Load(ctx); err != nil {
		r.Release(tag)
		return nil, err
	}
	return e.idx, nil
}

// Release drops one hold on tag's index. Releasing a language that was
// never acquired does nothing.
func (r *Registry) Release(tag lang.Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[tag]
	if !ok {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	e.idx.Unload()
	delete(r.entries, tag)
	slog.Debug("asset index unloaded", "lang", tag)
}

// Holders returns the current hold count of tag.
func (r *Registry) Holders(tag lang.Tag) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[tag]; ok {
		return e.refs
	}
	return 0
}
