package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
)

// ErrNoSheet is returned by [Store.Calculator] before any sheet has loaded.
var ErrNoSheet = errors.New("no score sheet loaded")

// ///////////////////////////////////////////////
// Store
// ///////////////////////////////////////////////

// Store holds the current score sheet. Reload swaps it atomically, so a
// render that fetched a calculator keeps grading against one consistent
// sheet even if the file changes underneath it.
type Store struct {
	// path is the sheet file Reload reads.
	path string
	// current is the last sheet that decoded successfully.
	current atomic.Pointer[loadedSheet]
}

// loadedSheet pairs a sheet with its digest.
type loadedSheet struct {
	sheet  Sheet
	digest string
}

// NewStore returns an empty store reading path. Call [Store.Reload] before
// use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// LoadFile reads and decodes a sheet from path.
func LoadFile(path string) (Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read score sheet: %w", err)
	}
	return ParseSheet(data)
}

// Path returns the sheet file path.
func (s *Store) Path() string { return s.path }

// Reload re-reads the sheet file. On failure the previous sheet stays in
// place.
func (s *Store) Reload() error {
	sheet, err := LoadFile(s.path)
	if err != nil {
		return err
	}
	s.Set(sheet)
	slog.Debug("score sheet loaded", "path", s.path, "characters", len(sheet))
	return nil
}

// Set installs sheet as the current one.
func (s *Store) Set(sheet Sheet) {
	s.current.Store(&loadedSheet{sheet: sheet, digest: sheet.Digest()})
}

// Calculator returns a calculator bound to the current sheet.
func (s *Store) Calculator() (*Calculator, error) {
	p := s.current.Load()
	if p == nil {
		return nil, ErrNoSheet
	}
	return NewCalculator(p.sheet), nil
}

// Digest returns the digest of the current sheet, or "" before any sheet
// has loaded.
func (s *Store) Digest() string {
	p := s.current.Load()
	if p == nil {
		return ""
	}
	return p.digest
}

// Digest returns the hex SHA-256 of the sheet's canonical JSON. Map keys
// encode sorted, so equal sheets digest equally whatever the file layout.
func (sh Sheet) Digest() string {
	data, err := json.Marshal(sh)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Follow reloads the store each time w fires until w is closed. Reload
// errors are logged and the old sheet is kept. onReload, when not nil, runs
// after every successful reload.
func (s *Store) Follow(w *Watcher, onReload func()) {
	for {
		select {
		case <-w.done:
			return
		case <-w.Events():
			if err := s.Reload(); err != nil {
				slog.Warn("score sheet reload failed", "path", s.path, "error", err)
				continue
			}
			if onReload != nil {
				onReload()
			}
		}
	}
}
