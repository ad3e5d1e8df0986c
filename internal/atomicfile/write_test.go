// write_test.go tests [Write] and [WriteFrom] for basic correctness, parent
// directory creation, and cleanup of temp files on failure.

package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteBasic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "card.png")
	data := []byte("\x89PNG fake")

	if err := Write(path, data, 0o644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("got %q, want %q", got, data)
	}
}

func TestWriteCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icon", "element", "Fire.png")

	if err := Write(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Stat: %v", err)
	}
}

func TestWriteOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overwrite.txt")

	if err := Write(path, []byte("original"), 0o644); err != nil {
		t.Fatalf("first Write failed: %v", err)
	}
	if err := Write(path, []byte("updated"), 0o644); err != nil {
		t.Fatalf("second Write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "updated" {
		t.Errorf("content = %q, want %q", got, "updated")
	}
}

func TestWriteFromCountsBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stream.json")

	n, err := WriteFrom(path, strings.NewReader(`{"a":1}`), 0o644)
	if err != nil {
		t.Fatalf("WriteFrom: %v", err)
	}
	if n != 7 {
		t.Errorf("n = %d, want 7", n)
	}
}

// failingReader returns an error after yielding a few bytes.
type failingReader struct{ sent bool }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.sent {
		return 0, errors.New("connection reset")
	}
	r.sent = true
	return copy(p, "partial"), nil
}

func TestWriteFromCleanupOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "download.png")

	if _, err := WriteFrom(path, &failingReader{}, 0o644); err == nil {
		t.Fatal("expected error from failing reader")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		t.Errorf("file left behind: %s", e.Name())
	}
}
