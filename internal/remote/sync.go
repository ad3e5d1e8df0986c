package remote

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/qingque-bot/qingque/internal/atomicfile"
)

// CommitIndex is the mirror file naming the current commit.
const CommitIndex = "commit.index"

var (
	// ErrBadCommit is returned when the mirror publishes a malformed commit id.
	ErrBadCommit = errors.New("invalid commit id")
	// ErrUnsafePath is returned for archive entries that would land outside
	// the asset directory.
	ErrUnsafePath = errors.New("archive entry escapes the asset directory")
	// ErrNoBaseURL is returned by [Client.Sync] on a client without a mirror.
	ErrNoBaseURL = errors.New("no mirror base url configured")
	// ErrEntryTooLarge is returned for an archive entry that decompresses
	// past [ExtractOptions.MaxEntryBytes].
	ErrEntryTooLarge = errors.New("archive entry too large")
)

// DefaultMaxEntryBytes caps one decompressed archive entry. The largest
// asset, a splash image, is a few megabytes.
const DefaultMaxEntryBytes = 64 << 20

// commitRe accepts abbreviated and full lowercase git hashes.
var commitRe = regexp.MustCompile(`^[0-9a-f]{7,40}$`)

// ///////////////////////////////////////////////
// Types
// ///////////////////////////////////////////////

// SyncOptions configures [Client.Sync].
type SyncOptions struct {
	// Root is the asset directory the archive unpacks into.
	Root string
	// StateFile records the commit the asset directory was last synced to.
	StateFile string
	// Include restricts extraction to slash-separated paths matching one of
	// these doublestar globs. Empty extracts everything.
	Include []string
	// Force downloads the archive even when the commit is unchanged.
	Force bool
	// TempDir holds the archive while it is unpacked. Empty uses the system
	// temp directory.
	TempDir string
}

// SyncResult reports what [Client.Sync] did.
type SyncResult struct {
	// Previous is the locally recorded commit, empty on a first sync.
	Previous string
	// Commit is the commit published by the mirror.
	Commit string
	// Updated is true when an archive was unpacked.
	Updated bool
	// Files is the number of files written.
	Files int
	// Skipped counts archive entries filtered out by Include or lacking an
	// extension.
	Skipped int
}

// ///////////////////////////////////////////////
// Sync
// ///////////////////////////////////////////////

// Latest returns the commit currently published by the mirror.
func (c *Client) Latest(ctx context.Context) (string, error) {
	if c.base == "" {
		return "", ErrNoBaseURL
	}
	body, err := c.Fetch(ctx, c.URL(CommitIndex))
	if err != nil {
		return "", err
	}
	commit := strings.TrimSpace(string(body))
	if !commitRe.MatchString(commit) {
		return "", fmt.Errorf("%w: %q", ErrBadCommit, commit)
	}
	return commit, nil
}

// ReadCommit returns the commit recorded in file, or "" when none is.
func ReadCommit(file string) string {
	data, err := os.ReadFile(file)
	if err != nil {
		return ""
	}
	commit := strings.TrimSpace(string(data))
	if !commitRe.MatchString(commit) {
		return ""
	}
	return commit
}

// Sync brings the asset directory up to the mirror's current commit. The
// commit marker is only written after every entry unpacked, so an interrupted
// sync is retried in full next time.
func (c *Client) Sync(ctx context.Context, opts SyncOptions) (SyncResult, error) {
	if opts.Root == "" || opts.StateFile == "" {
		return SyncResult{}, errors.New("sync: root and state file are required")
	}
	latest, err := c.Latest(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("sync: %w", err)
	}
	res := SyncResult{Previous: ReadCommit(opts.StateFile), Commit: latest}
	if res.Previous == latest && !opts.Force {
		slog.Info("assets already up to date", "commit", latest)
		return res, nil
	}
	slog.Info("downloading asset archive", "previous", res.Previous, "commit", latest)

	archive, err := c.download(ctx, c.URL(latest+".zip"), opts.TempDir)
	if err != nil {
		return res, fmt.Errorf("sync: %w", err)
	}
	defer os.Remove(archive)

	zr, err := zip.OpenReader(archive)
	if err != nil {
		if zr != nil {
			zr.Close()
		}
		if errors.Is(err, zip.ErrInsecurePath) {
			return res, fmt.Errorf("sync: %w: %w", ErrUnsafePath, err)
		}
		return res, fmt.Errorf("sync: open archive: %w", err)
	}
	defer zr.Close()

	res.Files, res.Skipped, err = Extract(ctx, &zr.Reader, ExtractOptions{
		Root:    opts.Root,
		Include: opts.Include,
		Commit:  latest,
	})
	if err != nil {
		return res, fmt.Errorf("sync: %w", err)
	}
	if err := atomicfile.Write(opts.StateFile, []byte(latest+"\n"), 0o644); err != nil {
		return res, fmt.Errorf("sync: record commit: %w", err)
	}
	res.Updated = true
	slog.Info("assets updated", "commit", latest, "files", res.Files, "skipped", res.Skipped)
	return res, nil
}

// download streams rawURL into a temp file in dir and returns its path.
func (c *Client) download(ctx context.Context, rawURL, dir string) (string, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp(dir, "qingque-assets-*.zip")
	if err != nil {
		return "", fmt.Errorf("create archive file: %w", err)
	}
	name := f.Name()
	n, err := io.Copy(f, io.LimitReader(resp.Body, c.maxArchive+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > c.maxArchive {
		err = fmt.Errorf("%s: %w (limit %d bytes)", rawURL, ErrTooLarge, c.maxArchive)
	}
	if err != nil {
		os.Remove(name)
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	slog.Debug("archive downloaded", "url", rawURL, "bytes", n)
	return name, nil
}

// ///////////////////////////////////////////////
// Extract
// ///////////////////////////////////////////////

// ExtractOptions configures [Extract].
type ExtractOptions struct {
	// Root is the destination directory.
	Root string
	// Include filters entries by doublestar glob. Empty keeps everything.
	Include []string
	// Commit, when set, strips a leading "<repo>-<commit>/" directory as
	// found in GitHub source archives.
	Commit string
	// MaxEntryBytes caps each decompressed entry. Zero uses
	// [DefaultMaxEntryBytes].
	MaxEntryBytes int64
}

// Extract writes the files of zr under opts.Root. Directory entries and
// files without an extension are skipped. An entry naming a path outside
// Root aborts the extraction with [ErrUnsafePath], and one larger than
// MaxEntryBytes with [ErrEntryTooLarge].
func Extract(ctx context.Context, zr *zip.Reader, opts ExtractOptions) (written, skipped int, err error) {
	limit := opts.MaxEntryBytes
	if limit <= 0 {
		limit = DefaultMaxEntryBytes
	}
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return written, skipped, err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		name := stripArchivePrefix(f.Name, opts.Commit)
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return written, skipped, fmt.Errorf("%w: %s", ErrUnsafePath, f.Name)
		}
		if path.Ext(name) == "" || !matchAny(opts.Include, name) {
			skipped++
			continue
		}
		if err := extractFile(f, filepath.Join(opts.Root, filepath.FromSlash(name)), limit); err != nil {
			return written, skipped, err
		}
		written++
	}
	return written, skipped, nil
}

func extractFile(f *zip.File, dest string, limit int64) error {
	if f.UncompressedSize64 > uint64(limit) {
		return fmt.Errorf("%s: %w (%d bytes, limit %d)", f.Name, ErrEntryTooLarge, f.UncompressedSize64, limit)
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	if _, err := atomicfile.WriteFrom(dest, &cappedReader{r: rc, left: limit}, 0o644); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// cappedReader fails with [ErrEntryTooLarge] once more than left bytes are
// read, so an entry whose header understates its size is still bounded.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.left < 0 {
		return 0, ErrEntryTooLarge
	}
	if int64(len(p)) > c.left+1 {
		p = p[:c.left+1]
	}
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		return n, ErrEntryTooLarge
	}
	return n, err
}

func stripArchivePrefix(name, commit string) string {
	if commit == "" {
		return name
	}
	first, rest, ok := strings.Cut(name, "/")
	if ok && strings.HasSuffix(first, "-"+commit) {
		return rest
	}
	return name
}

// matchAny reports whether name matches one of patterns. No patterns
// matches everything.
func matchAny(patterns []string, name string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}
