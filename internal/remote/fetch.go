package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/qingque-bot/qingque/internal/atomicfile"
)

// ErrStale marks data served from the on-disk cache because the download
// failed. The data returned alongside it is usable.
var ErrStale = errors.New("using cached copy")

// ///////////////////////////////////////////////
// Fetch with Fallback
// ///////////////////////////////////////////////

// FetchCached downloads rawURL, checks it with validate, and writes it to
// cachePath. When the download or validation fails, the previous copy at
// cachePath is returned together with an error wrapping [ErrStale].
//
// Returns nil data with an error when both the download and the cache fail.
func (c *Client) FetchCached(ctx context.Context, rawURL, cachePath string, validate func([]byte) error) ([]byte, error) {
	data, err := c.Fetch(ctx, rawURL)
	if err == nil && validate != nil {
		if verr := validate(data); verr != nil {
			err = fmt.Errorf("validate %s: %w", rawURL, verr)
		}
	}
	if err == nil {
		if wErr := atomicfile.Write(cachePath, data, 0o644); wErr != nil {
			slog.Warn("failed to write cache", "path", cachePath, "error", wErr)
		}
		return data, nil
	}
	slog.Warn("fetch failed, trying cache", "url", rawURL, "error", err)

	cached, cacheErr := os.ReadFile(cachePath)
	if cacheErr == nil && validate != nil {
		cacheErr = validate(cached)
	}
	if cacheErr == nil {
		return cached, fmt.Errorf("%w: %w", ErrStale, err)
	}
	return nil, fmt.Errorf("all sources failed: fetch: %w; cache: %w", err, cacheErr)
}
