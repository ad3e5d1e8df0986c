// Package remote downloads assets and data files from the asset mirror.
//
// The mirror publishes a commit.index file naming the current StarRailRes
// commit and one <commit>.zip archive per commit. [Client.Sync] compares the
// published commit with the one recorded locally and unpacks the archive into
// the asset directory when they differ. [Client.FetchCached] downloads a
// single file and falls back to the last good copy on disk when the download
// fails.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// UserAgent is sent with every request. Main overrides it with the build
// version.
var UserAgent = "qingque/dev"

// ErrTooLarge is returned when a response exceeds the configured size limit.
var ErrTooLarge = errors.New("response too large")

// githubRepoRe extracts owner, repo, and an optional branch from a GitHub
// repository page URL.
var githubRepoRe = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/.]+?)(?:\.git)?(?:/tree/([^/]+))?/?$`)

// ///////////////////////////////////////////////
// Options
// ///////////////////////////////////////////////

// Options configures [New].
type Options struct {
	// BaseURL is the mirror root. It may be empty for clients that only call
	// [Client.FetchCached] with absolute URLs.
	BaseURL string
	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// Timeout bounds a single attempt. Zero leaves attempts bounded only by
	// the request context.
	Timeout time.Duration
	// MaxBytes caps a buffered response body.
	MaxBytes int64
	// MaxArchiveBytes caps a downloaded asset archive.
	MaxArchiveBytes int64
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions(baseURL string) Options {
	return Options{
		BaseURL:         baseURL,
		RetryMax:        2,
		Timeout:         60 * time.Second,
		MaxBytes:        10 << 20,
		MaxArchiveBytes: 2 << 30,
	}
}

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client talks to the asset mirror.
type Client struct {
	// base is the normalized mirror root without a trailing slash.
	base string
	// http retries transient failures.
	http *retryablehttp.Client
	// maxBytes caps buffered bodies.
	maxBytes int64
	// maxArchive caps archive downloads.
	maxArchive int64
}

// New returns a client for opts.
func New(opts Options) (*Client, error) {
	base := ""
	if opts.BaseURL != "" {
		var err error
		base, err = NormalizeBaseURL(opts.BaseURL)
		if err != nil {
			return nil, err
		}
	}

	hc := retryablehttp.NewClient()
	hc.RetryMax = opts.RetryMax
	hc.RetryWaitMin = 500 * time.Millisecond
	hc.RetryWaitMax = 5 * time.Second
	if opts.Timeout > 0 {
		hc.HTTPClient.Timeout = opts.Timeout
	}
	hc.Logger = nil

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	maxArchive := opts.MaxArchiveBytes
	if maxArchive <= 0 {
		maxArchive = 2 << 30
	}
	return &Client{base: base, http: hc, maxBytes: maxBytes, maxArchive: maxArchive}, nil
}

// NormalizeBaseURL validates raw and strips any trailing slash. A GitHub
// repository page URL is rewritten to its raw content root, using the master
// branch unless the URL names one.
func NormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if m := githubRepoRe.FindStringSubmatch(raw); m != nil {
		branch := m[3]
		if branch == "" {
			branch = "master"
		}
		return "https://raw.githubusercontent.com/" + m[1] + "/" + m[2] + "/" + branch, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base url %q: missing host", raw)
	}
	return strings.TrimRight(raw, "/"), nil
}

// BaseURL returns the normalized mirror root.
func (c *Client) BaseURL() string { return c.base }

// URL joins a slash-separated path onto the mirror root.
func (c *Client) URL(rel string) string {
	return c.base + "/" + strings.TrimLeft(rel, "/")
}

// get issues a GET and checks the status code. The caller closes the body.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return resp, nil
}

// Fetch downloads rawURL into memory.
func (c *Client) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", rawURL, err)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("%s: %w (limit %d bytes)", rawURL, ErrTooLarge, c.maxBytes)
	}
	return body, nil
}
