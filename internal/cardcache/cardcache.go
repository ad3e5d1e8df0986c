// Package cardcache keeps rendered card PNGs in Redis so that a repeated
// request for the same record skips composition.
//
// Keys are built from the card kind, its subject, the language, and a digest
// of every input that affects the pixels (the record bytes and render
// options). A card therefore never needs explicit invalidation when its
// record changes; stale entries simply age out after the TTL.
package cardcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/qingque-bot/qingque/internal/lang"
)

// keyPrefix namespaces every entry written by this package.
const keyPrefix = "qingque:card:"

// ///////////////////////////////////////////////
// Client
// ///////////////////////////////////////////////

// Client is the subset of the go-redis API the cache uses. *redis.Client
// satisfies it.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Scan(ctx context.Context, cursor uint64, match string, count int64) *redis.ScanCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Options configures [New].
type Options struct {
	// Addr is the Redis host:port.
	Addr string
	// TTL is how long an entry lives. Must be positive.
	TTL time.Duration
	// MaxRetries is passed to go-redis. Zero uses one retry.
	MaxRetries int
}

// ///////////////////////////////////////////////
// Key
// ///////////////////////////////////////////////

// Key identifies one rendered card.
type Key struct {
	Kind    string
	Subject string
	Lang    lang.Tag
	// Digest is the hex SHA-256 of every pixel-affecting input.
	Digest string
}

// NewKey digests parts and returns the key for a card.
func NewKey(kind, subject string, tag lang.Tag, parts ...[]byte) Key {
	h := sha256.New()
	for _, p := range parts {
		// Length-prefix each part so ("ab","c") and ("a","bc") differ.
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return Key{
		Kind:    kind,
		Subject: subject,
		Lang:    tag,
		Digest:  hex.EncodeToString(h.Sum(nil))[:32],
	}
}

// String returns the Redis key.
func (k Key) String() string {
	return keyPrefix + k.Kind + ":" + k.Subject + ":" + k.Lang.String() + ":" + k.Digest
}

// globEscaper quotes the characters SCAN MATCH treats as wildcards.
var globEscaper = strings.NewReplacer(`\`, `\\`, "*", `\*`, "?", `\?`, "[", `\[`, "]", `\]`)

// subjectPattern matches every entry for kind and subject in any language.
// Subjects carry user nicknames, so they are matched literally.
func subjectPattern(kind, subject string) string {
	return keyPrefix + globEscaper.Replace(kind) + ":" + globEscaper.Replace(subject) + ":*"
}

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// Cache reads and writes rendered cards.
type Cache struct {
	// client is the Redis connection.
	client Client
	// ttl is applied to every write.
	ttl time.Duration
	// log receives cache failures that are bypassed rather than returned.
	log *slog.Logger
}

// New connects to the Redis server at opts.Addr. Redis connects lazily, so
// New pings once to surface an unreachable server at startup.
func New(ctx context.Context, opts Options) (*Cache, error) {
	if opts.Addr == "" {
		return nil, errors.New("cardcache: address is required")
	}
	retries := opts.MaxRetries
	if retries == 0 {
		retries = 1
	}
	client := redis.NewClient(&redis.Options{
		Addr:       opts.Addr,
		MaxRetries: retries,
	})
	c, err := NewWithClient(client, opts.TTL)
	if err != nil {
		client.Close()
		return nil, err
	}
	if err := c.Ping(ctx); err != nil {
		client.Close()
		return nil, err
	}
	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client Client, ttl time.Duration) (*Cache, error) {
	if client == nil {
		return nil, errors.New("cardcache: client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cardcache: ttl must be positive, got %s", ttl)
	}
	return &Cache{client: client, ttl: ttl, log: slog.Default()}, nil
}

// SetLogger replaces the logger used for bypassed failures.
func (c *Cache) SetLogger(l *slog.Logger) {
	if l != nil {
		c.log = l
	}
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Ping checks the server is reachable.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Get returns the cached PNG for k. A miss returns (nil, false, nil).
func (c *Cache) Get(ctx context.Context, k Key) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, k.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", k, err)
	}
	return b, true, nil
}

// Put stores png under k with the cache TTL.
func (c *Cache) Put(ctx context.Context, k Key, png []byte) error {
	if len(png) == 0 {
		return fmt.Errorf("put %s: empty image", k)
	}
	if err := c.client.Set(ctx, k.String(), png, c.ttl).Err(); err != nil {
		return fmt.Errorf("put %s: %w", k, err)
	}
	return nil
}

// Render returns the cached card for k, or calls render and caches its
// result. Cache failures are logged and bypassed; only render errors are
// returned. A failed render is never cached.
func (c *Cache) Render(ctx context.Context, k Key, render func(context.Context) ([]byte, error)) ([]byte, error) {
	png, ok, err := c.Get(ctx, k)
	switch {
	case err != nil:
		c.log.Warn("card cache read failed", "key", k.String(), "error", err)
	case ok:
		c.log.Debug("card cache hit", "key", k.String())
		return png, nil
	}

	png, err = render(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.Put(ctx, k, png); err != nil {
		c.log.Warn("card cache write failed", "key", k.String(), "error", err)
	}
	return png, nil
}

// Invalidate drops every cached card for kind and subject across all
// languages and digests. It returns the number of entries removed.
func (c *Cache) Invalidate(ctx context.Context, kind, subject string) (int, error) {
	pattern := subjectPattern(kind, subject)
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return removed, fmt.Errorf("scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			n, err := c.client.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("delete %s: %w", pattern, err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
