package cardcache

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/qingque-bot/qingque/internal/lang"
)

// newTestCache returns a cache backed by an in-memory Redis server.
func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	c, err := NewWithClient(client, 10*time.Minute)
	if err != nil {
		t.Fatalf("NewWithClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewKeyDigest(t *testing.T) {
	a := NewKey("character", "UID-1/C-1102", lang.EN, []byte("ab"), []byte("c"))
	b := NewKey("character", "UID-1/C-1102", lang.EN, []byte("a"), []byte("bc"))
	if a.Digest == b.Digest {
		t.Error("split parts produced the same digest")
	}
	again := NewKey("character", "UID-1/C-1102", lang.EN, []byte("ab"), []byte("c"))
	if a != again {
		t.Errorf("got %v, want %v", again, a)
	}
	if len(a.Digest) != 32 {
		t.Errorf("digest length = %d, want 32", len(a.Digest))
	}
	want := "qingque:card:character:UID-1/C-1102:en:" + a.Digest
	if got := a.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNewWithClientValidates(t *testing.T) {
	if _, err := NewWithClient(nil, time.Minute); err == nil {
		t.Error("nil client accepted")
	}
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	if _, err := NewWithClient(client, 0); err == nil {
		t.Error("zero ttl accepted")
	}
}

func TestNewPings(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Options{Addr: mr.Addr(), TTL: time.Minute})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.Close()

	if _, err := New(context.Background(), Options{TTL: time.Minute}); err == nil {
		t.Error("empty address accepted")
	}
}

func TestGetPut(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	k := NewKey("chronicle", "1001", lang.JP, []byte("record"))

	if _, ok, err := c.Get(ctx, k); err != nil || ok {
		t.Fatalf("Get before Put = %v, %v, want miss", ok, err)
	}
	png := []byte("\x89PNG fake")
	if err := c.Put(ctx, k, png); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := c.Get(ctx, k)
	if err != nil || !ok {
		t.Fatalf("Get after Put = %v, %v, want hit", ok, err)
	}
	if !bytes.Equal(got, png) {
		t.Errorf("got %q, want %q", got, png)
	}

	if err := c.Put(ctx, k, nil); err == nil {
		t.Error("empty image accepted")
	}
}

func TestEntriesExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	k := NewKey("roster", "1001", lang.EN)

	if err := c.Put(ctx, k, []byte("png")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL(k.String()); ttl != 10*time.Minute {
		t.Errorf("ttl = %s, want 10m", ttl)
	}
	mr.FastForward(11 * time.Minute)
	if _, ok, _ := c.Get(ctx, k); ok {
		t.Error("entry survived its ttl")
	}
}

func TestRenderCachesResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	k := NewKey("player", "UID-1", lang.EN)

	calls := 0
	render := func(context.Context) ([]byte, error) {
		calls++
		return []byte("png"), nil
	}
	for range 3 {
		got, err := c.Render(ctx, k, render)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if string(got) != "png" {
			t.Errorf("got %q, want png", got)
		}
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
}

func TestRenderDoesNotCacheFailures(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	k := NewKey("player", "UID-1", lang.EN)
	boom := errors.New("boom")

	_, err := c.Render(ctx, k, func(context.Context) ([]byte, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("got %v, want boom", err)
	}
	if mr.Exists(k.String()) {
		t.Error("failed render was cached")
	}
}

func TestRenderBypassesUnreachableServer(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	got, err := c.Render(context.Background(), NewKey("player", "UID-1", lang.EN),
		func(context.Context) ([]byte, error) { return []byte("png"), nil })
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(got) != "png" {
		t.Errorf("got %q, want png", got)
	}
}

func TestInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	keep := NewKey("character", "UID-1/C-1003", lang.EN)
	drop := []Key{
		NewKey("character", "UID-1/C-1102", lang.EN, []byte("v1")),
		NewKey("character", "UID-1/C-1102", lang.EN, []byte("v2")),
		NewKey("character", "UID-1/C-1102", lang.KR),
	}
	for _, k := range append(drop, keep) {
		if err := c.Put(ctx, k, []byte("png")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	n, err := c.Invalidate(ctx, "character", "UID-1/C-1102")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != len(drop) {
		t.Errorf("removed %d, want %d", n, len(drop))
	}
	for _, k := range drop {
		if mr.Exists(k.String()) {
			t.Errorf("%s survived", k)
		}
	}
	if !mr.Exists(keep.String()) {
		t.Errorf("%s was removed", keep)
	}
}

func TestInvalidateMatchesSubjectLiterally(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	drop := NewKey("simulated-universe", "St*[el]le?/World 9", lang.EN)
	keep := []Key{
		NewKey("simulated-universe", "Stelle!/World 9", lang.EN),
		NewKey("simulated-universe", "Steele/World 9", lang.EN),
		NewKey("simulated-universe", `St\*[el]le?/World 9`, lang.EN),
	}
	for _, k := range append(keep, drop) {
		if err := c.Put(ctx, k, []byte("png")); err != nil {
			t.Fatalf("Put %s: %v", k, err)
		}
	}

	n, err := c.Invalidate(ctx, "simulated-universe", "St*[el]le?/World 9")
	if err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if n != 1 {
		t.Errorf("removed %d, want 1", n)
	}
	if mr.Exists(drop.String()) {
		t.Errorf("%s survived", drop)
	}
	for _, k := range keep {
		if !mr.Exists(k.String()) {
			t.Errorf("%s was removed", k)
		}
	}
}

func TestSubjectPatternEscapesGlob(t *testing.T) {
	got := subjectPattern("roster", `a*b?c[d]e\f`)
	want := `qingque:card:roster:a\*b\?c\[d\]e\\f:*`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
