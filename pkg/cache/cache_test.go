package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "logo"); hit || err != nil {
		t.Fatalf("empty cache Get = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "logo", []byte("png bytes"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "logo")
	if err != nil || !hit || string(data) != "png bytes" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "logo"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "logo"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "logo"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "c"))
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if n, err := c.Len(); err != nil || n != 2 {
		t.Fatalf("Len() = %d, %v, want 2", n, err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatalf("cache dir missing after Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestPrefixed(t *testing.T) {
	ctx := context.Background()
	inner, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := Prefixed(inner, "deliverynote:")

	if err := c.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := inner.Get(ctx, "deliverynote:k"); !hit {
		t.Error("prefixed key not found in inner cache")
	}
	if _, hit, _ := inner.Get(ctx, "k"); hit {
		t.Error("unprefixed key should not exist")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := inner.Get(ctx, "deliverynote:k"); hit {
		t.Error("Delete did not remove the prefixed key")
	}

	if _, hit, err := Prefixed(nil, "x").Get(ctx, "k"); hit || err != nil {
		t.Error("Prefixed(nil) should behave as a null cache")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type entry struct {
		ContentType string `json:"contentType"`
		Data        []byte `json:"data"`
	}
	var got entry
	if err := GetJSON(ctx, c, "k", &got); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("GetJSON(missing) = %v, want ErrCacheMiss", err)
	}

	want := entry{ContentType: "image/png", Data: []byte{1, 2, 3}}
	if err := SetJSON(ctx, c, "k", want, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "k", &got); err != nil {
		t.Fatal(err)
	}
	if got.ContentType != want.ContentType || string(got.Data) != string(want.Data) {
		t.Errorf("GetJSON = %+v, want %+v", got, want)
	}

	_ = c.Set(ctx, "bad", []byte("not json"), 0)
	if err := GetJSON(ctx, c, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(bad) = %v, want ErrCacheMiss", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKey(t *testing.T) {
	a := Key("logo", "https://example.com/a.png")
	b := Key("logo", "https://example.com/b.png")
	if a == b {
		t.Error("different parts should give different keys")
	}
	if !strings.HasPrefix(a, "logo:") || len(a) != len("logo:")+64 {
		t.Errorf("Key = %q", a)
	}
	if Key("logo", "x") != Key("logo", "x") {
		t.Error("Key should be deterministic")
	}
}
