package httputil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCacheRoundTrip(t *testing.T) {
	c, err := NewCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("NewCache() failed: %v", err)
	}

	explanation := "**DNS resolution** walks the delegation chain from the root."
	if err := c.Set("explain:DNS:Recursive Resolver", explanation); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	var got string
	ok, err := c.Get("explain:DNS:Recursive Resolver", &got)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !ok {
		t.Fatal("Get() returned miss for stored key")
	}
	if got != explanation {
		t.Errorf("Get() = %q, want %q", got, explanation)
	}
}

func TestCacheMiss(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)

	var got string
	ok, err := c.Get("never stored", &got)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if ok {
		t.Error("Get() returned hit for missing key")
	}
	if got != "" {
		t.Errorf("value modified on miss: %q", got)
	}
}

func TestCacheExpiry(t *testing.T) {
	dir := t.TempDir()
	c, _ := NewCache(dir, time.Minute)
	if err := c.Set("stale", "old value"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// Age the entry past its TTL by rewinding the file mtime.
	path := c.keyPath("stale")
	old := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatalf("Chtimes() failed: %v", err)
	}

	var got string
	ok, err := c.Get("stale", &got)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("Get() error = %v, want ErrExpired", err)
	}
	if ok {
		t.Error("Get() returned hit for expired entry")
	}
}

func TestCacheZeroTTLNeverExpires(t *testing.T) {
	c, _ := NewCache(t.TempDir(), 0)
	c.Set("k", "v")

	path := c.keyPath("k")
	old := time.Now().Add(-24 * 365 * time.Hour)
	os.Chtimes(path, old, old)

	var got string
	ok, err := c.Get("k", &got)
	if err != nil || !ok {
		t.Fatalf("Get() = (%v, %v), want hit", ok, err)
	}
}

func TestCacheNamespace(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	explain := c.Namespace("explain:")
	generate := c.Namespace("generate:")

	explain.Set("DNS", "explanation")
	generate.Set("DNS", "graph json")

	var got string
	if ok, _ := explain.Get("DNS", &got); !ok || got != "explanation" {
		t.Errorf("explain namespace: got (%q, %v)", got, ok)
	}
	if ok, _ := generate.Get("DNS", &got); !ok || got != "graph json" {
		t.Errorf("generate namespace: got (%q, %v)", got, ok)
	}
	if ok, _ := c.Get("DNS", &got); ok {
		t.Error("unprefixed key should not collide with namespaced entries")
	}
}

func TestCacheKeysAreHashed(t *testing.T) {
	c, _ := NewCache(t.TempDir(), time.Hour)
	key := "explain:How does TLS work?/with:slashes\x00and nulls"
	if err := c.Set(key, "v"); err != nil {
		t.Fatalf("Set() failed for hostile key: %v", err)
	}
	entries, err := os.ReadDir(c.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if filepath.Ext(entries[0].Name()) != "" {
		t.Errorf("entry name should be a bare hash, got %q", entries[0].Name())
	}
}
