package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mindweave/mindweave/pkg/observability"
)

// ErrExpired is returned by [Cache.Get] when an entry exists on disk
// but has exceeded its TTL. Callers should fetch fresh data and refresh
// the entry with [Cache.Set].
var ErrExpired = errors.New("cache entry expired")

// Cache stores JSON-marshalable values as files, one per entry, with
// the filename derived from a SHA-256 hash of the key. Hashing keeps
// arbitrary keys (full prompts included) filesystem-safe.
//
// Entries expire based on file modification time. A TTL of 0 means
// entries never expire. A single Cache is not goroutine-safe; separate
// instances may share a directory.
type Cache struct {
	dir    string
	ttl    time.Duration
	prefix string
}

// NewCache creates a Cache rooted at dir with the given TTL. An empty
// dir selects ~/.cache/mindweave/. The directory is created if missing.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "mindweave")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Dir returns the absolute path to the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Get loads the entry for key into v. It returns (true, nil) on a hit,
// (false, nil) on a miss and (false, [ErrExpired]) when the entry is
// stale. v is only written on a hit.
func (c *Cache) Get(key string, v any) (bool, error) {
	path := c.keyPath(c.prefix + key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		observability.Cache().OnCacheMiss(context.Background(), c.prefix)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		observability.Cache().OnCacheMiss(context.Background(), c.prefix)
		return false, ErrExpired
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	observability.Cache().OnCacheHit(context.Background(), c.prefix)
	return true, json.Unmarshal(data, v)
}

// Set stores v under key, overwriting any existing entry and resetting
// its TTL clock.
func (c *Cache) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.WriteFile(c.keyPath(c.prefix+key), data, 0o644); err != nil {
		return err
	}
	observability.Cache().OnCacheSet(context.Background(), c.prefix, len(data))
	return nil
}

// Namespace returns a view of the cache that prefixes every key. The
// returned Cache shares the parent's directory and TTL. Calls chain.
func (c *Cache) Namespace(prefix string) *Cache {
	return &Cache{dir: c.dir, ttl: c.ttl, prefix: c.prefix + prefix}
}

func (c *Cache) keyPath(key string) string {
	h := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(h[:]))
}
