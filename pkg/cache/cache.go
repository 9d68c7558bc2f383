// Package cache implements the read-through response cache used for GET
// requests. Entries live on disk (one file per key) so they survive across CLI
// invocations, with a small in-process LRU in front of the disk tier.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gowebpki/jcs"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/spf13/afero"
)

const (
	// DefaultTTL is how long a response stays fresh when no TTL is given.
	DefaultTTL = 300 * time.Second

	// DefaultMemoryEntries bounds the in-process tier.
	DefaultMemoryEntries = 256

	entrySuffix = ".json"
)

// Config configures a Cache.
type Config struct {
	// Dir is the cache namespace directory. It is created on first use.
	Dir string

	// DefaultTTL applies to Set calls without an explicit TTL.
	// Default: 300 seconds
	DefaultTTL time.Duration

	// Enabled turns the cache on. A disabled cache never touches Fs.
	Enabled bool

	// Fs is the filesystem backing the disk tier.
	// Default: the OS filesystem
	Fs afero.Fs

	// MemoryEntries is the size of the in-process tier.
	// Default: 256
	MemoryEntries int

	Logger hclog.Logger
}

// DefaultDir returns ~/.cache/notion-cli, or a relative fallback when the home
// directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cache", "notion-cli")
	}
	return filepath.Join(home, ".cache", "notion-cli")
}

type entry struct {
	ExpiresAt time.Time       `json:"expires_at"`
	Value     json.RawMessage `json:"value"`
}

func (e entry) expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Cache is a TTL cache keyed by (endpoint, query params). It is safe for
// concurrent use.
type Cache struct {
	mu sync.Mutex

	fs         afero.Fs
	dir        string
	defaultTTL time.Duration
	enabled    bool
	ready      bool

	mem    *expirable.LRU[string, entry]
	logger hclog.Logger
}

// New creates a Cache. No filesystem access happens until the first Get,
// Set, Invalidate or Len on an enabled cache.
func New(cfg Config) *Cache {
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = DefaultTTL
	}
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir()
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.MemoryEntries <= 0 {
		cfg.MemoryEntries = DefaultMemoryEntries
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	return &Cache{
		fs:         cfg.Fs,
		dir:        cfg.Dir,
		defaultTTL: cfg.DefaultTTL,
		enabled:    cfg.Enabled,
		mem:        expirable.NewLRU[string, entry](cfg.MemoryEntries, nil, cfg.DefaultTTL),
		logger:     cfg.Logger.Named("cache"),
	}
}

// Dir returns the cache namespace directory.
func (c *Cache) Dir() string { return c.dir }

// Enabled reports whether the cache is enabled.
func (c *Cache) Enabled() bool { return c.enabled }

// DefaultTTL returns the TTL used when Set is called without one.
func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// Key derives the storage key for an endpoint and its query parameters: the
// SHA-256 of the canonical JSON form of {"endpoint": ..., "params": ...}.
// Nil params and empty params produce the same key.
func Key(endpoint string, params map[string]string) (string, error) {
	if params == nil {
		params = map[string]string{}
	}
	raw, err := json.Marshal(map[string]any{
		"endpoint": endpoint,
		"params":   params,
	})
	if err != nil {
		return "", fmt.Errorf("error encoding cache key: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("error canonicalizing cache key: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the cached response for endpoint and params. Missing, expired
// and unreadable entries are all reported as a miss.
func (c *Cache) Get(endpoint string, params map[string]string) (map[string]any, bool) {
	if !c.enabled {
		return nil, false
	}

	key, err := Key(endpoint, params)
	if err != nil {
		c.logger.Warn("error building cache key", "endpoint", endpoint, "error", err)
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.mem.Get(key)
	if !ok {
		if err := c.ensureDirLocked(); err != nil {
			c.logger.Warn("error preparing cache directory", "dir", c.dir, "error", err)
			return nil, false
		}
		e, ok = c.readLocked(key)
		if !ok {
			return nil, false
		}
	}

	if e.expired(now) {
		c.mem.Remove(key)
		if err := c.fs.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
			c.logger.Debug("error removing expired cache entry", "key", key, "error", err)
		}
		return nil, false
	}

	var value map[string]any
	if err := json.Unmarshal(e.Value, &value); err != nil {
		c.logger.Warn("error decoding cache entry", "key", key, "error", err)
		return nil, false
	}
	c.mem.Add(key, e)

	return value, true
}

// Set stores value under endpoint and params. A non-positive ttl uses the
// default TTL.
func (c *Cache) Set(endpoint string, params map[string]string, value map[string]any, ttl time.Duration) error {
	if !c.enabled {
		return nil
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	key, err := Key(endpoint, params)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding cache value: %w", err)
	}
	e := entry{
		ExpiresAt: time.Now().Add(ttl),
		Value:     raw,
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureDirLocked(); err != nil {
		return err
	}

	// Write to a temp file and rename so readers never see a partial entry.
	tmp := c.path(key) + ".tmp"
	if err := afero.WriteFile(c.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing cache entry: %w", err)
	}
	if err := c.fs.Rename(tmp, c.path(key)); err != nil {
		_ = c.fs.Remove(tmp)
		return fmt.Errorf("error committing cache entry: %w", err)
	}
	c.mem.Add(key, e)

	c.logger.Trace("cached response", "endpoint", endpoint, "ttl", ttl)
	return nil
}

// Invalidate removes cached entries and returns how many were removed.
//
// The pattern argument is accepted for forward compatibility but is not
// interpreted yet: every call clears the whole namespace.
func (c *Cache) Invalidate(pattern string) (int, error) {
	if !c.enabled {
		return 0, nil
	}
	if pattern != "" {
		c.logger.Debug("pattern invalidation is not supported, clearing all entries", "pattern", pattern)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Purge()

	if err := c.ensureDirLocked(); err != nil {
		return 0, err
	}
	names, err := c.entryNamesLocked()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, name := range names {
		if err := c.fs.Remove(filepath.Join(c.dir, name)); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return removed, fmt.Errorf("error removing cache entry %q: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// Len returns the number of entries stored on disk, including expired
// entries that have not been evicted yet.
func (c *Cache) Len() (int, error) {
	if !c.enabled {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ensureDirLocked(); err != nil {
		return 0, err
	}
	names, err := c.entryNamesLocked()
	if err != nil {
		return 0, err
	}
	return len(names), nil
}

// Close drops the in-process tier. The disk tier needs no teardown.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem.Purge()
	c.ready = false
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+entrySuffix)
}

func (c *Cache) ensureDirLocked() error {
	if c.ready {
		return nil
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("error creating cache directory: %w", err)
	}
	c.ready = true
	return nil
}

func (c *Cache) readLocked(key string) (entry, bool) {
	data, err := afero.ReadFile(c.fs, c.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("error reading cache entry", "key", key, "error", err)
		}
		return entry{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("corrupt cache entry, ignoring", "key", key, "error", err)
		return entry{}, false
	}
	return e, true
}

func (c *Cache) entryNamesLocked() ([]string, error) {
	infos, err := afero.ReadDir(c.fs, c.dir)
	if err != nil {
		return nil, fmt.Errorf("error listing cache directory: %w", err)
	}

	var names []string
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), entrySuffix) {
			continue
		}
		names = append(names, info.Name())
	}
	return names, nil
}
