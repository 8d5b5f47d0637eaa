package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

// Bump when ClassMetadata changes shape.
const cacheSchemaVersion uint16 = 1

// cacheApp names the cache directory under the user cache root.
const cacheApp = "class-remapper"

// Cache stores library metadata on disk. A nil *Cache is valid and caches
// nothing.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16
	Path    string
	Classes []*ClassMetadata
}

// DefaultCacheDir returns $XDG_CACHE_HOME/class-remapper, falling back to
// ~/.cache/class-remapper.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		base = filepath.Join(home, ".cache")
	}

	return filepath.Join(base, cacheApp), nil
}

// OpenCache opens (creating if needed) a cache rooted at dir. An empty dir
// means DefaultCacheDir.
func OpenCache(dir string) (*Cache, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}

	return c.dir
}

func cacheKey(path string, info os.FileInfo) string {
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.Size(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(info.ModTime().UnixNano(), 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(int(cacheSchemaVersion))))

	return hex.EncodeToString(h.Sum(nil))
}

func (c *Cache) pathFor(key string) string {
	return filepath.Join(c.dir, "libs", key+".mp")
}

// Get returns the cached metadata of the library at path, if the entry was
// written for the same size and modification time.
func (c *Cache) Get(path string, info os.FileInfo) ([]*ClassMetadata, bool, error) {
	if c == nil {
		return nil, false, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(cacheKey(path, info)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, err
	}

	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry for %s: %w", path, err)
	}

	if payload.Schema != cacheSchemaVersion || payload.Path != path {
		return nil, false, nil
	}

	return payload.Classes, true, nil
}

// Put stores the metadata of the library at path. The entry is written to a
// temporary file and renamed into place.
func (c *Cache) Put(path string, info os.FileInfo, classes []*ClassMetadata) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(cacheKey(path, info))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}

	data, err := msgpack.Marshal(&cachePayload{Schema: cacheSchemaVersion, Path: path, Classes: classes})
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}

	defer os.Remove(f.Name())

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(f.Name(), p)
}

// Clear removes every cached entry.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return os.RemoveAll(filepath.Join(c.dir, "libs"))
}
