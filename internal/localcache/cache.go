// Package localcache persists small string values in a JSON file on disk and
// encodes the application state snapshot stored there.
package localcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/service"
)

// Keys used by fintrack.
const (
	KeyUser  = "fintrack_user"
	KeyState = "finTrackState"
	KeyTheme = "fintrack_theme"
	// KeyPending is set while the snapshot holds changes the remote store lacks.
	KeyPending = "fintrack_pending_sync"
)

// FileCache is a service.Cache backed by a single JSON object on disk. Every write
// rewrites the file.
type FileCache struct {
	values map[string]string
	path   string
	mu     sync.Mutex
}

var _ service.Cache = (*FileCache)(nil)

// Open loads the cache at path, creating its directory if needed. A missing file is an
// empty cache. A file that is not a JSON object of strings is treated as corrupt: it is
// logged and the cache starts empty.
func Open(path string) (*FileCache, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: cache.path", common.ErrMissingConfig)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	c := &FileCache{path: path, values: make(map[string]string)}

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from user config
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.values); err != nil {
			slog.Warn("Local cache is corrupted, starting empty", "path", path, "error", err)
			c.values = make(map[string]string)
		}
	}
	return c, nil
}

// Path returns the file backing the cache.
func (c *FileCache) Path() string {
	return c.path
}

// Get returns the value stored under key.
func (c *FileCache) Get(key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok, nil
}

// Set stores value under key and flushes the file.
func (c *FileCache) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return c.flush()
}

// Delete removes key and flushes the file.
func (c *FileCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		return nil
	}
	delete(c.values, key)
	return c.flush()
}

// Clear removes every key and deletes the file.
func (c *FileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]string)
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	return nil
}

func (c *FileCache) flush() error {
	data, err := json.MarshalIndent(c.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("failed to replace cache: %w", err)
	}
	return nil
}

// Memory is an in-memory service.Cache.
type Memory struct {
	values map[string]string
	mu     sync.Mutex
}

var _ service.Cache = (*Memory)(nil)

// NewMemory returns an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete removes key.
func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Clear removes every key.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]string)
	return nil
}
