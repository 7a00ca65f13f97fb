package session

import (
	"errors"
	"os"
	"strings"
	"sync"
)

// TokenCache persists the refresh token between process runs so a session can
// be restored at start.
type TokenCache interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// MemoryTokenCache keeps the token in memory only. Used in tests and for
// embeddings that manage persistence themselves.
type MemoryTokenCache struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenCache returns an empty in-memory cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

func (c *MemoryTokenCache) Load() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

func (c *MemoryTokenCache) Save(token string) error {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	return nil
}

func (c *MemoryTokenCache) Clear() error {
	return c.Save("")
}

// FileTokenCache stores the refresh token in a single file with owner-only
// permissions.
type FileTokenCache struct {
	path string
}

// NewFileTokenCache returns a cache backed by the file at path.
func NewFileTokenCache(path string) *FileTokenCache {
	return &FileTokenCache{path: path}
}

func (c *FileTokenCache) Load() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *FileTokenCache) Save(token string) error {
	return os.WriteFile(c.path, []byte(token), 0o600)
}

func (c *FileTokenCache) Clear() error {
	err := os.Remove(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
