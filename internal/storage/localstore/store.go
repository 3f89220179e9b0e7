// Package localstore provides a small persistent string key/value store
// backed by a single JSON file.
package localstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bobmcallan/folio/internal/common"
	"github.com/bobmcallan/folio/internal/interfaces"
)

// FileStore keeps all items in one JSON object on disk. Every mutation
// rewrites the file atomically.
type FileStore struct {
	path   string
	logger *common.Logger

	mu    sync.Mutex
	items map[string]string
}

// NewFileStore opens (or lazily creates) the store at path.
func NewFileStore(logger *common.Logger, path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("localstore: empty path")
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	fs := &FileStore{
		path:   path,
		logger: logger,
		items:  make(map[string]string),
	}

	if err := fs.load(); err != nil {
		return nil, err
	}

	logger.Debug().Str("path", path).Int("items", len(fs.items)).Msg("local store opened")
	return fs, nil
}

// Path returns the backing file path.
func (fs *FileStore) Path() string { return fs.path }

func (fs *FileStore) load() error {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", fs.path, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, &fs.items); err != nil {
		// A corrupt store is treated as empty.
		fs.logger.Warn().Err(err).Str("path", fs.path).Msg("local store unreadable, starting empty")
		fs.items = make(map[string]string)
	}
	return nil
}

// GetItem returns the value for key and whether it was present.
func (fs *FileStore) GetItem(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	v, ok := fs.items[key]
	return v, ok, nil
}

// SetItem stores value under key.
func (fs *FileStore) SetItem(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	fs.items[key] = value
	if err := fs.flush(); err != nil {
		if had {
			fs.items[key] = prev
		} else {
			delete(fs.items, key)
		}
		return err
	}
	return nil
}

// RemoveItem deletes key. Removing a missing key is not an error.
func (fs *FileStore) RemoveItem(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	prev, had := fs.items[key]
	if !had {
		return nil
	}
	delete(fs.items, key)
	if err := fs.flush(); err != nil {
		fs.items[key] = prev
		return err
	}
	return nil
}

// flush writes the items atomically: temp file in the same directory, then rename.
// Caller holds mu.
func (fs *FileStore) flush() error {
	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(fs.items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	if err := os.Rename(tmpPath, fs.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process store used by the web server tests and
// by callers that do not want a session to outlive the process.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]string)}
}

func (m *MemoryStore) GetItem(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryStore) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryStore) RemoveItem(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

var (
	_ interfaces.LocalStore = (*FileStore)(nil)
	_ interfaces.LocalStore = (*MemoryStore)(nil)
)
