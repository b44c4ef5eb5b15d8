package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// cacheFileExtension is the file extension used for disk entries.
const cacheFileExtension = ".json"

// Common cache errors.
var (
	ErrCacheNotFound   = errors.New("cache entry not found")
	ErrCacheExpired    = errors.New("cache entry expired")
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCacheDisabled   = errors.New("cache is disabled")
)

// DiskEntry is one value persisted by DiskStore.
type DiskEntry struct {
	Key       string          `json:"key"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// IsExpired reports whether the entry is past its expiry.
func (e *DiskEntry) IsExpired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// DiskStore persists fulfilled query values as JSON files so a later process
// can hydrate its in-memory cache without hitting the network.
// A nil *DiskStore behaves as a disabled store. Safe for concurrent use.
type DiskStore struct {
	directory string
	enabled   bool
	ttl       time.Duration

	mu sync.RWMutex
}

// NewDiskStore creates a disk store under directory. Entries expire ttl after
// they are written. The directory is created if it doesn't exist.
func NewDiskStore(directory string, enabled bool, ttl time.Duration) (*DiskStore, error) {
	if !enabled {
		return &DiskStore{enabled: false}, nil
	}

	if directory == "" {
		return nil, errors.New("cache directory cannot be empty")
	}

	if err := os.MkdirAll(directory, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &DiskStore{directory: directory, enabled: true, ttl: ttl}, nil
}

// Get retrieves an entry by key.
// Returns ErrCacheNotFound if the entry doesn't exist and ErrCacheExpired if
// it has expired; expired files are removed.
func (s *DiskStore) Get(key string) (*DiskEntry, error) {
	if !s.IsEnabled() {
		return nil, ErrCacheDisabled
	}
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	s.mu.RLock()
	filePath := s.keyToFilePath(key)
	data, err := os.ReadFile(filePath)
	s.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCacheNotFound
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entry DiskEntry
	if unmarshalErr := json.Unmarshal(data, &entry); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", unmarshalErr)
	}

	if entry.IsExpired() {
		s.mu.Lock()
		_ = os.Remove(filePath)
		s.mu.Unlock()
		return nil, ErrCacheExpired
	}

	return &entry, nil
}

// Set stores data under key, overwriting any existing entry.
func (s *DiskStore) Set(key string, data json.RawMessage) error {
	if !s.IsEnabled() {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	now := time.Now()
	entry := DiskEntry{Key: key, Data: data, CreatedAt: now, ExpiresAt: now.Add(s.ttl)}
	entryData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.keyToFilePath(key)

	// Write to temporary file first, then rename for atomicity
	tempPath := filePath + ".tmp"
	if writeErr := os.WriteFile(tempPath, entryData, 0o600); writeErr != nil {
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if renameErr := os.Rename(tempPath, filePath); renameErr != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}
	return nil
}

// Delete removes an entry by key. Missing entries are not an error.
func (s *DiskStore) Delete(key string) error {
	if !s.IsEnabled() {
		return ErrCacheDisabled
	}
	if key == "" {
		return ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.keyToFilePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete cache file: %w", err)
	}
	return nil
}

// DeleteMatching removes every entry whose stored key satisfies match.
// Unreadable files are skipped.
func (s *DiskStore) DeleteMatching(match func(key string) bool) error {
	if !s.IsEnabled() {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.walkLocked(func(path string, entry *DiskEntry) {
		if entry != nil && match(entry.Key) {
			_ = os.Remove(path)
		}
	})
}

// Clear removes all entries.
func (s *DiskStore) Clear() error {
	if !s.IsEnabled() {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != cacheFileExtension {
			continue
		}
		if removeErr := os.Remove(filepath.Join(s.directory, entry.Name())); removeErr != nil {
			return fmt.Errorf("failed to remove cache file %s: %w", entry.Name(), removeErr)
		}
	}
	return nil
}

// CleanupExpired removes every expired entry.
func (s *DiskStore) CleanupExpired() error {
	if !s.IsEnabled() {
		return ErrCacheDisabled
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.walkLocked(func(path string, entry *DiskEntry) {
		if entry != nil && entry.IsExpired() {
			_ = os.Remove(path)
		}
	})
}

// Count returns the number of entries, including expired ones.
func (s *DiskStore) Count() (int, error) {
	if !s.IsEnabled() {
		return 0, ErrCacheDisabled
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache directory: %w", err)
	}
	count := 0
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == cacheFileExtension {
			count++
		}
	}
	return count, nil
}

// IsEnabled returns true if the store is non-nil and enabled.
func (s *DiskStore) IsEnabled() bool {
	return s != nil && s.enabled
}

// Directory returns the cache directory path.
func (s *DiskStore) Directory() string {
	if s == nil {
		return ""
	}
	return s.directory
}

func (s *DiskStore) walkLocked(fn func(path string, entry *DiskEntry)) error {
	dirEntries, err := os.ReadDir(s.directory)
	if err != nil {
		return fmt.Errorf("failed to read cache directory: %w", err)
	}
	for _, d := range dirEntries {
		if d.IsDir() || filepath.Ext(d.Name()) != cacheFileExtension {
			continue
		}
		path := filepath.Join(s.directory, d.Name())
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			continue
		}
		var entry DiskEntry
		if json.Unmarshal(data, &entry) != nil {
			fn(path, nil)
			continue
		}
		fn(path, &entry)
	}
	return nil
}

// keyToFilePath hashes the key so any key maps to a safe file name.
func (s *DiskStore) keyToFilePath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.directory, hex.EncodeToString(sum[:])+cacheFileExtension)
}
