// Package jsonfile provides a JSON file-backed key-value store for
// persisted converter state.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/hay-kot/casekit/internal/core/state"
)

// ErrInvalidValue is returned by Set when the value is not valid JSON.
var ErrInvalidValue = errors.New("value must be valid JSON")

// Entry is a stored value with metadata.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// KVFile is the root JSON structure stored on disk for KV data.
type KVFile struct {
	Entries map[string]Entry `json:"entries"`
}

// KVStore implements state.Store using a JSON file for persistence.
type KVStore struct {
	path string
	mu   sync.RWMutex
}

var _ state.Store = (*KVStore)(nil)

// NewKVStore creates a new JSON file KV store at the given path.
func NewKVStore(path string) *KVStore {
	return &KVStore{path: path}
}

// Path returns the file backing the store.
func (s *KVStore) Path() string {
	return s.path
}

// lockPath returns the path to the lock file.
func (s *KVStore) lockPath() string {
	return s.path + ".lock"
}

// withSharedLock executes fn while holding a shared (read) file lock so
// several converter processes can read at once.
func (s *KVStore) withSharedLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_SH, fn)
}

// withExclusiveLock executes fn while holding an exclusive (write) file lock.
func (s *KVStore) withExclusiveLock(fn func() error) error {
	return s.withFileLock(syscall.LOCK_EX, fn)
}

// withFileLock acquires a file lock, executes fn, then releases the lock.
func (s *KVStore) withFileLock(lockType int, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	if err := syscall.Flock(int(f.Fd()), lockType); err != nil {
		return fmt.Errorf("acquire file lock: %w", err)
	}
	defer syscall.Flock(int(f.Fd()), syscall.LOCK_UN) //nolint:errcheck

	return fn()
}

// Get returns the value stored under key. Returns state.ErrKeyNotFound if
// the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.Entry(ctx, key)
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

// Entry returns the stored entry with its timestamps.
func (s *KVStore) Entry(ctx context.Context, key string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		entry Entry
		found bool
	)

	err := s.withSharedLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		entry, found = file.Entries[key]
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	if !found {
		return Entry{}, state.ErrKeyNotFound
	}

	return entry, nil
}

// Set creates or updates an entry, preserving CreatedAt on update.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return ErrInvalidValue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		now := time.Now()
		entry, exists := file.Entries[key]
		if !exists {
			entry = Entry{Key: key, CreatedAt: now}
		}
		entry.Value = compact(value)
		entry.UpdatedAt = now

		file.Entries[key] = entry
		return s.save(file)
	})
}

// Delete removes an entry by key. Returns state.ErrKeyNotFound if not found.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notFound bool

	err := s.withExclusiveLock(func() error {
		file, err := s.load()
		if err != nil {
			return err
		}

		if _, ok := file.Entries[key]; !ok {
			notFound = true
			return nil
		}

		delete(file.Entries, key)
		return s.save(file)
	})
	if err != nil {
		return err
	}

	if notFound {
		return state.ErrKeyNotFound
	}

	return nil
}

// load reads the KV file from disk.
// Returns an empty KVFile if the file doesn't exist.
func (s *KVStore) load() (KVFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return KVFile{Entries: make(map[string]Entry)}, nil
		}
		return KVFile{}, fmt.Errorf("read state file: %w", err)
	}

	if len(data) == 0 {
		return KVFile{Entries: make(map[string]Entry)}, nil
	}

	var file KVFile
	if err := json.Unmarshal(data, &file); err != nil {
		return KVFile{}, fmt.Errorf("parse %s: %w", s.path, err)
	}

	if file.Entries == nil {
		file.Entries = make(map[string]Entry)
	}

	// save indents the file; values are handed out exactly as Set received
	// them after compaction.
	for key, entry := range file.Entries {
		entry.Value = compact(entry.Value)
		file.Entries[key] = entry
	}

	return file, nil
}

// compact strips insignificant whitespace from a valid JSON value.
func compact(value []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return append(json.RawMessage(nil), value...)
	}
	return buf.Bytes()
}

// save writes the KV file to disk atomically.
func (s *KVStore) save(file KVFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state file: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
