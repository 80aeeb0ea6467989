// Package state defines the converter selection persisted between runs.
package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/hay-kot/casekit/internal/core/transform"
)

// Key is the fixed store key the converter state is saved under.
const Key = "converter.state"

// ErrKeyNotFound is returned when a key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// Snapshot is the part of a converter session that survives restarts.
type Snapshot struct {
	Selected string            `json:"selected"`
	Options  transform.Options `json:"options"`
}

// Store is a key-value store holding opaque blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Save encodes snap as JSON and writes it under Key.
func Save(ctx context.Context, store Store, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot under Key. Returns ErrKeyNotFound when
// nothing has been saved yet.
func Load(ctx context.Context, store Store) (Snapshot, error) {
	data, err := store.Get(ctx, Key)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse state: %w", err)
	}
	return snap, nil
}

// MemoryStore is an in-process Store, used when persistence is disabled.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return v, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[key]; !ok {
		return ErrKeyNotFound
	}
	delete(m.data, key)
	return nil
}
