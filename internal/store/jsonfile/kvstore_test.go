package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
)

func TestKVStore_SetAndGet(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	if err := store.Set(ctx, "foo", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	entry, err := store.Entry(ctx, "foo")
	if err != nil {
		t.Fatalf("Entry failed: %v", err)
	}

	if entry.Key != "foo" {
		t.Errorf("Key = %q, want %q", entry.Key, "foo")
	}
	if string(entry.Value) != `{"a":1}` {
		t.Errorf("Value = %s, want %s", entry.Value, `{"a":1}`)
	}
	if entry.CreatedAt.IsZero() || entry.UpdatedAt.IsZero() {
		t.Error("timestamps should not be zero")
	}
}

func TestKVStore_GetReturnsStoredBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"object", `{"selected":"wrap","options":{"width":{"kind":"int","int":40}}}`, `{"selected":"wrap","options":{"width":{"kind":"int","int":40}}}`},
		{"array", `[1,2,3]`, `[1,2,3]`},
		{"whitespace is dropped", "{ \"a\" : 1 }", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := NewKVStore(path).Set(ctx, tt.name, []byte(tt.value)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := NewKVStore(path).Get(ctx, tt.name)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Get = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestKVStore_GetNotFound(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))

	_, err := store.Get(context.Background(), "nonexistent")
	if !errors.Is(err, state.ErrKeyNotFound) {
		t.Errorf("Get error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_SetRejectsInvalidJSON(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))

	err := store.Set(context.Background(), "key", []byte("not json"))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Set error = %v, want ErrInvalidValue", err)
	}
}

func TestKVStore_UpdatePreservesCreatedAt(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	if err := store.Set(ctx, "key", []byte(`"v1"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	entry1, _ := store.Entry(ctx, "key")
	time.Sleep(10 * time.Millisecond)

	if err := store.Set(ctx, "key", []byte(`"v2"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	entry2, _ := store.Entry(ctx, "key")

	if string(entry2.Value) != `"v2"` {
		t.Errorf("Value = %s, want %s", entry2.Value, `"v2"`)
	}
	if !entry2.CreatedAt.Equal(entry1.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", entry1.CreatedAt, entry2.CreatedAt)
	}
	if !entry2.UpdatedAt.After(entry1.UpdatedAt) {
		t.Errorf("UpdatedAt should be after original: %v <= %v", entry2.UpdatedAt, entry1.UpdatedAt)
	}
}

func TestKVStore_Delete(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	_ = store.Set(ctx, "key", []byte(`true`))

	if err := store.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := store.Get(ctx, "key"); !errors.Is(err, state.ErrKeyNotFound) {
		t.Errorf("Get after delete error = %v, want ErrKeyNotFound", err)
	}

	if err := store.Delete(ctx, "key"); !errors.Is(err, state.ErrKeyNotFound) {
		t.Errorf("second Delete error = %v, want ErrKeyNotFound", err)
	}
}

func TestKVStore_SnapshotRoundTripAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	ctx := context.Background()

	snap := state.Snapshot{
		Selected: "wrap",
		Options:  transform.Options{"width": transform.IntValue(40)},
	}
	if err := state.Save(ctx, NewKVStore(path), snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := state.Load(ctx, NewKVStore(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Selected != "wrap" || got.Options.Int("width") != 40 {
		t.Errorf("Load = %+v, want %+v", got, snap)
	}
}

func TestKVStore_ConcurrentAccess(t *testing.T) {
	store := NewKVStore(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	const goroutines = 10
	const iterations = 20

	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				key := fmt.Sprintf("key-%d-%d", id, j)
				if err := store.Set(ctx, key, []byte(`"value"`)); err != nil {
					t.Errorf("Set failed: %v", err)
					return
				}
				if _, err := store.Get(ctx, key); err != nil {
					t.Errorf("Get failed: %v", err)
					return
				}
			}
		}(i)
	}

	wg.Wait()

	file, err := store.load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(file.Entries) != goroutines*iterations {
		t.Errorf("Expected %d entries, got %d", goroutines*iterations, len(file.Entries))
	}
}

func TestKVStore_CorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	if err := os.WriteFile(path, []byte("{invalid json"), 0o644); err != nil {
		t.Fatalf("Failed to write corrupted file: %v", err)
	}

	store := NewKVStore(path)
	ctx := context.Background()

	if _, err := store.Get(ctx, "any"); err == nil {
		t.Error("Expected error for corrupted JSON, got nil")
	}

	if err := store.Set(ctx, "key", []byte(`"value"`)); err == nil {
		t.Error("Expected error for Set with corrupted file, got nil")
	}
}
