package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/store/redis"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })

	return store, mr
}

func TestStore_SetGetDelete(t *testing.T) {
	store, mr := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, state.ErrKeyNotFound)

	require.NoError(t, store.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists(redis.DefaultPrefix+"k"))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, store.Delete(ctx, "k"))
	assert.ErrorIs(t, store.Delete(ctx, "k"), state.ErrKeyNotFound)
}

func TestStore_PrefixAndTTL(t *testing.T) {
	store, mr := newStore(t, redis.WithPrefix("test:"), redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	assert.True(t, mr.Exists("test:k"))
	assert.Equal(t, time.Minute, mr.TTL("test:k"))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, "k")
	assert.ErrorIs(t, err, state.ErrKeyNotFound)
}

func TestStore_Snapshot(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	snap := state.Snapshot{
		Selected: "slugify",
		Options:  transform.Options{"separator": transform.StringValue("_")},
	}
	require.NoError(t, state.Save(ctx, store, snap))

	got, err := state.Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "slugify", got.Selected)
	assert.Equal(t, "_", got.Options.Str("separator"))
}
