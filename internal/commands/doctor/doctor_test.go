package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/store/jsonfile"
)

type brokenStore struct{ state.MemoryStore }

func (*brokenStore) Set(context.Context, string, []byte) error {
	return errors.New("read-only file system")
}

func statuses(r Result) []Status {
	out := make([]Status, len(r.Items))
	for i, item := range r.Items {
		out[i] = item.Status
	}
	return out
}

func TestConfigCheck(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()

	r := NewConfigCheck(&cfg, "").Run(context.Background())
	assert.Equal(t, []Status{StatusPass}, statuses(r))

	cfg.HistorySize = 0
	cfg.Previews.Slots = []string{"a", "a"}
	r = NewConfigCheck(&cfg, "").Run(context.Background())
	assert.Contains(t, statuses(r), StatusFail)
	assert.Contains(t, statuses(r), StatusWarn)

	r = NewConfigCheck(nil, "").Run(context.Background())
	assert.Equal(t, []Status{StatusFail}, statuses(r))
}

func TestStoreCheck(t *testing.T) {
	ctx := context.Background()

	r := NewStoreCheck(state.NewMemoryStore(), "memory").Run(ctx)
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(r))

	r = NewStoreCheck(&brokenStore{}, "file").Run(ctx)
	require.Len(t, r.Items, 1)
	assert.Equal(t, StatusFail, r.Items[0].Status)
	assert.Contains(t, r.Items[0].Detail, "read-only")
}

func TestStoreCheck_FileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := jsonfile.NewKVStore(path)

	r := NewStoreCheck(store, "file").Run(context.Background())
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(r))
	assert.Equal(t, "file "+path, r.Items[0].Detail)
}

func TestSameJSON(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{`{"ok":true}`, "{\n  \"ok\": true\n}", true},
		{`{"a":1,"b":2}`, `{"b":2,"a":1}`, true},
		{`{"ok":true}`, `{"ok":false}`, false},
		{`{"ok":true}`, `not json`, false},
	}

	for _, tt := range tests {
		t.Run(tt.a+" "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, sameJSON([]byte(tt.a), []byte(tt.b)))
		})
	}
}

func TestRegistryCheck(t *testing.T) {
	ctx := context.Background()
	cfg := config.DefaultConfig()

	r := NewRegistryCheck(transform.Builtin(), &cfg).Run(ctx)
	assert.Equal(t, []Status{StatusPass, StatusPass}, statuses(r))

	cfg.DefaultTransformation = "nope"
	cfg.Previews.Slots = []string{"upper-case", "gone"}
	r = NewRegistryCheck(transform.Builtin(), &cfg).Run(ctx)
	assert.Equal(t, []Status{StatusPass, StatusFail, StatusWarn}, statuses(r))
}

func TestSummary(t *testing.T) {
	results := RunAll(context.Background(), []Check{
		NewStoreCheck(state.NewMemoryStore(), "memory"),
	})
	counts := Summary(results)
	assert.Equal(t, Counts{Passed: 2}, counts)
	assert.True(t, counts.Healthy())
	assert.Equal(t, "2 passed, 0 warnings, 0 failed", counts.String())

	b, err := json.Marshal(results[0].Items[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"status":"pass"`)
}

func TestRunAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := RunAll(ctx, []Check{NewStoreCheck(state.NewMemoryStore(), "memory")})
	require.Len(t, results, 1)
	assert.Equal(t, []Status{StatusFail}, statuses(results[0]))
	assert.False(t, Summary(results).Healthy())
}
