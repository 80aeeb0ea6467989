package casekit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/remote"
	"github.com/hay-kot/casekit/internal/store/jsonfile"
	"github.com/hay-kot/casekit/internal/store/redis"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	return &cfg
}

func TestNew_SelectsBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		checkFn func(t *testing.T, svc *Service)
	}{
		{
			name:   "file store and builtin registry",
			mutate: func(*config.Config) {},
			checkFn: func(t *testing.T, svc *Service) {
				assert.IsType(t, &jsonfile.KVStore{}, svc.Store())
				assert.IsType(t, &transform.LocalRegistry{}, svc.Registry())
			},
		},
		{
			name:   "memory store",
			mutate: func(c *config.Config) { c.State.Backend = config.BackendMemory },
			checkFn: func(t *testing.T, svc *Service) {
				assert.IsType(t, &state.MemoryStore{}, svc.Store())
			},
		},
		{
			name: "redis store",
			mutate: func(c *config.Config) {
				c.State.Backend = config.BackendRedis
				c.State.Redis.Addr = mr.Addr()
			},
			checkFn: func(t *testing.T, svc *Service) {
				assert.IsType(t, &redis.Store{}, svc.Store())
			},
		},
		{
			name:   "remote registry",
			mutate: func(c *config.Config) { c.Registry.URL = "http://localhost:9" },
			checkFn: func(t *testing.T, svc *Service) {
				assert.IsType(t, &remote.Registry{}, svc.Registry())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			tt.mutate(cfg)

			svc, err := New(cfg, zerolog.Nop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = svc.Close() })

			tt.checkFn(t, svc)
		})
	}
}

func TestService_SessionPersistsAcrossRuns(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	svc, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	sess := svc.NewSession(ctx)
	sess.SetSelectedTransformation(ctx, "slugify")
	require.NoError(t, sess.SetOption(ctx, "separator", transform.StringValue("_")))
	sess.Close()

	assert.FileExists(t, filepath.Join(cfg.DataDir, "state.json"))

	svc2, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)

	restored := svc2.NewSession(ctx)
	defer restored.Close()

	st := restored.Snapshot()
	assert.Equal(t, "slugify", st.Selected)
	assert.Equal(t, "_", st.Options.Str("separator"))
}

func TestService_SelectionAndReset(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DefaultTransformation = "wrap"
	svc := NewWith(cfg, transform.Builtin(), state.NewMemoryStore(), nil, zerolog.Nop())

	snap, err := svc.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wrap", snap.Selected)
	assert.Equal(t, 80, snap.Options.Int("width"))

	require.NoError(t, state.Save(ctx, svc.Store(), state.Snapshot{Selected: "rot13"}))
	snap, err = svc.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "rot13", snap.Selected)

	require.NoError(t, svc.ResetSelection(ctx))
	require.NoError(t, svc.ResetSelection(ctx))

	snap, err = svc.Selection(ctx)
	require.NoError(t, err)
	assert.Equal(t, "wrap", snap.Selected)
}
