package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/transform"
)

func TestBuildOptions(t *testing.T) {
	wrap, ok := transform.Builtin().Method("wrap")
	require.True(t, ok)

	tests := []struct {
		name      string
		persisted transform.Options
		flags     []string
		want      transform.Options
		wantErr   string
	}{
		{
			name: "defaults",
			want: transform.Options{"width": transform.IntValue(80)},
		},
		{
			name:      "persisted value kept",
			persisted: transform.Options{"width": transform.IntValue(40)},
			want:      transform.Options{"width": transform.IntValue(40)},
		},
		{
			name:      "rejected persisted value falls back",
			persisted: transform.Options{"width": transform.IntValue(0)},
			want:      transform.Options{"width": transform.IntValue(80)},
		},
		{
			name:      "flag overrides persisted",
			persisted: transform.Options{"width": transform.IntValue(40)},
			flags:     []string{"width=12"},
			want:      transform.Options{"width": transform.IntValue(12)},
		},
		{
			name:    "flag below min",
			flags:   []string{"width=0"},
			wantErr: "at least 1",
		},
		{
			name:    "unknown key",
			flags:   []string{"depth=3"},
			wantErr: `no option "depth"`,
		},
		{
			name:    "missing equals",
			flags:   []string{"width"},
			wantErr: "key=value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildOptions(wrap, tt.persisted, tt.flags)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
