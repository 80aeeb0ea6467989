package casekit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/core/transform"
)

func names(methods []transform.Method) []string {
	out := make([]string, len(methods))
	for i, m := range methods {
		out[i] = m.Name
	}
	return out
}

func TestMatchMethods(t *testing.T) {
	all := transform.Builtin().Methods()

	tests := []struct {
		name    string
		pattern string
		want    []string
		wantErr bool
	}{
		{name: "empty matches all", pattern: "", want: names(all)},
		{name: "name glob", pattern: "base64-*", want: []string{"base64-decode", "base64-encode"}},
		{name: "category path", pattern: "encoding/url-*", want: []string{"url-decode", "url-encode"}},
		{name: "no match", pattern: "zzz*", want: []string{}},
		{name: "invalid pattern", pattern: "[", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchMethods(all, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSearchMethods(t *testing.T) {
	all := transform.Builtin().Methods()

	got := SearchMethods(all, "snake")
	require.NotEmpty(t, got)
	assert.Equal(t, "snake-case", got[0].Name)

	assert.Empty(t, SearchMethods(all, "qqqqzzz"))
	assert.Len(t, SearchMethods(all, ""), len(all))
}
