package commands

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/casekit/internal/core/config"
)

func TestNewValidationReport(t *testing.T) {
	warn := []config.ValidationWarning{{Category: "keybindings", Item: "ctrl+shift+z", Message: "may not reach the terminal"}}

	tests := []struct {
		name string
		cfg  func(c *config.Config)
		err  error
		want validationReport
	}{
		{
			name: "valid",
			want: validationReport{Valid: true, Warnings: warn},
		},
		{
			name: "field errors",
			cfg:  func(c *config.Config) { c.HistorySize = 0 },
			want: validationReport{
				Errors:   []reportError{{Field: "history_size", Message: "must be at least 1"}},
				Warnings: warn,
			},
		},
		{
			name: "plain error",
			err:  errors.New("read config: permission denied"),
			want: validationReport{
				Errors:   []reportError{{Message: "read config: permission denied"}},
				Warnings: warn,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.DataDir = t.TempDir()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}

			err := tt.err
			if err == nil {
				err = cfg.Validate()
			}

			assert.Equal(t, tt.want, newValidationReport(err, warn))
		})
	}
}
