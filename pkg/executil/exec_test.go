package executil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	tests := []struct {
		line     string
		wantCmd  string
		wantArgs []string
		wantOK   bool
	}{
		{line: "pbcopy", wantCmd: "pbcopy", wantArgs: []string{}, wantOK: true},
		{line: "  xclip -selection clipboard ", wantCmd: "xclip", wantArgs: []string{"-selection", "clipboard"}, wantOK: true},
		{line: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, args, ok := SplitCommand(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}
