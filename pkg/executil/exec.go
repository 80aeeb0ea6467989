// Package executil provides shell execution utilities.
package executil

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Executor runs external commands.
type Executor interface {
	// Run executes a command and returns its stdout.
	Run(ctx context.Context, cmd string, args ...string) ([]byte, error)
	// RunInput executes a command with input piped to its stdin.
	RunInput(ctx context.Context, input []byte, cmd string, args ...string) ([]byte, error)
}

// RealExecutor calls actual commands.
type RealExecutor struct{}

// Run executes a command and returns its stdout.
func (e *RealExecutor) Run(ctx context.Context, cmd string, args ...string) ([]byte, error) {
	return e.RunInput(ctx, nil, cmd, args...)
}

// RunInput executes a command with input piped to its stdin. Stderr is
// folded into the returned error.
func (e *RealExecutor) RunInput(ctx context.Context, input []byte, cmd string, args ...string) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd, args...)
	if input != nil {
		c.Stdin = bytes.NewReader(input)
	}

	var stderr bytes.Buffer
	c.Stderr = &stderr

	out, err := c.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("exec %s: %w: %s", cmd, err, msg)
		}
		return out, fmt.Errorf("exec %s: %w", cmd, err)
	}
	return out, nil
}

// SplitCommand splits a configured command line such as "xclip -selection
// clipboard" into the program and its arguments.
func SplitCommand(line string) (string, []string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil, false
	}
	return fields[0], fields[1:], true
}
