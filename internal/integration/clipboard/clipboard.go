// Package clipboard reads and writes the user's clipboard, either through
// the platform clipboard or through configured commands.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/hay-kot/casekit/pkg/executil"
)

// ErrUnsupported is returned when no clipboard mechanism is available for
// the requested operation.
var ErrUnsupported = errors.New("clipboard unsupported")

// Clipboard is the clipboard contract consumed by converter sessions.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
	ReadText(ctx context.Context) (string, error)
}

// Package-level seams so tests never touch the real clipboard.
var (
	clipboardWriteAll    = clipboard.WriteAll
	clipboardReadAll     = clipboard.ReadAll
	clipboardUnsupported = func() bool { return clipboard.Unsupported }
)

// System uses the platform clipboard.
type System struct{}

func (System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if clipboardUnsupported() {
		return ErrUnsupported
	}
	if err := clipboardWriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func (System) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if clipboardUnsupported() {
		return "", ErrUnsupported
	}
	text, err := clipboardReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

// Command pipes text into a copy command and reads the output of a paste
// command, e.g. "pbcopy" and "pbpaste".
type Command struct {
	exec     executil.Executor
	copyCmd  string
	pasteCmd string
}

// NewCommand creates a command clipboard. An empty paste command makes
// ReadText return ErrUnsupported.
func NewCommand(exec executil.Executor, copyCmd, pasteCmd string) *Command {
	return &Command{exec: exec, copyCmd: copyCmd, pasteCmd: pasteCmd}
}

func (c *Command) WriteText(ctx context.Context, text string) error {
	name, args, ok := executil.SplitCommand(c.copyCmd)
	if !ok {
		return ErrUnsupported
	}
	if _, err := c.exec.RunInput(ctx, []byte(text), name, args...); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}

func (c *Command) ReadText(ctx context.Context) (string, error) {
	name, args, ok := executil.SplitCommand(c.pasteCmd)
	if !ok {
		return "", ErrUnsupported
	}
	out, err := c.exec.Run(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}

// New returns a Command clipboard when copyCmd is set and the system
// clipboard otherwise.
func New(copyCmd, pasteCmd string) Clipboard {
	if strings.TrimSpace(copyCmd) == "" {
		return System{}
	}
	return NewCommand(&executil.RealExecutor{}, copyCmd, pasteCmd)
}
