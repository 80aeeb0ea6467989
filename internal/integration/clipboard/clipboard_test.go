package clipboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/pkg/executil"
)

func stubSystem(t *testing.T, unsupported bool) *string {
	t.Helper()

	var stored string
	oldWrite, oldRead, oldUnsupported := clipboardWriteAll, clipboardReadAll, clipboardUnsupported
	clipboardWriteAll = func(s string) error { stored = s; return nil }
	clipboardReadAll = func() (string, error) { return stored, nil }
	clipboardUnsupported = func() bool { return unsupported }
	t.Cleanup(func() {
		clipboardWriteAll, clipboardReadAll, clipboardUnsupported = oldWrite, oldRead, oldUnsupported
	})

	return &stored
}

func TestSystem_RoundTrip(t *testing.T) {
	stored := stubSystem(t, false)
	ctx := context.Background()

	require.NoError(t, System{}.WriteText(ctx, "HELLO"))
	assert.Equal(t, "HELLO", *stored)

	got, err := System{}.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", got)
}

func TestSystem_Unsupported(t *testing.T) {
	stubSystem(t, true)

	err := System{}.WriteText(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = System{}.ReadText(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSystem_WriteFailure(t *testing.T) {
	stubSystem(t, false)
	clipboardWriteAll = func(string) error { return errors.New("permission denied") }

	err := System{}.WriteText(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}

func TestCommand_WriteText(t *testing.T) {
	rec := &executil.RecordingExecutor{}
	cb := NewCommand(rec, "xclip -selection clipboard", "")

	require.NoError(t, cb.WriteText(context.Background(), "snake_case"))

	require.Len(t, rec.Commands, 1)
	assert.Equal(t, "xclip", rec.Commands[0].Cmd)
	assert.Equal(t, []string{"-selection", "clipboard"}, rec.Commands[0].Args)
	assert.Equal(t, []byte("snake_case"), rec.Commands[0].Input)
}

func TestCommand_ReadText(t *testing.T) {
	rec := &executil.RecordingExecutor{
		Outputs: map[string][]byte{"pbpaste": []byte("pasted\n")},
	}
	cb := NewCommand(rec, "pbcopy", "pbpaste")

	got, err := cb.ReadText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pasted", got)
}

func TestCommand_Errors(t *testing.T) {
	rec := &executil.RecordingExecutor{
		Errors: map[string]error{"pbcopy": errors.New("exit status 1")},
	}
	cb := NewCommand(rec, "pbcopy", "")

	err := cb.WriteText(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write clipboard")

	_, err = cb.ReadText(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNew(t *testing.T) {
	assert.IsType(t, System{}, New("", ""))
	assert.IsType(t, &Command{}, New("pbcopy", "pbpaste"))
}
