package shortcut

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{name: "plain key", event: Event{Key: "a"}, want: "a"},
		{name: "ctrl shift", event: Event{Key: "U", Mods: ModShift | ModCtrl}, want: "ctrl+shift+u"},
		{name: "all modifiers", event: Event{Key: "k", Mods: ModMeta | ModShift | ModAlt | ModCtrl}, want: "ctrl+alt+shift+meta+k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.event))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Shift+Ctrl+U", want: "ctrl+shift+u"},
		{input: "cmd+z", want: "meta+z"},
		{input: " control+enter ", want: "ctrl+enter"},
		{input: "ctrl++", want: "ctrl++"},
		{input: "/", want: "/"},
		{input: "ctrl+", wantErr: true},
		{input: "hyper+x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Normalize(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDispatcher_Resolve(t *testing.T) {
	d := NewDispatcher(DefaultBindings(), "")

	tests := []struct {
		name   string
		event  Event
		want   Action
		wantOK bool
	}{
		{
			name:   "undo",
			event:  Event{Key: "z", Mods: ModCtrl},
			want:   ActionUndo,
			wantOK: true,
		},
		{
			name:   "redo via shift",
			event:  Event{Key: "Z", Mods: ModCtrl | ModShift},
			want:   ActionRedo,
			wantOK: true,
		},
		{
			name:   "modified key inside text input",
			event:  Event{Key: "c", Mods: ModCtrl | ModShift, InTextInput: true},
			want:   ActionCopy,
			wantOK: true,
		},
		{
			name:   "plain typing is not intercepted",
			event:  Event{Key: "z", InTextInput: true},
			wantOK: false,
		},
		{
			name:   "focus key passes through while typing",
			event:  Event{Key: "/", InTextInput: true},
			want:   ActionFocusSearch,
			wantOK: true,
		},
		{
			name:   "unbound shortcut",
			event:  Event{Key: "q", Mods: ModAlt},
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := d.Resolve(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestDispatcher_DispatchOnlyReportsMappedActions(t *testing.T) {
	d := NewDispatcher(DefaultBindings(), "")

	var got []Action
	h := func(a Action) { got = append(got, a) }

	assert.True(t, d.Dispatch(Event{Key: "enter", Mods: ModCtrl}, h))
	assert.False(t, d.Dispatch(Event{Key: "x"}, h))
	assert.False(t, d.Dispatch(Event{Key: "x", InTextInput: true}, h))

	assert.Equal(t, []Action{ActionTransform}, got)
}

func TestDispatcher_IsolatedFromCallerMap(t *testing.T) {
	bindings := map[string]Action{"ctrl+z": ActionUndo}
	d := NewDispatcher(bindings, "f1")

	bindings["ctrl+z"] = ActionClear

	a, ok := d.Resolve(Event{Key: "z", Mods: ModCtrl})
	require.True(t, ok)
	assert.Equal(t, ActionUndo, a)

	_, ok = d.Resolve(Event{Key: "/", InTextInput: true})
	assert.False(t, ok)
}

func TestParseAction(t *testing.T) {
	for _, name := range ActionNames() {
		a, err := ParseAction(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, a.String())
	}

	_, err := ParseAction("explode")
	assert.Error(t, err)
}
