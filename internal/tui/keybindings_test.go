package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/casekit/internal/core/shortcut"
)

func TestKeyEvent(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want string
	}{
		{"ctrl letter", tea.KeyMsg{Type: tea.KeyCtrlZ}, "ctrl+z"},
		{"alt ctrl letter", tea.KeyMsg{Type: tea.KeyCtrlZ, Alt: true}, "ctrl+alt+z"},
		{"shift named key", tea.KeyMsg{Type: tea.KeyShiftTab}, "shift+tab"},
		{"plain rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a")}, "a"},
		{"plus rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("+")}, "+"},
		{"alt rune", tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true}, "alt+1"},
		{"space", tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}, "space"},
		{"enter", tea.KeyMsg{Type: tea.KeyEnter}, "enter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, shortcut.Canonical(keyEvent(tt.msg, false)))
		})
	}
}

func TestKeybindingHandler_Resolve(t *testing.T) {
	bindings := map[string]shortcut.Action{
		"ctrl+z": shortcut.ActionUndo,
		"ctrl+y": shortcut.ActionRedo,
		"alt+c":  shortcut.ActionCopy,
		"x":      shortcut.ActionClear,
		"/":      shortcut.ActionFocusSearch,
	}
	handler := NewKeybindingHandler(bindings, "/")

	tests := []struct {
		name   string
		msg    tea.KeyMsg
		inText bool
		want   shortcut.Action
		wantOK bool
	}{
		{
			name:   "ctrl binding while typing",
			msg:    tea.KeyMsg{Type: tea.KeyCtrlZ},
			inText: true,
			want:   shortcut.ActionUndo,
			wantOK: true,
		},
		{
			name:   "alt binding",
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c"), Alt: true},
			inText: true,
			want:   shortcut.ActionCopy,
			wantOK: true,
		},
		{
			name:   "plain key outside text field",
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")},
			want:   shortcut.ActionClear,
			wantOK: true,
		},
		{
			name:   "plain key while typing is not intercepted",
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")},
			inText: true,
		},
		{
			name:   "focus key while typing",
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")},
			inText: true,
			want:   shortcut.ActionFocusSearch,
			wantOK: true,
		},
		{
			name:   "paste is never an action",
			msg:    tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/"), Paste: true},
			inText: true,
		},
		{
			name: "unbound key",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := handler.Resolve(tt.msg, tt.inText)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeybindingHandler_HelpEntries(t *testing.T) {
	handler := NewKeybindingHandler(map[string]shortcut.Action{
		"ctrl+y":       shortcut.ActionRedo,
		"ctrl+shift+z": shortcut.ActionRedo,
		"ctrl+z":       shortcut.ActionUndo,
	}, "/")

	assert.Equal(t, []string{
		"[ctrl+shift+z/ctrl+y] redo",
		"[ctrl+z] undo",
	}, handler.HelpEntries())
	assert.Len(t, handler.KeyBindings(), 2)
}
