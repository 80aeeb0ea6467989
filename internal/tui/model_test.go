package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/casekit/internal/converter"
	"github.com/hay-kot/casekit/internal/core/config"
	"github.com/hay-kot/casekit/internal/core/shortcut"
	"github.com/hay-kot/casekit/internal/core/state"
	"github.com/hay-kot/casekit/internal/core/transform"
)

func newTestModel(t *testing.T, keybindings map[string]string) (Model, *converter.Session) {
	t.Helper()

	sess := converter.New(transform.Builtin(),
		converter.WithDebounce(time.Minute),
		converter.WithStateStore(state.NewMemoryStore()),
	)

	cfg := config.DefaultConfig()
	for k, v := range keybindings {
		cfg.Keybindings[k] = v
	}

	m := New(context.Background(), sess, &cfg, Options{Logger: zerolog.Nop()})
	t.Cleanup(func() {
		m.Close()
		sess.Close()
	})
	return m, sess
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel_TypingUpdatesSessionInput(t *testing.T) {
	m, sess := newTestModel(t, nil)

	for _, r := range "hi" {
		m, _ = press(t, m, runes(string(r)))
	}
	m.Close()

	assert.Equal(t, "hi", sess.Snapshot().Input)
	assert.Equal(t, "hi", m.lastInput)
}

func TestModel_UndoSyncsInput(t *testing.T) {
	m, sess := newTestModel(t, nil)
	ctx := context.Background()

	sess.SetInputText(ctx, "first")
	sess.Transform(ctx)
	sess.SetInputText(ctx, "second")
	sess.Transform(ctx)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	require.NotNil(t, cmd)

	done, ok := cmd().(opDoneMsg)
	require.True(t, ok)
	assert.True(t, done.syncInput)

	m, _ = press(t, m, done)
	assert.Equal(t, "first", m.input.Value())
	assert.Equal(t, "FIRST", sess.Snapshot().Output)
}

func TestModel_SearchSelectsTransformation(t *testing.T) {
	m, sess := newTestModel(t, nil)

	m, _ = press(t, m, runes("/"))
	assert.Equal(t, FocusSearch, m.focus)

	for _, r := range "snake" {
		m, _ = press(t, m, runes(string(r)))
	}
	current, ok := m.picker.Current()
	require.True(t, ok)
	assert.Equal(t, "snake-case", current.Name)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, FocusInput, m.focus)
	m.Close()

	assert.Equal(t, "snake-case", sess.Snapshot().Selected)
}

func TestModel_ClearHistoryAsksFirst(t *testing.T) {
	m, sess := newTestModel(t, map[string]string{"alt+h": "clear-history"})
	ctx := context.Background()

	sess.SetInputText(ctx, "hello")
	sess.Transform(ctx)
	m, _ = press(t, m, StateMsg(sess.Snapshot()))
	require.Equal(t, 1, m.st.HistoryLen)

	altH := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h"), Alt: true}

	// Cancel is the default button.
	m, _ = press(t, m, altH)
	require.Equal(t, stateConfirming, m.state)
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Equal(t, 1, sess.Snapshot().HistoryLen)

	m, _ = press(t, m, altH)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.Equal(t, 0, sess.Snapshot().HistoryLen)
}

func TestModel_OptionsPanelSetsOption(t *testing.T) {
	m, sess := newTestModel(t, nil)
	ctx := context.Background()

	sess.SetSelectedTransformation(ctx, "title-case")
	m, _ = press(t, m, StateMsg(sess.Snapshot()))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, FocusOptions, m.focus)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m.Close()

	assert.Equal(t, transform.ChoiceValue(transform.TitleAP), sess.Snapshot().Options["style"])
}

func TestPreviewSlotKey(t *testing.T) {
	tests := []struct {
		key    string
		want   int
		wantOK bool
	}{
		{"alt+1", 0, true},
		{"alt+9", 8, true},
		{"alt+0", 0, false},
		{"alt+x", 0, false},
		{"1", 0, false},
		{"alt+10", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := previewSlotKey(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStepValue(t *testing.T) {
	choice := transform.OptionSpec{Key: "style", Kind: transform.KindChoice, Choices: []string{"a", "b", "c"}}

	tests := []struct {
		name  string
		spec  transform.OptionSpec
		cur   transform.Value
		delta int
		want  transform.Value
		ok    bool
	}{
		{"bool toggles", transform.OptionSpec{Kind: transform.KindBool}, transform.BoolValue(false), 1, transform.BoolValue(true), true},
		{"int steps down", transform.OptionSpec{Kind: transform.KindInt}, transform.IntValue(80), -1, transform.IntValue(79), true},
		{"int stops at min", transform.OptionSpec{Kind: transform.KindInt, Min: transform.AtLeast(1)}, transform.IntValue(1), -1, transform.IntValue(1), true},
		{"unbounded int goes negative", transform.OptionSpec{Kind: transform.KindInt}, transform.IntValue(0), -1, transform.IntValue(-1), true},
		{"choice wraps forward", choice, transform.ChoiceValue("c"), 1, transform.ChoiceValue("a"), true},
		{"choice wraps back", choice, transform.ChoiceValue("a"), -1, transform.ChoiceValue("c"), true},
		{"string is typed not stepped", transform.OptionSpec{Kind: transform.KindString}, transform.StringValue("-"), 1, transform.Value{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := stepValue(tt.spec, tt.cur, tt.delta)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModal_Update(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want modalOutcome
	}{
		{"enter defaults to cancel", []string{"enter"}, modalCancelled},
		{"toggle then enter confirms", []string{"left", "enter"}, modalConfirmed},
		{"toggle twice cancels", []string{"tab", "tab", "enter"}, modalCancelled},
		{"y confirms", []string{"y"}, modalConfirmed},
		{"esc cancels", []string{"esc"}, modalCancelled},
		{"other keys wait", []string{"x"}, modalPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModal("Clear history", "Discard?", shortcut.ActionClearHistory)
			var got modalOutcome
			for _, k := range tt.keys {
				m, got = m.Update(k)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, shortcut.ActionClearHistory, m.Action())
		})
	}
}
