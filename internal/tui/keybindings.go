package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/casekit/internal/core/shortcut"
)

// KeybindingHandler resolves key presses to converter actions.
type KeybindingHandler struct {
	dispatcher *shortcut.Dispatcher
}

// NewKeybindingHandler creates a handler over canonical bindings.
func NewKeybindingHandler(bindings map[string]shortcut.Action, focusKey string) *KeybindingHandler {
	return &KeybindingHandler{dispatcher: shortcut.NewDispatcher(bindings, focusKey)}
}

// Resolve returns the action bound to msg. inText is set while a text field
// has focus.
func (h *KeybindingHandler) Resolve(msg tea.KeyMsg, inText bool) (shortcut.Action, bool) {
	if msg.Paste {
		return shortcut.ActionNone, false
	}
	return h.dispatcher.Resolve(keyEvent(msg, inText))
}

// keyEvent converts a Bubble Tea key into a dispatcher event. Bubble Tea
// names keys like "alt+ctrl+z" or "shift+tab"; rune keys carry no
// modifier besides alt.
func keyEvent(msg tea.KeyMsg, inText bool) shortcut.Event {
	e := shortcut.Event{InTextInput: inText}
	if msg.Alt {
		e.Mods |= shortcut.ModAlt
	}

	switch msg.Type {
	case tea.KeyRunes:
		e.Key = string(msg.Runes)
		return e
	case tea.KeySpace:
		e.Key = "space"
		return e
	}

	name := strings.TrimPrefix(msg.String(), "alt+")
	parts := strings.Split(name, "+")
	e.Key = parts[len(parts)-1]
	for _, mod := range parts[:len(parts)-1] {
		switch mod {
		case "ctrl":
			e.Mods |= shortcut.ModCtrl
		case "shift":
			e.Mods |= shortcut.ModShift
		}
	}
	return e
}

// sortedActions returns the bound actions ordered by name.
func (h *KeybindingHandler) sortedActions() ([]shortcut.Action, map[shortcut.Action][]string) {
	bound := h.dispatcher.Bindings()
	actions := make([]shortcut.Action, 0, len(bound))
	for a := range bound {
		actions = append(actions, a)
	}
	slices.SortFunc(actions, func(a, b shortcut.Action) int {
		return strings.Compare(a.String(), b.String())
	})
	return actions, bound
}

// HelpEntries returns every bound action for display, sorted by action name.
func (h *KeybindingHandler) HelpEntries() []string {
	actions, bound := h.sortedActions()

	entries := make([]string, 0, len(actions))
	for _, a := range actions {
		entries = append(entries, fmt.Sprintf("[%s] %s", strings.Join(bound[a], "/"), a))
	}
	return entries
}

// HelpString returns a formatted help string for all keybindings.
func (h *KeybindingHandler) HelpString() string {
	return strings.Join(h.HelpEntries(), "  ")
}

// KeyBindings returns key.Binding objects for integration with bubbles help system.
func (h *KeybindingHandler) KeyBindings() []key.Binding {
	actions, bound := h.sortedActions()

	bindings := make([]key.Binding, 0, len(actions))
	for _, a := range actions {
		keys := bound[a]
		bindings = append(bindings, key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), a.String()),
		))
	}
	return bindings
}
