// Package shortcut resolves keyboard events to converter actions.
package shortcut

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModAlt
	ModShift
	ModMeta
)

// Has reports whether m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// modifierOrder fixes the order modifiers appear in canonical strings.
var modifierOrder = []struct {
	mod  Modifier
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModShift, "shift"},
	{ModMeta, "meta"},
}

// Event is a key press as seen by the dispatcher.
type Event struct {
	Key  string
	Mods Modifier

	// InTextInput is set when focus is inside an editable text field.
	InTextInput bool
}

// Canonical renders the event as "ctrl+alt+shift+meta+key" with only the
// held modifiers present and the key lower-cased.
func Canonical(e Event) string {
	parts := make([]string, 0, len(modifierOrder)+1)
	for _, m := range modifierOrder {
		if e.Mods.Has(m.mod) {
			parts = append(parts, m.name)
		}
	}
	parts = append(parts, strings.ToLower(e.Key))
	return strings.Join(parts, "+")
}

// Normalize parses a user-written shortcut such as "Shift+Ctrl+U" and
// returns its canonical form.
func Normalize(s string) (string, error) {
	raw := strings.ToLower(strings.TrimSpace(s))

	var fields []string
	if rest, ok := strings.CutSuffix(raw, "++"); ok {
		// "ctrl++" binds the plus key itself
		fields = append(strings.Split(rest, "+"), "+")
	} else {
		fields = strings.Split(raw, "+")
	}
	if fields[len(fields)-1] == "" {
		return "", fmt.Errorf("shortcut %q has no key", s)
	}

	var e Event
	e.Key = fields[len(fields)-1]
	for _, f := range fields[:len(fields)-1] {
		switch f {
		case "ctrl", "control":
			e.Mods |= ModCtrl
		case "alt", "option", "opt":
			e.Mods |= ModAlt
		case "shift":
			e.Mods |= ModShift
		case "meta", "cmd", "super":
			e.Mods |= ModMeta
		default:
			return "", fmt.Errorf("shortcut %q has unknown modifier %q", s, f)
		}
	}

	return Canonical(e), nil
}

// Action is a converter operation a shortcut can trigger.
type Action int

const (
	ActionNone Action = iota
	ActionTransform
	ActionUndo
	ActionRedo
	ActionCopy
	ActionSwap
	ActionClear
	ActionFocusSearch
	ActionClearHistory
)

var actionNames = map[Action]string{
	ActionTransform:    "transform",
	ActionUndo:         "undo",
	ActionRedo:         "redo",
	ActionCopy:         "copy",
	ActionSwap:         "swap",
	ActionClear:        "clear",
	ActionFocusSearch:  "focus",
	ActionClearHistory: "clear-history",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "none"
}

// ParseAction maps a configured action name to an Action.
func ParseAction(name string) (Action, error) {
	for a, n := range actionNames {
		if n == name {
			return a, nil
		}
	}
	return ActionNone, fmt.Errorf("unknown action %q", name)
}

// ActionNames lists every valid action name, sorted.
func ActionNames() []string {
	return slices.Sorted(maps.Values(actionNames))
}

// DefaultFocusKey is the key that focuses method search even while typing.
const DefaultFocusKey = "/"

// DefaultBindings maps canonical shortcuts to actions.
func DefaultBindings() map[string]Action {
	return map[string]Action{
		"ctrl+enter":    ActionTransform,
		"ctrl+z":        ActionUndo,
		"ctrl+y":        ActionRedo,
		"ctrl+shift+z":  ActionRedo,
		"ctrl+shift+c":  ActionCopy,
		"ctrl+shift+s":  ActionSwap,
		"ctrl+shift+x":  ActionClear,
		"ctrl+shift+h":  ActionClearHistory,
		DefaultFocusKey: ActionFocusSearch,
	}
}

// Handler receives resolved actions.
type Handler func(Action)

// Dispatcher maps key events to actions through a static table.
type Dispatcher struct {
	bindings map[string]Action
	focusKey string
}

// NewDispatcher creates a dispatcher over bindings, whose keys must already
// be canonical. focusKey is the unmodified key allowed through while typing.
func NewDispatcher(bindings map[string]Action, focusKey string) *Dispatcher {
	if focusKey == "" {
		focusKey = DefaultFocusKey
	}
	return &Dispatcher{
		bindings: maps.Clone(bindings),
		focusKey: strings.ToLower(focusKey),
	}
}

// Resolve returns the action bound to e. Events inside a text input with no
// modifier held are ignored so plain typing is never intercepted; the focus
// key is the one exception.
func (d *Dispatcher) Resolve(e Event) (Action, bool) {
	if e.InTextInput && e.Mods == 0 && strings.ToLower(e.Key) != d.focusKey {
		return ActionNone, false
	}

	a, ok := d.bindings[Canonical(e)]
	if !ok || a == ActionNone {
		return ActionNone, false
	}
	return a, true
}

// Dispatch resolves e and invokes h when an action is bound. The return
// value tells the caller whether to suppress the event's default handling.
func (d *Dispatcher) Dispatch(e Event, h Handler) bool {
	a, ok := d.Resolve(e)
	if !ok {
		return false
	}
	h(a)
	return true
}

// Bindings returns the shortcuts bound to each action, sorted.
func (d *Dispatcher) Bindings() map[Action][]string {
	out := make(map[Action][]string)
	for _, key := range slices.Sorted(maps.Keys(d.bindings)) {
		a := d.bindings[key]
		out[a] = append(out[a], key)
	}
	return out
}
