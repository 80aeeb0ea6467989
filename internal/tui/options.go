package tui

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/casekit/internal/core/transform"
)

// optionChange is a value the user picked for one option.
type optionChange struct {
	key   string
	value transform.Value
}

// OptionsPanel shows the options of the selected transformation. Bool, int
// and choice options step in place; the form edits any of them.
type OptionsPanel struct {
	method  transform.Method
	values  transform.Options
	cursor  int
	focused bool
}

// NewOptionsPanel creates an empty panel.
func NewOptionsPanel() OptionsPanel {
	return OptionsPanel{}
}

// SetMethod shows m with the given values. The cursor resets when the
// method changes.
func (o *OptionsPanel) SetMethod(m transform.Method, values transform.Options) {
	if m.Name != o.method.Name {
		o.cursor = 0
	}
	o.method = m
	o.values = m.Resolve(values)
}

// Focus sets focus state on the panel.
func (o *OptionsPanel) Focus() {
	o.focused = true
}

// Blur removes focus.
func (o *OptionsPanel) Blur() {
	o.focused = false
}

// Len returns the number of options.
func (o *OptionsPanel) Len() int {
	return len(o.method.Options)
}

// Update handles key presses while focused. The returned change is nil when
// no option value was chosen.
func (o OptionsPanel) Update(msg tea.KeyMsg) (OptionsPanel, *optionChange) {
	if !o.focused || len(o.method.Options) == 0 {
		return o, nil
	}

	spec := o.method.Options[o.cursor]

	switch msg.String() {
	case "up", "k":
		o.cursor = max(o.cursor-1, 0)
	case "down", "j":
		o.cursor = min(o.cursor+1, len(o.method.Options)-1)
	case "left", "h":
		return o.step(spec, -1)
	case "right", "l", " ":
		return o.step(spec, 1)
	}

	return o, nil
}

// step moves a bool, int or choice option by delta.
func (o OptionsPanel) step(spec transform.OptionSpec, delta int) (OptionsPanel, *optionChange) {
	v, ok := stepValue(spec, o.values[spec.Key], delta)
	if !ok {
		return o, nil
	}
	o.values[spec.Key] = v
	return o, &optionChange{key: spec.Key, value: v}
}

func stepValue(spec transform.OptionSpec, cur transform.Value, delta int) (transform.Value, bool) {
	switch spec.Kind {
	case transform.KindBool:
		return transform.BoolValue(!cur.Bool), true
	case transform.KindInt:
		n := cur.Int + delta
		if spec.Min != nil && n < *spec.Min {
			n = *spec.Min
		}
		return transform.IntValue(n), true
	case transform.KindChoice:
		if len(spec.Choices) == 0 {
			return transform.Value{}, false
		}
		i := slices.Index(spec.Choices, cur.Str)
		n := len(spec.Choices)
		i = ((i+delta)%n + n) % n
		return transform.ChoiceValue(spec.Choices[i]), true
	default:
		return transform.Value{}, false
	}
}

// View renders the panel.
func (o OptionsPanel) View() string {
	title := titleBlurredStyle.Render("Options")
	if o.focused {
		title = titleStyle.Render("Options")
	}

	if len(o.method.Options) == 0 {
		return title + "\n" + dimStyle.Render("  none")
	}

	width := 0
	for _, spec := range o.method.Options {
		width = max(width, len(spec.Label))
	}

	lines := []string{title}
	for i, spec := range o.method.Options {
		cursor := " "
		style := normalStyle
		if o.focused && i == o.cursor {
			cursor = iconCursor
			style = selectedStyle
		}

		value := o.values[spec.Key].String()
		if spec.Kind == transform.KindChoice || spec.Kind == transform.KindInt {
			value = "‹ " + value + " ›"
		}

		lines = append(lines, fmt.Sprintf("%s %s  %s", cursor, style.Render(pad(spec.Label, width)), value))
	}
	if o.focused {
		lines = append(lines, dimStyle.Render("  enter edit"))
	}
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	if n := width - len(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}
