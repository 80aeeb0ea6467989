package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/casekit/internal/casekit"
	"github.com/hay-kot/casekit/internal/core/transform"
	"github.com/hay-kot/casekit/internal/styles"
)

// MethodPicker is a searchable list of transformations.
type MethodPicker struct {
	input    textinput.Model
	all      []transform.Method
	results  []transform.Method
	cursor   int
	selected string
	focused  bool
	width    int
	height   int
}

// NewMethodPicker creates a picker over methods.
func NewMethodPicker(methods []transform.Method) MethodPicker {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search transformations"
	ti.PromptStyle = lipgloss.NewStyle().Foreground(styles.ColorBlue)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.ColorBlue)

	return MethodPicker{
		input:   ti,
		all:     methods,
		results: methods,
		width:   30,
		height:  10,
	}
}

// SetSize sets the dimensions of the picker.
func (p *MethodPicker) SetSize(width, height int) {
	p.width = width
	p.height = max(height, 3)
	p.input.Width = max(width-4, 1)
}

// SetSelected marks name as the active transformation.
func (p *MethodPicker) SetSelected(name string) {
	p.selected = name
}

// Focus sets focus state on the picker and moves the cursor to the active
// transformation.
func (p *MethodPicker) Focus() tea.Cmd {
	p.focused = true
	for i, m := range p.results {
		if m.Name == p.selected {
			p.cursor = i
		}
	}
	return p.input.Focus()
}

// Blur removes focus and clears the search.
func (p *MethodPicker) Blur() {
	p.focused = false
	p.input.Blur()
	p.input.SetValue("")
	p.filter()
}

// Focused returns whether the picker is focused.
func (p *MethodPicker) Focused() bool {
	return p.focused
}

// Current returns the method under the cursor.
func (p *MethodPicker) Current() (transform.Method, bool) {
	if p.cursor < 0 || p.cursor >= len(p.results) {
		return transform.Method{}, false
	}
	return p.results[p.cursor], true
}

func (p *MethodPicker) filter() {
	p.results = casekit.SearchMethods(p.all, p.input.Value())
	p.cursor = min(p.cursor, max(len(p.results)-1, 0))
}

// Update handles key presses while focused.
func (p MethodPicker) Update(msg tea.KeyMsg) (MethodPicker, tea.Cmd) {
	if !p.focused {
		return p, nil
	}

	switch msg.String() {
	case "up", "ctrl+k":
		p.cursor = max(p.cursor-1, 0)
		return p, nil
	case "down", "ctrl+j":
		p.cursor = min(p.cursor+1, max(len(p.results)-1, 0))
		return p, nil
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.filter()
	}
	return p, cmd
}

// KeyMap returns keys that the picker uses (for help integration).
func (p *MethodPicker) KeyMap() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("up", "ctrl+k"), key.WithHelp("↑", "up")),
		key.NewBinding(key.WithKeys("down", "ctrl+j"), key.WithHelp("↓", "down")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	}
}

// View renders the picker.
func (p MethodPicker) View() string {
	title := titleBlurredStyle.Render("Transformations")
	if p.focused {
		title = titleStyle.Render("Transformations")
	}

	rows := p.height - 2
	if rows < 1 {
		rows = 1
	}

	// Scroll so the cursor stays visible.
	start := 0
	if p.cursor >= rows {
		start = p.cursor - rows + 1
	}
	end := min(start+rows, len(p.results))

	lines := make([]string, 0, rows+2)
	lines = append(lines, title, p.input.View())
	if len(p.results) == 0 {
		lines = append(lines, dimStyle.Render("  no matches"))
	}

	for i := start; i < end; i++ {
		m := p.results[i]

		cursor := " "
		if p.focused && i == p.cursor {
			cursor = iconCursor
		}
		marker := " "
		if m.Name == p.selected {
			marker = iconSelected
		}

		style := normalStyle
		if m.Name == p.selected || (p.focused && i == p.cursor) {
			style = selectedStyle
		}

		label := truncate(m.Label, p.width-len(m.Category)-8)
		lines = append(lines, cursor+marker+" "+style.Render(label)+" "+dimStyle.Render(m.Category))
	}

	return strings.Join(lines, "\n")
}

// truncate cuts s to n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
