package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/casekit/internal/core/shortcut"
)

type modalOutcome int

const (
	modalPending modalOutcome = iota
	modalConfirmed
	modalCancelled
)

// Modal asks the user to confirm a destructive action before it is run.
type Modal struct {
	title   string
	message string
	action  shortcut.Action
	confirm bool
}

// NewModal creates a prompt for action. Cancel is selected initially.
func NewModal(title, message string, action shortcut.Action) Modal {
	return Modal{title: title, message: message, action: action}
}

// Action returns the action the modal guards.
func (m Modal) Action() shortcut.Action {
	return m.action
}

// Update applies a key press and reports whether the prompt was answered.
func (m Modal) Update(keyStr string) (Modal, modalOutcome) {
	switch keyStr {
	case "left", "right", "h", "l", "tab":
		m.confirm = !m.confirm
	case "y":
		return m, modalConfirmed
	case "n", keyEsc:
		return m, modalCancelled
	case keyEnter:
		if m.confirm {
			return m, modalConfirmed
		}
		return m, modalCancelled
	}
	return m, modalPending
}

// Overlay renders the prompt centered over a width x height area.
func (m Modal) Overlay(width, height int) string {
	confirmBtn, cancelBtn := modalButtonStyle, modalButtonSelectedStyle
	if m.confirm {
		confirmBtn, cancelBtn = cancelBtn, confirmBtn
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		confirmBtn.Render("Confirm"), "  ", cancelBtn.Render("Cancel"))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render(m.title),
		"",
		m.message,
		lipgloss.NewStyle().MarginTop(1).Render(buttons),
		modalHelpStyle.Render("←/→ select  enter choose  y/n answer"),
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, modalStyle.Render(content))
}
