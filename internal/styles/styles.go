// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Tokyo Night color palette.
var (
	ColorGreen   = lipgloss.Color("#9ece6a")
	ColorYellow  = lipgloss.Color("#e0af68")
	ColorBlue    = lipgloss.Color("#7aa2f7")
	ColorRed     = lipgloss.Color("#f7768e")
	ColorGray    = lipgloss.Color("#565f89")
	ColorWhite   = lipgloss.Color("#c0caf5")
	ColorSurface = lipgloss.Color("#3b4261")
)

// Banner ASCII art for the header.
const Banner = `
 ╔═╗╔═╗╔═╗╔═╗╦╔═╦╔╦╗
 ║  ╠═╣╚═╗║╣ ╠╩╗║ ║
 ╚═╝╩ ╩╚═╝╚═╝╩ ╩╩ ╩`

// BannerStyle styles the ASCII art banner.
var BannerStyle = lipgloss.NewStyle().
	Foreground(ColorBlue).
	Bold(true)

// DividerStyle styles horizontal dividers.
var DividerStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// FormTheme returns the huh theme used for forms.
func FormTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.BorderForeground(ColorBlue)
	t.Focused.Title = t.Focused.Title.Foreground(ColorBlue).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(ColorGray)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(ColorRed)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(ColorRed)
	t.Focused.SelectSelector = t.Focused.SelectSelector.Foreground(ColorBlue)
	t.Focused.SelectedOption = t.Focused.SelectedOption.Foreground(ColorGreen)
	t.Focused.FocusedButton = t.Focused.FocusedButton.Foreground(ColorWhite).Background(ColorBlue)
	t.Focused.BlurredButton = t.Focused.BlurredButton.Foreground(ColorGray).Background(ColorSurface)

	t.Blurred = t.Focused
	t.Blurred.Base = t.Blurred.Base.BorderStyle(lipgloss.HiddenBorder())
	t.Blurred.Title = t.Blurred.Title.Foreground(ColorGray).Bold(false)

	return t
}
