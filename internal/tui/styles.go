// Package tui implements the Bubble Tea converter for casekit.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/casekit/internal/styles"
)

// Styles used for rendering the TUI.
var (
	// Title style for panel headers.
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorBlue)

	// Blurred panel header.
	titleBlurredStyle = lipgloss.NewStyle().
				Foreground(styles.ColorGray)

	// Selected item style (matches border color).
	selectedStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue).
			Bold(true)

	// Normal item style (no color, uses terminal default).
	normalStyle = lipgloss.NewStyle()

	// Subtle text such as categories and counts.
	dimStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.ColorRed)

	successStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.ColorYellow)

	// Panel borders; the focused panel gets the accent color.
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorSurface).
			Padding(0, 1)

	panelFocusedStyle = panelStyle.
				BorderForeground(styles.ColorBlue)

	helpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			PaddingLeft(1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(styles.ColorBlue)
)

// Modal styles.
var (
	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.ColorBlue).
			Padding(1, 2)

	modalTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.ColorWhite)

	modalHelpStyle = lipgloss.NewStyle().
			Foreground(styles.ColorGray).
			MarginTop(1)

	modalButtonStyle = lipgloss.NewStyle().
				Padding(0, 1).
				Background(styles.ColorSurface).
				Foreground(lipgloss.Color("#a9b1d6"))

	modalButtonSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Background(styles.ColorBlue).
					Foreground(lipgloss.Color("#1a1b26")).
					Bold(true)
)

// Icons and symbols.
const (
	iconDot      = "•" // Unicode bullet separator
	iconSelected = "●"
	iconCursor   = ">"
)

// bannerStyle styles the ASCII art banner.
var bannerStyle = styles.BannerStyle.
	PaddingLeft(1)
