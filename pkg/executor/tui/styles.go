package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette
// This is the single source of truth for all TUI colors.
var (
	salmonPink  = lipgloss.Color("#FFB3BA") // primary accent
	coralPink   = lipgloss.Color("#FFCCCB") // secondary accent
	mintGreen   = lipgloss.Color("#A8E6CF") // enabled controls, success
	mutedGray   = lipgloss.Color("#6B7280") // secondary text, disabled controls
	brightWhite = lipgloss.Color("#F9FAFB") // primary text
)

// Common Styles
var (
	headerStyle = lipgloss.NewStyle().
			Foreground(salmonPink).
			Bold(true)

	tipsStyle = lipgloss.NewStyle().
			Foreground(mutedGray)

	addressBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(salmonPink).
			Padding(0, 1)

	panelBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedGray).
			Padding(0, 1)

	controlStyle = lipgloss.NewStyle().
			Foreground(mintGreen).
			Border(lipgloss.NormalBorder()).
			BorderForeground(mintGreen).
			Padding(0, 1)

	selectedControlStyle = controlStyle.
				Foreground(brightWhite).
				BorderForeground(salmonPink).
				Bold(true)

	disabledControlStyle = controlStyle.
				Foreground(mutedGray).
				BorderForeground(mutedGray)

	tooltipStyle = lipgloss.NewStyle().
			Foreground(coralPink).
			Italic(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(mutedGray).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(salmonPink)

	// overlayTitleStyle is used for overlay titles
	overlayTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(salmonPink)

	// overlayHelpStyle is used for key hints
	overlayHelpStyle = lipgloss.NewStyle().
				Foreground(mutedGray).
				Italic(true)

	overlayContainerStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(salmonPink).
				Padding(1, 2)
)
