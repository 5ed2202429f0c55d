package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed    = lipgloss.Color("#F87171")
	ColorBlue   = lipgloss.Color("#60A5FA")
	ColorYellow = lipgloss.Color("#EAB308")
	ColorGray   = lipgloss.Color("#9CA3AF")
	ColorDim    = lipgloss.Color("#6B7280")
	ColorWhite  = lipgloss.Color("#FFFFFF")
	ColorTabBg  = lipgloss.Color("#2563EB")
	ColorPanel  = lipgloss.Color("#374151")
)

// Base styles reused by the views.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	ErrorTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	SpeakerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBlue)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	UtteranceStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(ColorGray)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(ColorGray)

	ActiveTabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Bold(true).
			Foreground(ColorWhite).
			Background(ColorTabBg)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPanel).
			Padding(0, 1)

	ListeningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	IdleStyle = lipgloss.NewStyle().
			Foreground(ColorBlue)

	UnsupportedBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorDim)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)
)

// SpinnerStyle colors the activity spinner.
var SpinnerStyle = lipgloss.NewStyle().Foreground(ColorBlue)
