package tui

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the monitor screen.
type Theme struct {
	Title         lipgloss.Style
	Subtitle      lipgloss.Style
	Weight        lipgloss.Style
	WeightStale   lipgloss.Style
	StatusOnline  lipgloss.Style
	StatusOffline lipgloss.Style
	RawLine       lipgloss.Style
	BorderedBox   lipgloss.Style
	Help          lipgloss.Style
	Primary       lipgloss.Color
	Muted         lipgloss.Color
	Success       lipgloss.Color
	Error         lipgloss.Color
}

// DefaultTheme is the terminal's standard look.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#7c3aed"),
	Muted:   lipgloss.Color("#737373"),
	Success: lipgloss.Color("#10b981"),
	Error:   lipgloss.Color("#ef4444"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#fafafa")).
		MarginBottom(1),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#a3a3a3")),
	Weight: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#10b981")),
	WeightStale: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#737373")),
	StatusOnline: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#10b981")).
		Bold(true),
	StatusOffline: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#ef4444")).
		Bold(true),
	RawLine: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")),
	BorderedBox: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#404040")).
		Padding(0, 1),
	Help: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#737373")).
		MarginTop(1),
}
