package tui

import "github.com/charmbracelet/lipgloss"

const (
	primaryColor   = "#2E86DE" // sky
	secondaryColor = "#10B981" // green
	warningColor   = "#F59E0B" // amber
	errorColor     = "#EF4444" // red
	dimColor       = "#6B7280" // gray
)

var (
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(primaryColor)).
			Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(primaryColor)).
			Bold(true)

	HUDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))

	ProblemStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(1, 0)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(secondaryColor))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(errorColor))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(warningColor))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(dimColor))
)

// cageStyles follow the session's cage skin, 1 to 4.
var cageStyles = []lipgloss.Style{
	lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#7A5A3A")).Padding(0, 1),
	lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("#A0A4AB")).Padding(0, 1),
	lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("#C9A227")).Padding(0, 1),
	lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("#3BC0C8")).Padding(0, 1),
}

func cageStyle(skin int) lipgloss.Style {
	if skin < 1 || skin > len(cageStyles) {
		skin = 1
	}
	return cageStyles[skin-1]
}
