package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Alliance/Horde flavoured palette
	azure  = lipgloss.Color("#3FC7EB")
	gold   = lipgloss.Color("#FFD100")
	blood  = lipgloss.Color("#C41E3A")
	fel    = lipgloss.Color("#1EFF00")
	epic   = lipgloss.Color("#A335EE")
	slate  = lipgloss.Color("#7A7A7A")
	shadow = lipgloss.Color("#333333")

	logoStyle = lipgloss.NewStyle().
			Foreground(azure).
			Bold(true)

	labelStyle     = lipgloss.NewStyle().Foreground(azure)
	valueStyle     = lipgloss.NewStyle().Foreground(gold)
	errorStyle     = lipgloss.NewStyle().Foreground(blood).Bold(true)
	successStyle   = lipgloss.NewStyle().Foreground(fel).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(epic)
	dimStyle       = lipgloss.NewStyle().Foreground(slate).Faint(true)

	barStyle      = lipgloss.NewStyle().Foreground(fel)
	barEmptyStyle = lipgloss.NewStyle().Foreground(shadow)
)

// progressBarStyle picks the bar colour by completion percentage.
func progressBarStyle(percentage float64) lipgloss.Style {
	switch {
	case percentage >= 100:
		return barStyle
	case percentage >= 50:
		return barStyle.Foreground(gold)
	default:
		return barStyle.Foreground(epic)
	}
}
