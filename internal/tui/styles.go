package tui

import "github.com/charmbracelet/lipgloss"

const (
	cardWidth = 8
	barWidth  = 6
)

var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Width(cardWidth).
			Align(lipgloss.Center)

	SelectedCardStyle = CardStyle.
				BorderForeground(lipgloss.Color("214"))

	MatchedCardStyle = CardStyle.
				BorderForeground(lipgloss.Color("236")).
				Faint(true)

	FaceDownStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	BonusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	ExpiredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))

	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	WinStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	HelpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
