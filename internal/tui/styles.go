package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Header    lipgloss.Style
	UserName  lipgloss.Style
	Card      lipgloss.Style
	CardTotal lipgloss.Style
	CardTitle lipgloss.Style
	Amount    lipgloss.Style
	Muted     lipgloss.Style
	Positive  lipgloss.Style
	Negative  lipgloss.Style
	Error     lipgloss.Style
	Section   lipgloss.Style
}

var (
	colorPrimary   = lipgloss.Color("#5636d3")
	colorSecondary = lipgloss.Color("#ff872c")
	colorSuccess   = lipgloss.Color("#12a454")
	colorAttention = lipgloss.Color("#e83f5b")
	colorText      = lipgloss.Color("#969cb2")
	colorShape     = lipgloss.Color("#ffffff")
)

func DefaultStyles() Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorText).
		Padding(0, 2).
		MarginRight(1)
	return Styles{
		Header:    lipgloss.NewStyle().Foreground(colorShape).Background(colorPrimary).Padding(1, 2),
		UserName:  lipgloss.NewStyle().Bold(true),
		Card:      card,
		CardTotal: card.BorderForeground(colorSecondary),
		CardTitle: lipgloss.NewStyle().Foreground(colorText),
		Amount:    lipgloss.NewStyle().Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(colorText),
		Positive:  lipgloss.NewStyle().Foreground(colorSuccess),
		Negative:  lipgloss.NewStyle().Foreground(colorAttention),
		Error:     lipgloss.NewStyle().Foreground(colorAttention).Bold(true),
		Section:   lipgloss.NewStyle().Bold(true).MarginTop(1),
	}
}
