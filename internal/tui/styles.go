package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header      lipgloss.Style
	endpoint    lipgloss.Style
	inputPanel  lipgloss.Style
	status      lipgloss.Style
	errorStatus lipgloss.Style
	output      lipgloss.Style
	help        lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("#0a6ed1")
	alert := lipgloss.Color("#e9730c")
	muted := lipgloss.Color("#8396a8")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Padding(0, 1),
		endpoint: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 1),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		status:      lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1),
		errorStatus: lipgloss.NewStyle().Foreground(alert).Bold(true).Padding(0, 1),
		output: lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(muted),
		help: lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
	}
}
