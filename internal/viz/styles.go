package viz

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	cell    lipgloss.Style
	head    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	accept  lipgloss.Style
	reject  lipgloss.Style
	errText lipgloss.Style
	graph   lipgloss.Style
	help    lipgloss.Style
	panel   lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		header:  lipgloss.NewStyle().Foreground(t.Secondary).Bold(true).MarginBottom(1),
		label:   lipgloss.NewStyle().Foreground(t.Muted).Width(10),
		value:   lipgloss.NewStyle().Foreground(t.Text),
		cell:    lipgloss.NewStyle().Foreground(t.Text),
		head:    lipgloss.NewStyle().Foreground(t.Primary).Bold(true).Underline(true),
		running: lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		accept:  lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		reject:  lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		errText: lipgloss.NewStyle().Foreground(t.Error),
		graph:   lipgloss.NewStyle().Foreground(t.Accent).Padding(1, 0),
		help:    lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(1, 2),
	}
}
