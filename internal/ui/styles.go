package ui

import (
	"github.com/charmbracelet/lipgloss"

	"totwist/internal/settings"
	"totwist/internal/task"
)

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	muted    lipgloss.Style
	cursor   lipgloss.Style
	active   lipgloss.Style
	column   lipgloss.Style
	today    lipgloss.Style
	box      lipgloss.Style
	badge    lipgloss.Style
	priority map[task.Priority]lipgloss.Style
}

func newStyles(t settings.Theme) styles {
	primary := lipgloss.Color(t.Primary)
	accent := lipgloss.Color(t.Accent)
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(primary),
		header: lipgloss.NewStyle().Bold(true).Foreground(primary).Underline(true),
		muted:  lipgloss.NewStyle().Faint(true),
		cursor: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Card)).Background(primary),
		active: lipgloss.NewStyle().Bold(true).Foreground(primary),
		column: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		today:  lipgloss.NewStyle().Bold(true).Foreground(primary).Background(accent),
		box:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(primary).Padding(0, 1),
		badge:  lipgloss.NewStyle().Foreground(lipgloss.Color("#1d4ed8")),
		priority: map[task.Priority]lipgloss.Style{
			task.P1: lipgloss.NewStyle().Foreground(lipgloss.Color("#e5484d")),
			task.P2: lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
			task.P3: lipgloss.NewStyle().Foreground(primary),
			task.P4: lipgloss.NewStyle().Faint(true),
		},
	}
}
