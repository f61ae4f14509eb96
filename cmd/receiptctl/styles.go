package main

import "github.com/charmbracelet/lipgloss"

var (
	AccentColor  = lipgloss.Color("86")
	SubtleColor  = lipgloss.Color("241")
	SuccessColor = lipgloss.Color("42")
	WarningColor = lipgloss.Color("214")
	ErrorColor   = lipgloss.Color("196")

	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)
	LabelStyle   = lipgloss.NewStyle().Foreground(SubtleColor).Width(18)
	ValueStyle   = lipgloss.NewStyle().Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ErrorColor)
	BoxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(SubtleColor).Padding(0, 1)
)
