package tui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Header    lipgloss.Style
	Selected  lipgloss.Style
	Linked    lipgloss.Style
	Muted     lipgloss.Style
	Status    map[string]lipgloss.Style
	Suggest   lipgloss.Style
	ErrorLine lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57")),
		Linked:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Status: map[string]lipgloss.Style{
			"synced":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			"pending":  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
			"conflict": lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
			"error":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
			"checking": lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
			"unknown":  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		},
		Suggest:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("212")).Padding(0, 1),
		ErrorLine: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}
