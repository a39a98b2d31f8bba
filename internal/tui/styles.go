package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	input    lipgloss.Style
	label    lipgloss.Style
	success  lipgloss.Style
	errorMsg lipgloss.Style
	pending  lipgloss.Style
	box      lipgloss.Style
	bar      lipgloss.Style
}

func newStyles() styles {
	primary := lipgloss.AdaptiveColor{Light: "#3B82F6", Dark: "#60A5FA"}
	secondary := lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	success := lipgloss.AdaptiveColor{Light: "#10B981", Dark: "#34D399"}
	warning := lipgloss.AdaptiveColor{Light: "#F59E0B", Dark: "#FBBF24"}
	errColor := lipgloss.AdaptiveColor{Light: "#EF4444", Dark: "#F87171"}

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(primary).MarginBottom(1),
		muted:    lipgloss.NewStyle().Foreground(secondary),
		input:    lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(primary).Padding(0, 1),
		label:    lipgloss.NewStyle().Bold(true),
		success:  lipgloss.NewStyle().Foreground(success).Bold(true),
		errorMsg: lipgloss.NewStyle().Foreground(errColor),
		pending:  lipgloss.NewStyle().Foreground(warning),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(secondary).Padding(0, 1).MarginTop(1),
		bar:      lipgloss.NewStyle().Foreground(success),
	}
}
