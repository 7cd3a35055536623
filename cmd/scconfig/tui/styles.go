// Package tui provides the interactive results browser for scconfig. It
// lists the records of a verify run, shows the processing trace of the
// highlighted entry and lets the user pick pending changes to apply.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jamesainslie/scconfig/pkg/scconfig/trace"
)

var (
	primaryColor = lipgloss.Color("#7D56F4")
	successColor = lipgloss.Color("#28A745")
	warningColor = lipgloss.Color("#FFC107")
	dangerColor  = lipgloss.Color("#DC3545")
	mutedColor   = lipgloss.Color("#666666")
	borderColor  = lipgloss.Color("#333333")

	highlightColor = lipgloss.Color("#1A1A2E")
)

var (
	outerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(borderColor)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	mutedTextStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	selectedItemStyle = lipgloss.NewStyle().
				Background(highlightColor).
				Foreground(lipgloss.Color("#FFFFFF")).
				Bold(true)

	normalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	checkedStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	uncheckedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	cursorStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	keyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	keyDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	detailBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	dialogBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningColor).
			Padding(1, 2).
			Width(50)

	dialogTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(warningColor)
)

// statusStyle returns the badge style for a record status.
func statusStyle(s trace.Status) lipgloss.Style {
	switch s {
	case trace.StatusOK:
		return lipgloss.NewStyle().Foreground(successColor).Bold(true)
	case trace.StatusActionRequired:
		return lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	case trace.StatusFailed:
		return lipgloss.NewStyle().Foreground(dangerColor).Bold(true)
	default:
		return mutedTextStyle
	}
}

// renderDivider creates a horizontal divider line.
func renderDivider(width int) string {
	return dividerStyle.Render(repeatChar('─', width))
}

func repeatChar(char rune, n int) string {
	if n <= 0 {
		return ""
	}
	result := make([]rune, n)
	for i := range result {
		result[i] = char
	}
	return string(result)
}

// truncatePath truncates a path to fit within maxLen, preserving the end.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		return path[:maxLen]
	}
	return "..." + path[len(path)-(maxLen-3):]
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + repeatChar(' ', width-len(s))
}
