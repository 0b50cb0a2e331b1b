package cmd

import (
	"os"
	"strings"

	"charm.land/lipgloss/v2"
)

var (
	tutorStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8B5CF6")).
			Padding(0, 1)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8")).Italic(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#14B8A6")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F97316"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F43F5E"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E"))
)

// stateStyle colours an understanding state label.
func stateStyle(label string) lipgloss.Style {
	switch label {
	case "secure":
		return successStyle
	case "strengthening":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308"))
	}
	return errorStyle
}

func rule(width int) string {
	return metaStyle.Render(strings.Repeat("─", width))
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
