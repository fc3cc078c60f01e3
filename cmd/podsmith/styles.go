// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette - shared hex colors for consistent theming across all CLI
// output, tuned for dark terminal backgrounds.
const (
	// ColorPrimary is purple - used for titles, headers, and primary emphasis.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray - used for subtitles, secondary text, and de-emphasized content.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green - used for success states and running containers.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red - used for errors and failed states.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber - used for warnings and degraded states.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue - used for identifiers and values.
	ColorHighlight = lipgloss.Color("#3B82F6")
)

// Base styles built from the palette.
var (
	// TitleStyle is for primary headers and section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary headers and descriptions.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle is for success messages and positive indicators.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle is for error messages and failure indicators.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle is for warning messages and caution indicators.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// ValueStyle is for container IDs, names and other values.
	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// labelStyle is for field labels in rendered records.
	labelStyle = lipgloss.NewStyle().
			Foreground(ColorMuted).
			Width(14)
)

// statusStyle colors a container status string.
func statusStyle(status string) lipgloss.Style {
	switch status {
	case "running":
		return SuccessStyle
	case "exited", "removed":
		return WarningStyle
	default:
		return SubtitleStyle
	}
}
