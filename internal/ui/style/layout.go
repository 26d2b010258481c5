package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Text).
			Bold(true).
			Align(lipgloss.Center)

	CountdownStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Align(lipgloss.Center)

	LabelStyle = lipgloss.NewStyle().
			Foreground(palette.TextSecondary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(1, 2)

	WarningBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(palette.Warning).
			Foreground(palette.Warning).
			Padding(0, 1)

	DescriptionBoxStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(palette.Success).
				Foreground(palette.TextSecondary).
				Padding(0, 1)
)

// Button styles
var (
	SideButtonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Foreground(palette.Info).
			Padding(0, 2)

	SideButtonActiveStyle = SideButtonStyle.
				Background(palette.Info).
				Foreground(palette.Text).
				Bold(true)

	ButtonStyle = lipgloss.NewStyle().
			Background(palette.Info).
			Foreground(palette.Text).
			Bold(true).
			Padding(0, 3)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Background(palette.BackgroundAlt).
				Foreground(palette.TextMuted).
				Padding(0, 3)

	FocusedStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)
)

// Log level styles
var (
	DebugStyle = lipgloss.NewStyle().Foreground(palette.TextMuted)
	InfoStyle  = lipgloss.NewStyle().Foreground(palette.Text)
	WarnStyle  = lipgloss.NewStyle().Foreground(palette.Warning).Bold(true)
	ErrorStyle = lipgloss.NewStyle().Foreground(palette.Error).Bold(true)
)

// LevelStyle picks the style for a zap level name.
func LevelStyle(level string) lipgloss.Style {
	switch level {
	case "debug":
		return DebugStyle
	case "warn":
		return WarnStyle
	case "error", "dpanic", "panic", "fatal":
		return ErrorStyle
	default:
		return InfoStyle
	}
}
