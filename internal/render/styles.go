package render

import (
	"github.com/charmbracelet/lipgloss"
)

// Color palette - lavender theme
var (
	ColorPrimary = lipgloss.Color("#B794F4") // Lavender
	ColorAccent  = lipgloss.Color("#E9D8FD") // Light lavender
	ColorSurface = lipgloss.Color("#2D2D44")

	ColorText      = lipgloss.Color("#FAFAFA")
	ColorTextMuted = lipgloss.Color("#A0A0B0")
	ColorTextDim   = lipgloss.Color("#6B6B80")

	ColorSuccess = lipgloss.Color("#68D391") // Green
	ColorWarning = lipgloss.Color("#F6E05E") // Yellow
	ColorError   = lipgloss.Color("#FC8181") // Red
	ColorInfo    = lipgloss.Color("#63B3ED") // Blue

	ColorLightOn      = lipgloss.Color("#FBBF24") // Warm yellow for on
	ColorLightPartial = lipgloss.Color("#F6AD55")
	ColorLightOff     = lipgloss.Color("#4A4A5A") // Gray for off
)

// brightnessRamp goes from dim to bright, one color per bar segment
var brightnessRamp = []lipgloss.Color{
	"#3D3D5C", "#4A4A6A", "#5A5A7A", "#6A6A8A", "#7A7A9A",
	"#8A8AAA", "#9A9ABA", "#AAAACA", "#BABADA", "#FBBF24",
}

var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			Padding(0, 1)

	StyleCell = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	StyleBorder = lipgloss.NewStyle().
			Foreground(ColorSurface)

	StyleStatusOn = lipgloss.NewStyle().
			Foreground(ColorLightOn).
			Bold(true)

	StyleStatusPartial = lipgloss.NewStyle().
				Foreground(ColorLightPartial)

	StyleStatusOff = lipgloss.NewStyle().
			Foreground(ColorLightOff)

	StyleBrightnessBarEmpty = lipgloss.NewStyle().
				Foreground(ColorSurface)

	StyleSpinner = lipgloss.NewStyle().
			Foreground(ColorPrimary)

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning).
			Bold(true)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	StyleInfo = lipgloss.NewStyle().
			Foreground(ColorInfo)

	StyleTextMuted = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			MarginTop(1)

	StylePrimary = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)
)

// brightnessColor returns the color of bar segment (1-10) for a 0-100 brightness
func brightnessColor(segment int, percent int) lipgloss.Color {
	if segment < 1 || segment > len(brightnessRamp) || percent < segment*10 {
		return ColorSurface
	}
	return brightnessRamp[segment-1]
}
