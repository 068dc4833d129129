package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/malla/internal/curriculum"
)

// ---------------------------------------------------------------------------
// Catppuccin Mocha palette, true-color hex values
// https://catppuccin.com/palette
// ---------------------------------------------------------------------------

const (
	colorPink     lipgloss.Color = "#f5c2e7"
	colorMauve    lipgloss.Color = "#cba6f7"
	colorRed      lipgloss.Color = "#f38ba8"
	colorPeach    lipgloss.Color = "#fab387"
	colorYellow   lipgloss.Color = "#f9e2af"
	colorGreen    lipgloss.Color = "#a6e3a1"
	colorTeal     lipgloss.Color = "#94e2d5"
	colorSapphire lipgloss.Color = "#74c7ec"
	colorLavender lipgloss.Color = "#b4befe"

	colorText     lipgloss.Color = "#cdd6f4"
	colorSubtext0 lipgloss.Color = "#a6adc8"
	colorOverlay1 lipgloss.Color = "#7f849c"
	colorSurface1 lipgloss.Color = "#45475a"
	colorSurface0 lipgloss.Color = "#313244"
	colorMantle   lipgloss.Color = "#181825"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorBrand    = colorPink
	colorFocus    = colorLavender
	colorError    = colorRed
	colorEligible = colorMauve
	colorBefore   = colorPeach    // prerequisites of the selected course
	colorAfter    = colorSapphire // courses that depend on the selected course
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	yearStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText).Underline(true)
	termStyle     = lipgloss.NewStyle().Foreground(colorSubtext0).Italic(true)
	statusStyle   = lipgloss.NewStyle().Foreground(colorOverlay1)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	footerStyle   = lipgloss.NewStyle().Foreground(colorSubtext0).Background(colorSurface0).Padding(0, 1)
	cursorStyle   = lipgloss.NewStyle().Background(colorSurface1).Bold(true)
	eligibleStyle = lipgloss.NewStyle().Foreground(colorEligible).Bold(true)
	beforeStyle   = lipgloss.NewStyle().Foreground(colorBefore).Bold(true)
	afterStyle    = lipgloss.NewStyle().Foreground(colorAfter).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(colorSubtext0)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorFocus).Padding(0, 1)
	modalStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBrand).Padding(0, 1).Background(colorMantle)
)

// stateStyle colours a course row by its completion state.
func stateStyle(s curriculum.State) lipgloss.Style {
	switch s {
	case curriculum.Completed:
		return lipgloss.NewStyle().Foreground(colorGreen)
	case curriculum.InProgress:
		return lipgloss.NewStyle().Foreground(colorYellow)
	default:
		return lipgloss.NewStyle().Foreground(colorText)
	}
}

// stateGlyph is the one-cell marker drawn before a course name.
func stateGlyph(s curriculum.State) string {
	switch s {
	case curriculum.Completed:
		return "●"
	case curriculum.InProgress:
		return "◐"
	default:
		return "○"
	}
}

// AllPaletteColors returns every color used by the theme for testing purposes.
func AllPaletteColors() []lipgloss.Color {
	return []lipgloss.Color{
		colorPink, colorMauve, colorRed, colorPeach, colorYellow,
		colorGreen, colorTeal, colorSapphire, colorLavender,
		colorText, colorSubtext0, colorOverlay1,
		colorSurface1, colorSurface0, colorMantle,
	}
}
