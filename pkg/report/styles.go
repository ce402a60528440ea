// Package report renders validation, simulation and repair results for
// terminals.
package report

import "github.com/charmbracelet/lipgloss"

// Severity glyphs convey meaning without relying on color alone.
const (
	GlyphCritical = "✗"
	GlyphWarning  = "!"
	GlyphOK       = "✓"
	GlyphBlocked  = "⛔"
	GlyphStep     = "▸"
)

// Palette adapts to terminal capabilities via lipgloss.
var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorCyan   = lipgloss.Color("51")
	colorDim    = lipgloss.Color("240")
)

var (
	criticalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	okStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorGreen)

	codeStyle = lipgloss.NewStyle().
			Bold(true)

	locStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	hintStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(colorDim)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)
)
