package ui

import (
	"github.com/bitrook/offload/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// Catppuccin Mocha palette — mutable so config can override.
var (
	ColorAccent = lipgloss.Color("#89b4fa")
	ColorGood   = lipgloss.Color("#a6e3a1")
	ColorBad    = lipgloss.Color("#f38ba8")
	ColorMuted  = lipgloss.Color("#5a6278")
	ColorBright = lipgloss.Color("#cdd6f4")
)

// Pre-built styles — rebuilt by rebuildStyles() after color changes.
var (
	styleTitle       lipgloss.Style
	styleCursor      lipgloss.Style
	styleSelected    lipgloss.Style
	styleDeviceName  lipgloss.Style
	styleDeviceMeta  lipgloss.Style
	styleRemovable   lipgloss.Style
	styleWarning     lipgloss.Style
	styleKeyHint     lipgloss.Style
	styleTableHeader lipgloss.Style
	styleTableBorder lipgloss.Style
)

func init() {
	rebuildStyles()
}

// rebuildStyles reconstructs all lipgloss styles from the current color vars.
func rebuildStyles() {
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(ColorBright)
	styleCursor = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	styleSelected = lipgloss.NewStyle().Foreground(ColorAccent)
	styleDeviceName = lipgloss.NewStyle().Foreground(ColorBright)
	styleDeviceMeta = lipgloss.NewStyle().Foreground(ColorMuted)
	styleRemovable = lipgloss.NewStyle().Foreground(ColorGood)
	styleWarning = lipgloss.NewStyle().Foreground(ColorBad)
	styleKeyHint = lipgloss.NewStyle().Foreground(ColorMuted)
	styleTableHeader = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	styleTableBorder = lipgloss.NewStyle().Foreground(ColorMuted)
}

// ApplyTheme overrides palette colors from config and rebuilds all styles.
func ApplyTheme(tc config.Theme) {
	if tc.Accent != nil {
		ColorAccent = lipgloss.Color(*tc.Accent)
	}
	if tc.Good != nil {
		ColorGood = lipgloss.Color(*tc.Good)
	}
	if tc.Bad != nil {
		ColorBad = lipgloss.Color(*tc.Bad)
	}
	if tc.Muted != nil {
		ColorMuted = lipgloss.Color(*tc.Muted)
	}
	rebuildStyles()
}
