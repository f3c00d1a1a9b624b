package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
}

func New(palette *Palette) *Theme {
	return &Theme{Palette: palette}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleSurface = 0.0 // row chrome, separators
	RoleMuted   = 0.1 // meta events, blank columns
	RoleInfo    = 0.3 // status level
	RoleAccent  = 0.4 // cursor row, note detail
	RoleDebug   = 0.5 // debug level
	RoleWarning = 0.8 // warn level
	RoleError   = 1.0 // error level
)

// Style helpers

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Info() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleInfo))
}

func (t *Theme) Accent() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleAccent))
}

func (t *Theme) Debug() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleDebug))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

func (t *Theme) Error() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleError))
}

// HeaderStyle is the TUI title bar.
func (t *Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Accent())
}

// StatusStyle is the TUI bottom status bar.
func (t *Theme) StatusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted())
}

// CursorStyle highlights the selected event row.
func (t *Theme) CursorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.Accent()).Reverse(true)
}

// MetaStyle dims meta event rows so channel traffic stands out.
func (t *Theme) MetaStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Muted())
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
