// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the viewer.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderPath  lipgloss.Style

	// Message blocks, keyed by role
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	SystemLabel    lipgloss.Style
	Timestamp      lipgloss.Style
	Body           lipgloss.Style
	Separator      lipgloss.Style

	// Floating widgets
	Overlay      lipgloss.Style
	OverlayLabel lipgloss.Style
	OverlayValue lipgloss.Style
	ScrollButton lipgloss.Style

	StatusBar   lipgloss.Style
	StatusKey   lipgloss.Style
	StatusHint  lipgloss.Style
	Following   lipgloss.Style
	Waiting     lipgloss.Style
	ErrorText   lipgloss.Style
	SpinnerText lipgloss.Style
}

// NewTheme creates a theme for name ("dark", "light" or "auto"). Auto asks
// the terminal for its background.
func NewTheme(name string) *Theme {
	return newTheme(name, termenv.ColorProfile(), termenv.HasDarkBackground)
}

func newTheme(name string, profile termenv.Profile, detectDark func() bool) *Theme {
	var isDark bool
	switch name {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = detectDark()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: profile == termenv.TrueColor,
		ColorProfile: profile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.HeaderPath = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.SystemLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Body = lipgloss.NewStyle().
		Foreground(TextPrimary).
		PaddingLeft(2)

	t.Separator = lipgloss.NewStyle().
		Foreground(Overlay)

	t.Overlay = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Background(SurfaceBright).
		Padding(0, 1)

	t.OverlayLabel = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.OverlayValue = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.ScrollButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextInverse).
		Background(Cyan).
		Padding(0, 1)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.StatusKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.StatusHint = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Following = lipgloss.NewStyle().
		Foreground(Emerald)

	t.Waiting = lipgloss.NewStyle().
		Foreground(Amber).
		Italic(true)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)

	t.SpinnerText = lipgloss.NewStyle().
		Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// RoleLabel returns the label style for a message role.
func (t *Theme) RoleLabel(role string) lipgloss.Style {
	switch role {
	case "user", "human":
		return t.UserLabel
	case "assistant":
		return t.AssistantLabel
	default:
		return t.SystemLabel
	}
}

// GlamourStyle names the glamour standard style matching the background.
func (t *Theme) GlamourStyle() string {
	if t.ColorProfile == termenv.Ascii {
		return "notty"
	}
	if t.IsDark {
		return "dark"
	}
	return "light"
}
