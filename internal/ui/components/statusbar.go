// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/longchat/internal/ui/styles"
	"github.com/jeranaias/longchat/internal/util"
	"github.com/jeranaias/longchat/internal/window"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status is the viewer state shown at the left of the bar.
type Status int

const (
	StatusWaiting Status = iota
	StatusFollowing
	StatusBrowsing
	StatusError
)

// String returns the display string for the status
func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "Waiting"
	case StatusFollowing:
		return "Following"
	case StatusBrowsing:
		return "Browsing"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns a distinct shape per status.
func (s Status) Icon() string {
	switch s {
	case StatusWaiting:
		return "o"
	case StatusFollowing:
		return "*"
	case StatusBrowsing:
		return "^"
	case StatusError:
		return "x"
	default:
		return "?"
	}
}

// StatusBar is the bottom bar: status, transcript name, counts and key hints.
type StatusBar struct {
	Status Status
	Path   string
	Stats  window.Stats
	Error  string
	Width  int
	Keys   []key.Binding
	theme  *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme, keys ...key.Binding) *StatusBar {
	return &StatusBar{
		Status: StatusWaiting,
		Width:  80,
		Keys:   keys,
		theme:  theme,
	}
}

// SetWidth sets the available width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the bar on one line, dropping hints first when narrow.
func (s *StatusBar) View() string {
	left := s.statusView()
	if name := filepath.Base(s.Path); s.Path != "" {
		left += "  " + s.theme.HeaderPath.Render(util.Truncate(name, maxInt(8, s.Width/3)))
	}
	if s.Stats.Total > 0 {
		left += "  " + s.theme.StatusHint.Render(fmtNumber(s.Stats.Visible)+"/"+fmtNumber(s.Stats.Total))
	}
	if s.Status == StatusError && s.Error != "" {
		left += "  " + s.theme.ErrorText.Render(util.Truncate(s.Error, maxInt(10, s.Width/3)))
	}

	right := s.hintsView()
	inner := maxInt(0, s.Width-2)
	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right = ""
		gap = maxInt(0, inner-lipgloss.Width(left))
	}

	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) statusView() string {
	text := s.Status.Icon() + " " + s.Status.String()
	switch s.Status {
	case StatusFollowing:
		return s.theme.Following.Render(text)
	case StatusWaiting:
		return s.theme.Waiting.Render(text)
	case StatusError:
		return s.theme.ErrorText.Render(text)
	default:
		return s.theme.StatusKey.Render(text)
	}
}

func (s *StatusBar) hintsView() string {
	var parts []string
	for _, k := range s.Keys {
		if !k.Enabled() {
			continue
		}
		h := k.Help()
		parts = append(parts, s.theme.StatusKey.Render(h.Key)+" "+s.theme.StatusHint.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
