// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/longchat/internal/scroll"
	"github.com/jeranaias/longchat/internal/ui/styles"
)

// =============================================================================
// TRANSCRIPT VIEWPORT - Scrollable message area
// =============================================================================

// TranscriptViewport wraps a bubbles viewport and exposes it as the scroll
// container: samples for the coordinator and the nudge surface for forced
// scrolls. Positions are in rows.
type TranscriptViewport struct {
	viewport viewport.Model
	theme    *styles.Theme
	width    int
	height   int
	ready    bool

	// hidden is the number of older messages not rendered.
	hidden int
}

var _ scroll.Container = (*TranscriptViewport)(nil)

// NewTranscriptViewport creates an empty viewport.
func NewTranscriptViewport(theme *styles.Theme) *TranscriptViewport {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()
	return &TranscriptViewport{
		viewport: vp,
		theme:    theme,
		width:    80,
		height:   20,
	}
}

// SetSize updates the viewport dimensions. One row is reserved for the
// "older messages" indicator.
func (tv *TranscriptViewport) SetSize(width, height int) {
	tv.width = width
	tv.height = height
	tv.viewport.Width = width
	tv.viewport.Height = maxInt(1, height-1)
	tv.ready = true
}

// SetContent replaces the rendered content, keeping the offset in bounds.
func (tv *TranscriptViewport) SetContent(content string, hidden int) {
	tv.hidden = hidden
	tv.viewport.SetContent(content)
	tv.clamp()
}

// Sample reads the current scroll position.
func (tv *TranscriptViewport) Sample() scroll.Sample {
	return scroll.Sample{
		Top:          tv.viewport.YOffset,
		ClientHeight: tv.viewport.Height,
		ScrollHeight: tv.viewport.TotalLineCount(),
	}
}

// BottomOffset is the number of rows between the last line and the bottom
// edge of the view.
func (tv *TranscriptViewport) BottomOffset() (int, bool) {
	total := tv.viewport.TotalLineCount()
	if total == 0 {
		return 0, false
	}
	return maxInt(0, total-(tv.viewport.YOffset+tv.viewport.Height)), true
}

// ScrollBy moves the offset by delta rows.
func (tv *TranscriptViewport) ScrollBy(delta int) {
	tv.viewport.SetYOffset(tv.viewport.YOffset + delta)
}

// Shift moves the offset by delta rows without going through the user
// scroll path, used after older content is prepended.
func (tv *TranscriptViewport) Shift(delta int) {
	tv.ScrollBy(delta)
}

// LineUp scrolls up n rows.
func (tv *TranscriptViewport) LineUp(n int) { tv.ScrollBy(-n) }

// LineDown scrolls down n rows.
func (tv *TranscriptViewport) LineDown(n int) { tv.ScrollBy(n) }

// PageUp scrolls up one page.
func (tv *TranscriptViewport) PageUp() { tv.ScrollBy(-tv.viewport.Height) }

// PageDown scrolls down one page.
func (tv *TranscriptViewport) PageDown() { tv.ScrollBy(tv.viewport.Height) }

// GotoBottom jumps to the last line.
func (tv *TranscriptViewport) GotoBottom() { tv.viewport.GotoBottom() }

// YOffset returns the current offset.
func (tv *TranscriptViewport) YOffset() int { return tv.viewport.YOffset }

// TotalLines returns the rendered line count.
func (tv *TranscriptViewport) TotalLines() int { return tv.viewport.TotalLineCount() }

// AtBottom reports whether the last line is in view.
func (tv *TranscriptViewport) AtBottom() bool { return tv.viewport.AtBottom() }

// Width returns the content width.
func (tv *TranscriptViewport) Width() int { return tv.width }

func (tv *TranscriptViewport) clamp() {
	tv.viewport.SetYOffset(tv.viewport.YOffset)
}

// View renders the indicator row and the viewport.
func (tv *TranscriptViewport) View() string {
	if !tv.ready {
		return ""
	}
	var b strings.Builder
	b.WriteString(tv.renderTopIndicator())
	b.WriteString("\n")
	b.WriteString(tv.viewport.View())
	return b.String()
}

// renderTopIndicator shows how many older messages are hidden above.
func (tv *TranscriptViewport) renderTopIndicator() string {
	style := lipgloss.NewStyle().
		Width(tv.width).
		Align(lipgloss.Center)

	if tv.hidden == 0 {
		return style.Render("")
	}

	arrow := lipgloss.NewStyle().Foreground(styles.Cyan).Render("^")
	text := lipgloss.NewStyle().
		Foreground(styles.TextMuted).
		Italic(true).
		Render(fmtNumber(tv.hidden) + " older messages, scroll up to load")
	return style.Render(arrow + " " + text)
}
