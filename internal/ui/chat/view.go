// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/longchat/internal/ui/components"
)

// View renders the viewer.
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	bodyHeight := maxInt(1, m.height-1)

	var body string
	switch {
	case m.waiting:
		body = components.PlaceholderView(m.spinner.View(), m.width, bodyHeight, lipgloss.NewStyle())
	case m.sess == nil && m.err != nil:
		body = components.PlaceholderView(m.err.Error(), m.width, bodyHeight, m.theme.ErrorText)
	default:
		main := m.viewport.View()
		if ov := m.overlay.View(); ov != "" {
			main = lipgloss.JoinHorizontal(lipgloss.Top, main, ov)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, main, m.controlRow())
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, m.status.View())
}

// controlRow is the row under the transcript: the jump button centered, or
// the newest toast when one is shown.
func (m *Model) controlRow() string {
	if m.toasts.Len() > 0 {
		return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, m.toasts.View(m.width-1))
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, m.button.View())
}
