// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/longchat/internal/ui/styles"
)

// =============================================================================
// WAIT SPINNER
// =============================================================================

// WaitSpinner is shown while the transcript file does not exist yet.
type WaitSpinner struct {
	spinner   spinner.Model
	message   string
	detail    string
	startTime time.Time
	isActive  bool
}

// NewWaitSpinner creates an inactive spinner with ASCII frames.
func NewWaitSpinner() WaitSpinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	return WaitSpinner{
		spinner: s,
		message: "Waiting for transcript",
	}
}

// SetDetail sets the line shown under the message, typically the path.
func (s *WaitSpinner) SetDetail(detail string) {
	s.detail = detail
}

// Start activates the spinner and returns its first tick.
func (s *WaitSpinner) Start() tea.Cmd {
	s.isActive = true
	s.startTime = time.Now()
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *WaitSpinner) Stop() {
	s.isActive = false
}

// IsActive reports whether the spinner is running.
func (s *WaitSpinner) IsActive() bool {
	return s.isActive
}

// Update advances the animation.
func (s WaitSpinner) Update(msg tea.Msg) (WaitSpinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner line and detail.
func (s WaitSpinner) View() string {
	if !s.isActive {
		return ""
	}

	result := lipgloss.NewStyle().Foreground(styles.Purple).Render(s.spinner.View()) +
		" " + lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(s.message) +
		lipgloss.NewStyle().Foreground(styles.Purple).Render("...")

	if !s.startTime.IsZero() {
		result += lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(" (" + formatElapsed(time.Since(s.startTime)) + ")")
	}

	if s.detail != "" {
		result += "\n" + lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Render(s.detail)
	}
	return result
}

// formatElapsed formats a duration as "5s" or "2m 5s".
func formatElapsed(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 60 {
		return strconv.Itoa(secs) + "s"
	}
	return strconv.Itoa(secs/60) + "m " + strconv.Itoa(secs%60) + "s"
}
