// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/scroll"
	"github.com/jeranaias/longchat/internal/ui/components"
)

// wheelRows is how far one mouse wheel notch scrolls.
const wheelRows = 3

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case tea.KeyMsg:
		cmd = m.handleKey(msg)

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.userScroll(true, func() { m.viewport.LineUp(wheelRows) })
		case tea.MouseButtonWheelDown:
			m.userScroll(false, func() { m.viewport.LineDown(wheelRows) })
		}

	case callbackMsg:
		msg.fn()

	case transcriptReadyMsg:
		m.attach(msg)

	case transcriptErrMsg:
		m.fail(msg.err)

	case forceTickMsg:
		cmd = m.stepForce(msg)

	case resumeMsg:
		m.resume(msg)

	case components.ToastExpiredMsg:
		m.toasts.Dismiss(msg.ID)

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
	}

	if m.dirty {
		m.dirty = false
		m.rerender()
	}

	if len(m.pending) > 0 {
		cmds := append(m.pending, cmd)
		m.pending = nil
		return m, tea.Batch(cmds...)
	}
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		m.registry.CleanupAll()
		return tea.Quit

	case key.Matches(msg, m.keys.Overlay):
		m.overlay.Toggle()
		m.layout()

	case key.Matches(msg, m.keys.Jump):
		return m.jump()

	case key.Matches(msg, m.keys.Up):
		m.userScroll(true, func() { m.viewport.LineUp(1) })
	case key.Matches(msg, m.keys.Down):
		m.userScroll(false, func() { m.viewport.LineDown(1) })
	case key.Matches(msg, m.keys.PageUp):
		m.userScroll(true, m.viewport.PageUp)
	case key.Matches(msg, m.keys.PageDown):
		m.userScroll(false, m.viewport.PageDown)
	}
	return nil
}

// =============================================================================
// SCROLLING
// =============================================================================

// userScroll moves the viewport and feeds the resulting sample to the
// coordinator. When the window grew backward the offset is shifted by the
// prepended rows so the same line stays under the reader. An upward move
// that cannot lower the offset, because the view is already at the top or
// the content fits, still counts as scrolling up.
func (m *Model) userScroll(up bool, move func()) {
	top := m.viewport.YOffset()
	move()
	s := m.sess
	if s == nil {
		return
	}
	if up && m.viewport.YOffset() >= top {
		s.coord.SetLastTop(top + 1)
	}

	before := m.viewport.TotalLines()
	res := s.coord.OnScroll(m.viewport.Sample())
	if res.Skipped {
		return
	}

	if res.Extended {
		m.render()
		m.viewport.Shift(m.viewport.TotalLines() - before)
		s.coord.SetLastTop(m.viewport.YOffset())
		m.report()
		m.log.Debug("window extended",
			zap.Int("visible", s.virt.Stats().Visible),
			zap.Int("offset", m.viewport.YOffset()))
	}

	m.updateStatus(res.NearBottom)
}

// jump refreshes the window to the newest messages and forces the view to
// the bottom. Scroll samples are ignored until the resume delay has passed.
func (m *Model) jump() tea.Cmd {
	s := m.sess
	if s == nil {
		return nil
	}

	s.coord.Hold()
	s.virt.Refresh()
	m.render()
	s.coord.BeginForce()
	m.forceGen++

	gen := m.forceGen
	interval := s.coord.ForceInterval()
	return tea.Batch(
		forceTick(gen, interval),
		tea.Tick(m.cfg.Scroll.ResumeDelay(), func(time.Time) tea.Msg {
			return resumeMsg{sess: s}
		}),
	)
}

func forceTick(gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return forceTickMsg{gen: gen}
	})
}

func (m *Model) stepForce(msg forceTickMsg) tea.Cmd {
	s := m.sess
	if s == nil || msg.gen != m.forceGen {
		return nil
	}
	if s.coord.StepForce(m.viewport) {
		return forceTick(msg.gen, s.coord.ForceInterval())
	}
	s.coord.SetLastTop(m.viewport.YOffset())
	m.report()
	return nil
}

func (m *Model) resume(msg resumeMsg) {
	s := m.sess
	if s == nil || msg.sess != s {
		return
	}
	s.coord.Release()
	if s.coord.Suspended() {
		return
	}
	res := s.coord.OnScroll(m.viewport.Sample())
	m.updateStatus(res.NearBottom)
}

// =============================================================================
// RENDERING
// =============================================================================

// layout sizes the viewport around the overlay column and re-renders.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	vpWidth := m.width
	if m.overlay.Visible() {
		vpWidth = maxInt(20, m.width-overlayWidth)
	}
	// Rows: viewport (with its indicator row), button row, status bar.
	m.viewport.SetSize(vpWidth, maxInt(3, m.height-2))
	m.renderer.SetWidth(vpWidth - 1)
	m.status.SetWidth(m.width)
	m.theme.SetSize(m.width, m.height)

	if m.sess != nil {
		m.rerender()
	}
}

// render renders the visible messages into the viewport.
func (m *Model) render() {
	s := m.sess
	if s == nil {
		return
	}
	out := m.renderer.Render(s.virt.Cache().Elements())
	m.viewport.SetContent(out.Content, out.Hidden)
	m.status.Stats = s.virt.Stats()
}

// rerender re-renders after the window changed underneath the reader. A
// reader at the bottom stays there; otherwise the distance from the bottom
// is kept.
func (m *Model) rerender() {
	s := m.sess
	if s == nil {
		return
	}
	sample := m.viewport.Sample()
	following := scroll.NearBottom(sample, m.cfg.Scroll.BottomRatio)
	fromBottom := sample.ScrollHeight - sample.Top

	m.render()
	if following || s.coord.Forcing() {
		m.viewport.GotoBottom()
	} else {
		m.viewport.Shift(m.viewport.TotalLines() - fromBottom - m.viewport.YOffset())
	}
	s.coord.SetLastTop(m.viewport.YOffset())
	m.report()
}

// report pushes the current stats and position to the overlay and button
// outside of a coordinator sample.
func (m *Model) report() {
	s := m.sess
	if s == nil {
		return
	}
	sample := m.viewport.Sample()
	near := scroll.NearBottom(sample, m.cfg.Scroll.BottomRatio)
	m.overlay.Update(scroll.Report{Stats: s.virt.Stats(), Sample: sample})
	m.button.SetVisible(!near)
	m.updateStatus(near)
}

func (m *Model) updateStatus(nearBottom bool) {
	if m.err != nil || m.waiting {
		return
	}
	if nearBottom {
		m.status.Status = components.StatusFollowing
	} else {
		m.status.Status = components.StatusBrowsing
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
