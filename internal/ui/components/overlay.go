// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/prefs"
	"github.com/jeranaias/longchat/internal/scroll"
	"github.com/jeranaias/longchat/internal/ui/styles"
)

// =============================================================================
// STATS OVERLAY
// =============================================================================

// Store persists the overlay visibility between runs.
type Store interface {
	Bool(key string, def bool) bool
	SetBool(key string, v bool) error
}

// StatsOverlay shows the cache statistics and the last scroll sample.
type StatsOverlay struct {
	theme   *styles.Theme
	store   Store
	log     *zap.Logger
	visible bool
	last    scroll.Report
}

// NewStatsOverlay creates the overlay. The initial visibility comes from
// store, or def when nothing is stored. A nil store keeps state in memory.
func NewStatsOverlay(theme *styles.Theme, store Store, def bool, logger *zap.Logger) *StatsOverlay {
	if logger == nil {
		logger = zap.NewNop()
	}
	visible := def
	if store != nil {
		visible = store.Bool(prefs.KeyOverlayVisible, def)
	}
	return &StatsOverlay{
		theme:   theme,
		store:   store,
		log:     logger.Named("overlay"),
		visible: visible,
	}
}

// Update records the latest report. It is the coordinator's Reporter.
func (o *StatsOverlay) Update(r scroll.Report) {
	o.last = r
}

// Last returns the latest report.
func (o *StatsOverlay) Last() scroll.Report {
	return o.last
}

// Visible reports whether the overlay is shown.
func (o *StatsOverlay) Visible() bool {
	return o.visible
}

// Show shows the overlay and persists the choice.
func (o *StatsOverlay) Show() { o.set(true) }

// Hide hides the overlay and persists the choice.
func (o *StatsOverlay) Hide() { o.set(false) }

// Toggle flips the overlay visibility.
func (o *StatsOverlay) Toggle() {
	o.set(!o.visible)
	o.log.Debug("overlay toggled", zap.Bool("visible", o.visible))
}

func (o *StatsOverlay) set(v bool) {
	o.visible = v
	if o.store == nil {
		return
	}
	if err := o.store.SetBool(prefs.KeyOverlayVisible, v); err != nil {
		o.log.Warn("failed to persist overlay visibility", zap.Error(err))
	}
}

// Text returns the overlay lines without styling.
func (o *StatsOverlay) Text() string {
	st := o.last.Stats
	if st.Total == 0 {
		return "Waiting for messages..."
	}
	s := o.last.Sample
	return "Messages: " + strconv.Itoa(st.Visible) + " / " + strconv.Itoa(st.Total) + "\n" +
		"scrollTop: " + strconv.Itoa(s.Top) + "\n" +
		"clientHeight: " + strconv.Itoa(s.ClientHeight) + "\n" +
		"scrollHeight: " + strconv.Itoa(s.ScrollHeight)
}

// View renders the overlay box, or "" when hidden.
func (o *StatsOverlay) View() string {
	if !o.visible {
		return ""
	}
	lines := strings.Split(o.Text(), "\n")
	for i, line := range lines {
		label, value, ok := strings.Cut(line, ": ")
		if !ok {
			lines[i] = o.theme.Waiting.Render(line)
			continue
		}
		lines[i] = o.theme.OverlayLabel.Render(label+": ") + o.theme.OverlayValue.Render(value)
	}
	return o.theme.Overlay.Render(strings.Join(lines, "\n"))
}

// =============================================================================
// SCROLL BUTTON
// =============================================================================

// ScrollButton is the jump-to-latest control. It is shown while the view is
// away from the bottom.
type ScrollButton struct {
	theme   *styles.Theme
	visible bool
}

var _ scroll.Control = (*ScrollButton)(nil)

// NewScrollButton creates a hidden button.
func NewScrollButton(theme *styles.Theme) *ScrollButton {
	return &ScrollButton{theme: theme}
}

// SetVisible shows or hides the button.
func (b *ScrollButton) SetVisible(visible bool) {
	b.visible = visible
}

// Visible reports whether the button is shown.
func (b *ScrollButton) Visible() bool {
	return b.visible
}

// View renders the button, or "" when hidden.
func (b *ScrollButton) View() string {
	if !b.visible {
		return ""
	}
	return b.theme.ScrollButton.Render("v Latest (G)")
}
