// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
)

func TestNewTheme_ExplicitBackground(t *testing.T) {
	called := false
	detect := func() bool { called = true; return false }

	dark := newTheme("dark", termenv.TrueColor, detect)
	require.True(t, dark.IsDark)
	require.True(t, dark.HasTrueColor)
	require.Equal(t, "dark", dark.GlamourStyle())

	light := newTheme("light", termenv.ANSI256, detect)
	require.False(t, light.IsDark)
	require.False(t, light.HasTrueColor)
	require.Equal(t, "light", light.GlamourStyle())

	require.False(t, called, "explicit themes must not query the terminal")
}

func TestNewTheme_AutoDetects(t *testing.T) {
	theme := newTheme("auto", termenv.ANSI, func() bool { return true })
	require.True(t, theme.IsDark)
}

func TestTheme_AsciiUsesNottyGlamour(t *testing.T) {
	theme := newTheme("dark", termenv.Ascii, func() bool { return true })
	require.Equal(t, "notty", theme.GlamourStyle())
}

func TestTheme_RoleLabel(t *testing.T) {
	theme := newTheme("dark", termenv.Ascii, func() bool { return true })

	require.Contains(t, theme.RoleLabel("user").Render("you"), "you")
	require.Equal(t, theme.UserLabel.GetForeground(), theme.RoleLabel("human").GetForeground())
	require.Equal(t, theme.AssistantLabel.GetForeground(), theme.RoleLabel("assistant").GetForeground())
	require.Equal(t, theme.SystemLabel.GetForeground(), theme.RoleLabel("tool").GetForeground())
}

func TestTheme_SetSize(t *testing.T) {
	theme := newTheme("light", termenv.Ascii, func() bool { return false })
	theme.SetSize(120, 40)
	require.Equal(t, 120, theme.Width)
	require.Equal(t, 40, theme.Height)
}
