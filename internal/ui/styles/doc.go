// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the longchat viewer.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme)
//	label := theme.RoleLabel(node.Role).Render(node.Role)
package styles
