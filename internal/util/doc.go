// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by longchat packages.
//
// # Key Functions
//
// Display width (terminal cells, via go-runewidth):
//   - Width, Truncate, PadRight, FirstLine
//
// # Usage
//
//	// Fit a message preview into the overlay
//	line := util.Truncate(util.FirstLine(text), 40)
package util
