// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - WindowConfig: visible window size and extension chunk
//   - ScrollConfig: coordinator thresholds and force-scroll bounds
//   - WatchConfig: transcript polling and container wait
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (LONGCHAT_*)
//   - ~/.longchat/config.toml
//   - ~/.longchat/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("config: %v (using defaults)", err)
//	}
//	keep := cfg.Window.KeepRecent
package config
