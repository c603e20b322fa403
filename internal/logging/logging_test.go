// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, zapcore.DebugLevel, ParseLevel("debug"))
	require.Equal(t, zapcore.WarnLevel, ParseLevel(" WARN "))
	require.Equal(t, zapcore.InfoLevel, ParseLevel("chatty"))
	require.Equal(t, zapcore.InfoLevel, ParseLevel(""))
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "longchat.log")
	logger, err := New("debug", path)
	require.NoError(t, err)

	logger.Debug("cache rebuilt")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "cache rebuilt")
}

func TestNew_Disabled(t *testing.T) {
	logger, err := New("debug", "")
	require.NoError(t, err)
	logger.Info("dropped")
}
