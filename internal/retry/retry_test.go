// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package retry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPoll_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), Bounded(time.Hour, 3), func() bool {
		calls++
		return true
	})
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestPoll_EventualSuccess(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), Unbounded(time.Millisecond), func() bool {
		calls++
		return calls == 5
	})
	require.NoError(t, err)
	require.Equal(t, 5, calls)
}

func TestPoll_BoundedExhausts(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), Bounded(time.Millisecond, 4), func() bool {
		calls++
		return false
	})
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 4, calls)
}

func TestPoll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Poll(ctx, Unbounded(time.Millisecond), func() bool {
		calls++
		if calls == 2 {
			cancel()
		}
		return false
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPollLogged_LimitsWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	err := PollLogged(context.Background(), Bounded(time.Millisecond, 10), func() bool {
		return false
	}, zap.New(core), "transcript")

	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, 3, logs.Len())
	require.Equal(t, "transcript", logs.All()[0].ContextMap()["what"])
}
