// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package eventloop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInline_RunsImmediately(t *testing.T) {
	ran := false
	Inline{}.Post(func() { ran = true })
	Inline{}.Post(nil)
	require.True(t, ran)
}

func TestQueue_RunsInPostOrder(t *testing.T) {
	q := NewQueue(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()

	var (
		mu  sync.Mutex
		got []int
	)
	for i := 0; i < 10; i++ {
		i := i
		q.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	finished := make(chan struct{})
	q.Post(func() { close(finished) })

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("queue did not drain")
	}

	q.Stop()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestQueue_PostAfterStop(t *testing.T) {
	q := NewQueue(1)
	q.Stop()
	q.Stop()

	require.ErrorIs(t, q.TryPost(func() {}), ErrClosed)
	require.NoError(t, q.TryPost(nil))
}

func TestQueue_ContextCancel(t *testing.T) {
	q := NewQueue(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, q.Run(ctx), context.Canceled)
	require.ErrorIs(t, q.TryPost(func() {}), ErrClosed)
}
