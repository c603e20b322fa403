// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_CleanupAll(t *testing.T) {
	var r Registry
	var order []string

	r.Register(func() { order = append(order, "watcher") })
	r.Register(nil)
	r.Register(func() { order = append(order, "navigator") })
	require.Equal(t, 2, r.Len())

	r.CleanupAll()
	require.Equal(t, []string{"watcher", "navigator"}, order)
	require.Equal(t, 0, r.Len())

	r.CleanupAll()
	require.Len(t, order, 2)
}

func TestRegistry_RegisterDuringCleanup(t *testing.T) {
	var r Registry
	r.Register(func() {
		r.Register(func() {})
	})

	r.CleanupAll()
	require.Equal(t, 1, r.Len())
}
