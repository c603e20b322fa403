// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ident resolves stable identities for message elements.
//
// An element's natural identity is used when present. Otherwise a synthetic
// identity is generated once and attached back to the element so every later
// lookup returns the same value.
package ident

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/window"
)

// FallbackPrefix starts every synthetic identity.
const FallbackPrefix = "fallback-"

// Resolver derives identities for elements of type E.
type Resolver[E any] struct {
	// Natural returns the element's own identity, or "" when it has none.
	Natural func(E) string
	// Attach stores a synthetic identity on the element.
	Attach func(E, string)

	log *zap.Logger
	now func() time.Time
}

// New creates a Resolver. A nil logger disables diagnostics.
func New[E any](natural func(E) string, attach func(E, string), logger *zap.Logger) *Resolver[E] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver[E]{
		Natural: natural,
		Attach:  attach,
		log:     logger.Named("ident"),
		now:     time.Now,
	}
}

// Resolve returns the identity of e, synthesizing and attaching one if needed.
func (r *Resolver[E]) Resolve(e E) string {
	if r.Natural != nil {
		if id := r.Natural(e); id != "" {
			return id
		}
	}

	id := Synthetic(r.now())
	r.log.Warn("missing identity, generated fallback", zap.String("id", id))
	if r.Attach != nil {
		r.Attach(e, id)
	}
	return id
}

// Func adapts the resolver to a window.IdentityFunc.
func (r *Resolver[E]) Func() window.IdentityFunc[E] {
	return r.Resolve
}

// Synthetic builds a fallback identity for the given instant.
func Synthetic(at time.Time) string {
	return fmt.Sprintf("%s%d-%s", FallbackPrefix, at.UnixMilli(), uuid.NewString()[:8])
}

// IsSynthetic reports whether id was produced by Synthetic.
func IsSynthetic(id string) bool {
	return len(id) > len(FallbackPrefix) && id[:len(FallbackPrefix)] == FallbackPrefix
}
