// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package retry provides fixed-delay polling for collaborators that may not
// exist yet, such as a transcript file that has not been created.
package retry

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrExhausted is returned when a bounded policy runs out of attempts.
var ErrExhausted = errors.New("retry: attempts exhausted")

// Policy describes a fixed-delay retry. MaxAttempts == 0 retries forever.
type Policy struct {
	Interval    time.Duration
	MaxAttempts int
}

// Unbounded returns a policy that polls every interval until cancelled.
func Unbounded(interval time.Duration) Policy {
	return Policy{Interval: interval}
}

// Bounded returns a policy that gives up after attempts probes.
func Bounded(interval time.Duration, attempts int) Policy {
	return Policy{Interval: interval, MaxAttempts: attempts}
}

// Probe reports whether the awaited condition holds.
type Probe func() bool

// Poll calls probe immediately and then once per interval until it returns
// true, the policy is exhausted, or ctx is done.
func Poll(ctx context.Context, p Policy, probe Probe) error {
	return PollLogged(ctx, p, probe, nil, "")
}

// PollLogged is Poll with a warning for each miss. Only the first three
// misses are logged so a collaborator that appears late does not flood the
// log.
func PollLogged(ctx context.Context, p Policy, probe Probe, logger *zap.Logger, what string) error {
	if p.Interval <= 0 {
		p.Interval = time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	warn := rate.Sometimes{First: 3}

	attempts := 0
	for {
		attempts++
		if probe() {
			return nil
		}
		warn.Do(func() {
			logger.Warn("collaborator not found, retrying",
				zap.String("what", what),
				zap.Int("attempt", attempts),
				zap.Duration("interval", p.Interval))
		})
		if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
			return ErrExhausted
		}

		timer := time.NewTimer(p.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
