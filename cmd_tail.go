// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/config"
	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/logging"
	"github.com/jeranaias/longchat/internal/retry"
	"github.com/jeranaias/longchat/internal/transcript"
	"github.com/jeranaias/longchat/internal/watch"
	"github.com/jeranaias/longchat/internal/window"
)

// errReset ends one follow cycle when the transcript is truncated or replaced.
var errReset = errors.New("transcript reset")

func newTailCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tail <file>",
		Short: "Follow a transcript headless and print window stats",
		Long: `Waits for the transcript to exist, then prints the window statistics
once on open and again after every batch of new messages. A truncated or
replaced file is reopened. Logs go to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Log.Level, logging.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTail(ctx, cmd.OutOrStdout(), args[0], cfg, logger)
		},
	}
}

// runTail follows path until ctx is done, reopening it after every reset.
func runTail(ctx context.Context, out io.Writer, path string, cfg *config.Config, logger *zap.Logger) error {
	policy := retry.Unbounded(cfg.Watch.PollInterval())
	if n := cfg.Watch.WaitMaxAttempts; n > 0 {
		policy = retry.Bounded(cfg.Watch.PollInterval(), n)
	}

	for {
		if err := transcript.WaitFor(ctx, path, policy, logger); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("waiting for %s: %w", path, err)
		}

		err := followOnce(ctx, out, path, cfg, logger)
		if !errors.Is(err, errReset) {
			return err
		}
		fmt.Fprintf(out, "%s  transcript reset, reopening\n", stamp())
	}
}

// followOnce loads path and follows it on a Queue loop until ctx is done or
// the file is reset.
func followOnce(ctx context.Context, out io.Writer, path string, cfg *config.Config, logger *zap.Logger) error {
	doc, err := transcript.Load(path, logger)
	if err != nil {
		return err
	}

	virt := window.NewVirtualizer(window.Options[*transcript.Node]{
		Source:     doc,
		Sink:       transcript.DisplaySink{},
		Identity:   transcript.Identity(logger).Func(),
		KeepRecent: cfg.Window.KeepRecent,
		ChunkSize:  cfg.Window.ChunkSize,
		Logger:     logger,
	})
	virt.Refresh()
	printStats(out, virt.Stats())

	q := eventloop.NewQueue(64)
	reset := make(chan struct{}, 1)

	tailer := transcript.NewTailer(doc, transcript.TailerOptions{
		Loop: q,
		OnReset: func() {
			select {
			case reset <- struct{}{}:
			default:
			}
		},
		PollInterval: cfg.Watch.PollInterval(),
		ForcePolling: cfg.Watch.ForcePolling,
		Logger:       logger,
	})
	w := watch.New(watch.Options[*transcript.Node]{
		Target:    virt,
		Observer:  tailer,
		Matcher:   transcript.Matcher{},
		OnRefresh: func(st window.Stats) { printStats(out, st) },
		Logger:    logger,
	})

	// The loop outlives ctx so that Stop can still be posted to it.
	loopCtx, cancelLoop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = q.Run(loopCtx)
	}()
	defer func() {
		cancelLoop()
		<-done
		tailer.Wait()
	}()

	started := make(chan error, 1)
	q.Post(func() { started <- w.Start() })
	if err := <-started; err != nil {
		return err
	}

	var result error
	select {
	case <-ctx.Done():
	case <-reset:
		result = errReset
	}

	stopped := make(chan struct{})
	q.Post(func() {
		w.Stop()
		close(stopped)
	})
	<-stopped
	return result
}

func printStats(out io.Writer, st window.Stats) {
	fmt.Fprintf(out, "%s  messages %d / %d  hidden %d\n", stamp(), st.Visible, st.Total, st.Hidden())
}

func stamp() string {
	return time.Now().Format("15:04:05")
}
