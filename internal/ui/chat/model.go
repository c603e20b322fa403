// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/config"
	"github.com/jeranaias/longchat/internal/eventloop"
	"github.com/jeranaias/longchat/internal/lifecycle"
	"github.com/jeranaias/longchat/internal/retry"
	"github.com/jeranaias/longchat/internal/transcript"
	"github.com/jeranaias/longchat/internal/ui/components"
	"github.com/jeranaias/longchat/internal/ui/styles"
	"github.com/jeranaias/longchat/internal/window"
)

// overlayWidth is the column reserved for the stats overlay.
const overlayWidth = 30

// Options configures the viewer.
type Options struct {
	// Path is a transcript file, or a directory whose newest transcript is
	// followed.
	Path   string
	Config *config.Config
	// Loop runs tailer and navigator callbacks. Use a ProgramLoop attached
	// to the running program.
	Loop   eventloop.Loop
	Store  components.Store
	Theme  *styles.Theme
	Logger *zap.Logger
}

// Model is the bubbletea model of the transcript viewer. Every method runs
// on the bubbletea goroutine, which is also the event loop, so the cache,
// coordinator and watcher need no locking.
type Model struct {
	opts  Options
	cfg   *config.Config
	loop  eventloop.Loop
	log   *zap.Logger
	theme *styles.Theme
	keys  KeyMap

	ctx    context.Context
	cancel context.CancelFunc

	registry *lifecycle.Registry
	sess     *session
	// opened is every session attached so far; Close waits on all of them.
	opened []*session

	viewport *components.TranscriptViewport
	renderer *components.MessageRenderer
	overlay  *components.StatsOverlay
	button   *components.ScrollButton
	status   *components.StatusBar
	spinner  components.WaitSpinner
	toasts   *components.Toasts

	width   int
	height  int
	waiting bool
	err     error

	forceGen int
	dirty    bool
	pending  []tea.Cmd
}

// New creates the viewer model.
func New(opts Options) *Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Loop == nil {
		opts.Loop = eventloop.Inline{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme(opts.Config.UI.Theme)
	}

	ctx, cancel := context.WithCancel(context.Background())
	keys := DefaultKeyMap()
	log := opts.Logger.Named("viewer")

	m := &Model{
		opts:     opts,
		cfg:      opts.Config,
		loop:     opts.Loop,
		log:      log,
		theme:    opts.Theme,
		keys:     keys,
		ctx:      ctx,
		cancel:   cancel,
		registry: &lifecycle.Registry{},
		viewport: components.NewTranscriptViewport(opts.Theme),
		renderer: components.NewMessageRenderer(opts.Theme, opts.Config.UI.Markdown, log),
		overlay:  components.NewStatsOverlay(opts.Theme, opts.Store, opts.Config.UI.OverlayEnabled, log),
		button:   components.NewScrollButton(opts.Theme),
		status:   components.NewStatusBar(opts.Theme, keys.ShortHelp()...),
		spinner:  components.NewWaitSpinner(),
		toasts:   components.NewToasts(opts.Theme),
	}
	m.status.Path = opts.Path
	return m
}

// Init starts waiting for the transcript.
func (m *Model) Init() tea.Cmd {
	return m.open()
}

// Close tears down the open transcript and waits for its follower
// goroutines. Call it after the program has exited.
func (m *Model) Close() {
	m.cancel()
	m.registry.CleanupAll()
	for _, s := range m.opened {
		s.tailer.Wait()
		if s.nav != nil {
			s.nav.Wait()
		}
	}
}

// Stats returns the cache statistics of the open transcript.
func (m *Model) Stats() window.Stats {
	if m.sess == nil {
		return window.Stats{}
	}
	return m.sess.virt.Stats()
}

// =============================================================================
// OPENING TRANSCRIPTS
// =============================================================================

// waitPolicy is the container wait: unbounded unless configured.
func (m *Model) waitPolicy() retry.Policy {
	interval := m.cfg.Watch.PollInterval()
	if n := m.cfg.Watch.WaitMaxAttempts; n > 0 {
		return retry.Bounded(interval, n)
	}
	return retry.Unbounded(interval)
}

// open shows the wait spinner and resolves and loads the transcript off the
// event loop.
func (m *Model) open() tea.Cmd {
	m.waiting = true
	m.status.Status = components.StatusWaiting
	m.spinner.SetDetail(m.opts.Path)
	start := m.spinner.Start()

	ctx, target, policy, log := m.ctx, m.opts.Path, m.waitPolicy(), m.log
	load := func() tea.Msg {
		var (
			file, dir  string
			resolveErr error
		)
		err := retry.PollLogged(ctx, policy, func() bool {
			f, d, err := transcript.Resolve(target)
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, transcript.ErrNoTranscript) {
				return false
			}
			file, dir, resolveErr = f, d, err
			return true
		}, log, target)
		if err == nil {
			err = resolveErr
		}
		if err != nil {
			return transcriptErrMsg{err: err}
		}

		doc, err := transcript.Load(file, log)
		if err != nil {
			return transcriptErrMsg{err: err}
		}
		return transcriptReadyMsg{path: file, dir: dir, doc: doc}
	}
	return tea.Batch(start, load)
}

// reopen tears down the current transcript and opens the configured path
// again. Used on truncation and when a newer transcript appears.
func (m *Model) reopen() {
	m.registry.CleanupAll()
	m.sess = nil
	m.forceGen++
	m.pending = append(m.pending, m.open())
}

// attach builds a session for a loaded transcript and starts following it.
func (m *Model) attach(msg transcriptReadyMsg) {
	m.registry.CleanupAll()
	m.renderer.Reset()
	m.forceGen++
	m.waiting = false
	m.err = nil
	m.spinner.Stop()

	var s *session
	s = newSession(msg.doc, msg.path, msg.dir, sessionDeps{
		cfg:      m.cfg,
		loop:     m.loop,
		control:  m.button,
		reporter: m.overlay.Update,
		log:      m.log,
		onRefresh: func(window.Stats) {
			if m.sess == s {
				m.dirty = true
			}
		},
		onReset: func() {
			if m.sess == s {
				m.log.Info("transcript reset, reopening", zap.String("path", s.path))
				m.notify(components.ToastWarning, "Transcript was truncated or replaced, reopening")
				m.reopen()
			}
		},
	})
	m.sess = s
	m.opened = append(m.opened, s)

	m.status.Path = msg.path
	m.status.Status = components.StatusFollowing
	m.render()
	m.viewport.GotoBottom()
	s.coord.SetLastTop(m.viewport.YOffset())
	m.report()

	if err := s.start(m.registry, func(next string) {
		if m.sess == s {
			m.notify(components.ToastStatus, "Following newer transcript "+filepath.Base(next))
			m.reopen()
		}
	}); err != nil {
		m.fail(err)
		return
	}

	m.log.Info("transcript opened",
		zap.String("path", msg.path),
		zap.Int("messages", s.virt.Stats().Total))
}

// notify shows a toast; its expiry command runs with the next Update result.
func (m *Model) notify(kind components.ToastKind, message string) {
	m.pending = append(m.pending, m.toasts.Add(kind, message))
}

func (m *Model) fail(err error) {
	m.err = err
	m.waiting = false
	m.spinner.Stop()
	m.status.Status = components.StatusError
	m.status.Error = err.Error()
	m.log.Error("transcript unavailable", zap.Error(err))
}
