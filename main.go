// longchat - a terminal viewer that keeps very long chat transcripts fast.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/longchat/internal/config"
	"github.com/jeranaias/longchat/internal/logging"
	"github.com/jeranaias/longchat/internal/prefs"
	"github.com/jeranaias/longchat/internal/ui/chat"
	"github.com/jeranaias/longchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// rootFlags are the flags shared by every command.
type rootFlags struct {
	configPath string
	theme      string
	logLevel   string
	noMarkdown bool
	keepRecent int
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "longchat [path]",
		Short: "Follow a chat transcript without slowing down",
		Long: `longchat follows a JSONL chat transcript in the terminal.

Only the most recent messages are rendered. Scrolling to the top loads older
messages in chunks, and new messages are picked up as they are written.

path may be a transcript file or a directory; for a directory the newest
*.jsonl file is followed and the view switches when a newer one appears.
Without a path the current directory is used.

Keys: j/k or arrows scroll, pgup/pgdn page, G or end jumps to the latest
message, o toggles the stats overlay, q quits.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s, built %s)", Version, GitCommit, BuildDate),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			return runTUI(path, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.longchat/config.toml)")
	pf.StringVar(&flags.theme, "theme", "", "color theme: dark, light or auto")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.BoolVar(&flags.noMarkdown, "no-markdown", false, "render message bodies as plain text")
	pf.IntVar(&flags.keepRecent, "keep-recent", 0, "number of recent messages to render")

	root.AddCommand(newStatsCmd(flags), newTailCmd(flags), newConfigCmd(flags))
	return root
}

// loadConfig reads the config file, then applies flag overrides. A config
// file that fails to parse is reported on stderr and defaults are used.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", styles.RenderWarning(fmt.Sprintf("Config ignored: %v", err)))
		}
	}

	if flags.theme != "" {
		cfg.UI.Theme = flags.theme
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.noMarkdown {
		cfg.UI.Markdown = false
	}
	if flags.keepRecent > 0 {
		cfg.Window.KeepRecent = flags.keepRecent
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// runTUI runs the transcript viewer until the user quits.
func runTUI(path string, flags *rootFlags) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, logPath)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	opts := chat.Options{
		Path:   path,
		Config: cfg,
		Logger: logger,
	}

	if prefsPath, err := config.PrefsPath(); err == nil {
		store, err := prefs.Open(prefsPath)
		if err != nil {
			logger.Warn("preferences unavailable", zap.Error(err))
		} else {
			defer store.Close()
			opts.Store = store
		}
	}

	loop := chat.NewProgramLoop()
	opts.Loop = loop
	m := chat.New(opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	loop.Attach(p)

	logger.Info("starting viewer", zap.String("path", path), zap.String("version", Version))
	_, err = p.Run()
	m.Close()
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	return nil
}
