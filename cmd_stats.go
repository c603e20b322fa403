// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jeranaias/longchat/internal/config"
	"github.com/jeranaias/longchat/internal/transcript"
	"github.com/jeranaias/longchat/internal/ui/components"
	"github.com/jeranaias/longchat/internal/ui/styles"
	"github.com/jeranaias/longchat/internal/window"
)

func newStatsCmd(flags *rootFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats <file>",
		Short: "Print the window the viewer would open with",
		Long: `Loads a transcript and prints how many messages the viewer would render
on open, how many stay hidden, and the oldest and newest visible message.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			report, err := collectStats(args[0], cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return writeStatsJSON(out, report)
			}
			var theme *styles.Theme
			if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				theme = styles.NewTheme(cfg.UI.Theme)
			}
			writeStats(out, report, theme)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

// StatsReport describes the initial window over one transcript.
type StatsReport struct {
	Path    string       `json:"path"`
	Stats   window.Stats `json:"stats"`
	Hidden  int          `json:"hidden"`
	Lowest  int          `json:"lowest"`
	Highest int          `json:"highest"`
	Oldest  string       `json:"oldest,omitempty"`
	Newest  string       `json:"newest,omitempty"`
}

// collectStats loads path and computes the tail window with the configured
// size.
func collectStats(path string, cfg *config.Config) (StatsReport, error) {
	doc, err := transcript.Load(path, nil)
	if err != nil {
		return StatsReport{}, err
	}

	virt := window.NewVirtualizer(window.Options[*transcript.Node]{
		Source:     doc,
		Sink:       transcript.DisplaySink{},
		Identity:   transcript.Identity(nil).Func(),
		KeepRecent: cfg.Window.KeepRecent,
		ChunkSize:  cfg.Window.ChunkSize,
	})
	virt.Refresh()

	st := virt.Stats()
	report := StatsReport{Path: path, Stats: st, Hidden: st.Hidden(), Lowest: -1, Highest: -1}
	cache := virt.Cache()
	if r, ok := cache.Window(); ok {
		report.Lowest, report.Highest = r.Lowest, r.Highest
		if n, ok := cache.At(r.Lowest); ok {
			report.Oldest = components.Preview(n, 60)
		}
		if n, ok := cache.At(r.Highest); ok {
			report.Newest = components.Preview(n, 60)
		}
	}
	return report, nil
}

func writeStatsJSON(w io.Writer, r StatsReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// writeStats prints r as aligned rows, styled when theme is non-nil.
func writeStats(w io.Writer, r StatsReport, theme *styles.Theme) {
	label := lipgloss.NewStyle()
	value := lipgloss.NewStyle()
	title := lipgloss.NewStyle()
	if theme != nil {
		label = theme.OverlayLabel
		value = theme.OverlayValue
		title = theme.HeaderTitle
	}

	rows := [][2]string{
		{"Messages", fmt.Sprintf("%d / %d", r.Stats.Visible, r.Stats.Total)},
		{"Hidden", fmt.Sprintf("%d", r.Hidden)},
	}
	if r.Lowest >= 0 {
		rows = append(rows,
			[2]string{"Window", fmt.Sprintf("%d..%d", r.Lowest, r.Highest)},
			[2]string{"Oldest", r.Oldest},
			[2]string{"Newest", r.Newest},
		)
	}

	var b strings.Builder
	b.WriteString(title.Render(r.Path))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(label.Render(fmt.Sprintf("  %-10s", row[0]+":")))
		b.WriteString(value.Render(row[1]))
		b.WriteString("\n")
	}
	fmt.Fprint(w, b.String())
}
