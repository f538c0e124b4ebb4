package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/stagedoor/london-acting-events/internal/config"
	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/manual"
)

// sourceInfo describes one configured event source.
type sourceInfo struct {
	Name     string   `json:"name"`
	Strategy string   `json:"strategy"`
	Render   bool     `json:"render,omitempty"`
	URLs     []string `json:"urls,omitempty"`
	Entries  int      `json:"entries,omitempty"`
}

func newSourcesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List configured event sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := o.outputFormat()
			if err != nil {
				return err
			}

			cfg, err := config.Load(o.configPath)
			if err != nil {
				return err
			}
			entries, err := manual.Load(cfg.ManualFile)
			if err != nil {
				return err
			}

			return writeSources(cmd.OutOrStdout(), listSources(cfg, entries), format)
		},
	}
}

func listSources(cfg *config.Config, entries []manual.Entry) []sourceInfo {
	out := make([]sourceInfo, 0, len(cfg.Providers)+1)
	out = append(out, sourceInfo{Name: event.SourceManual, Strategy: "curated", Entries: len(entries)})
	for _, p := range cfg.Providers {
		out = append(out, sourceInfo{Name: p.Name, Strategy: p.Strategy, Render: p.Render, URLs: p.URLs})
	}
	return out
}

func writeSources(w io.Writer, sources []sourceInfo, format OutputFormat) error {
	if format == FormatJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(sources)
	}

	for _, s := range sources {
		mode := s.Strategy
		if s.Render {
			mode += ", rendered"
		}
		if s.Entries > 0 {
			fmt.Fprintf(w, "%s (%s): %d entries\n", s.Name, mode, s.Entries)
			continue
		}
		fmt.Fprintf(w, "%s (%s)\n", s.Name, mode)
		if len(s.URLs) > 0 {
			fmt.Fprintf(w, "  %s\n", strings.Join(s.URLs, "\n  "))
		}
	}
	return nil
}
