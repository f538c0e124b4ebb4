package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/pipeline"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt    time.Time                 `json:"checked_at"`
	EventCount   int                       `json:"event_count"`
	NewCount     int                       `json:"new_count"`
	NewEvents    []*event.Event            `json:"new_events"`
	BySource     map[string][]*event.Event `json:"by_source,omitempty"`
	SourceCounts map[string]int            `json:"source_counts"`
	Outputs      []string                  `json:"outputs"`
	Refreshed    bool                      `json:"refreshed,omitempty"`
}

func newOutputResult(result *pipeline.Result, outputs []string, refreshed bool) *OutputResult {
	out := &OutputResult{
		CheckedAt:    result.FetchedAt,
		EventCount:   len(result.Events),
		NewCount:     len(result.New),
		NewEvents:    append([]*event.Event{}, result.New...),
		SourceCounts: result.SourceCounts,
		Outputs:      outputs,
		Refreshed:    refreshed,
	}
	if len(result.New) > 0 {
		out.BySource = make(map[string][]*event.Event)
		for _, evt := range result.New {
			out.BySource[evt.Source] = append(out.BySource[evt.Source], evt)
		}
	}
	return out
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Refreshed {
		fmt.Fprintf(w, "Snapshot refreshed with %d events.\n", result.EventCount)
	} else if result.NewCount == 0 {
		fmt.Fprintln(w, "No new events found.")
	} else {
		for _, evt := range result.NewEvents {
			fmt.Fprintf(w, "NEW (%s): %s\n", evt.Source, evt.Title)
			if verbose {
				fmt.Fprintf(w, "     When: %s\n", evt.Start.Format("Mon 2 Jan 2006 15:04"))
				fmt.Fprintf(w, "     Where: %s\n", evt.Location)
				if evt.URL != "" {
					fmt.Fprintf(w, "     Link: %s\n", evt.URL)
				}
			}
		}
		fmt.Fprintf(w, "\nNew: %d across %d sources\n", result.NewCount, len(result.BySource))
	}

	sources := make([]string, 0, len(result.SourceCounts))
	for source := range result.SourceCounts {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fmt.Fprintf(w, "Total: %d upcoming events\n", result.EventCount)
	for _, source := range sources {
		fmt.Fprintf(w, "  %s: %d\n", source, result.SourceCounts[source])
	}

	if verbose {
		for _, path := range result.Outputs {
			fmt.Fprintf(w, "Wrote %s\n", path)
		}
	}

	return nil
}
