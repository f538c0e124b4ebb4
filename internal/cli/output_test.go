package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/pipeline"
)

func testResult() *pipeline.Result {
	start := time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)
	events := []*event.Event{
		{Title: "Casting Q&A", Start: start, End: start, Location: "London, UK", URL: "https://e.example/1", Source: "Eventbrite"},
		{Title: "Actors Lab", Start: start.AddDate(0, 0, 1), Location: "Omnibus Theatre", Source: "Manual"},
		{Title: "Voice Workshop", Start: start.AddDate(0, 0, 2), Location: "London, UK", Source: "Eventbrite"},
	}
	return &pipeline.Result{
		Events:       events,
		New:          events[:2],
		SourceCounts: map[string]int{"Eventbrite": 2, "Manual": 1},
		FetchedAt:    start.Add(-24 * time.Hour),
	}
}

func TestNewOutputResult(t *testing.T) {
	out := newOutputResult(testResult(), []string{"public/calendar.ics"}, false)

	if out.EventCount != 3 || out.NewCount != 2 {
		t.Errorf("EventCount = %d, NewCount = %d; want 3, 2", out.EventCount, out.NewCount)
	}
	if len(out.BySource) != 2 || len(out.BySource["Eventbrite"]) != 1 || len(out.BySource["Manual"]) != 1 {
		t.Errorf("BySource = %v", out.BySource)
	}

	// Sorting the output must not reorder the pipeline result.
	result := testResult()
	out = newOutputResult(result, nil, false)
	sortEvents(out.NewEvents, SortByTitle)
	if result.New[0].Title != "Casting Q&A" {
		t.Error("sorting output reordered result.New")
	}
}

func TestWriteOutput_Text(t *testing.T) {
	tests := []struct {
		name     string
		result   func() *OutputResult
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:   "new events",
			result: func() *OutputResult { return newOutputResult(testResult(), []string{"public/calendar.ics"}, false) },
			contains: []string{
				"NEW (Eventbrite): Casting Q&A",
				"NEW (Manual): Actors Lab",
				"New: 2 across 2 sources",
				"Total: 3 upcoming events",
				"  Eventbrite: 2",
			},
			excludes: []string{"When:", "Wrote"},
		},
		{
			name:    "verbose",
			result:  func() *OutputResult { return newOutputResult(testResult(), []string{"public/calendar.ics"}, false) },
			verbose: true,
			contains: []string{
				"When: Sat 14 Nov 2026 19:00",
				"Where: London, UK",
				"Link: https://e.example/1",
				"Wrote public/calendar.ics",
			},
		},
		{
			name: "nothing new",
			result: func() *OutputResult {
				r := testResult()
				r.New = nil
				return newOutputResult(r, nil, false)
			},
			contains: []string{"No new events found.", "Total: 3 upcoming events"},
			excludes: []string{"NEW"},
		},
		{
			name: "refreshed",
			result: func() *OutputResult {
				r := testResult()
				r.New = []*event.Event{}
				return newOutputResult(r, nil, true)
			},
			contains: []string{"Snapshot refreshed with 3 events."},
			excludes: []string{"No new events"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteOutput(&buf, tt.result(), FormatText, tt.verbose); err != nil {
				t.Fatalf("WriteOutput() error: %v", err)
			}
			got := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("output contains %q:\n%s", unwanted, got)
				}
			}
		})
	}
}

func TestWriteOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteOutput(&buf, newOutputResult(testResult(), []string{"public/calendar.ics"}, false), FormatJSON, false); err != nil {
		t.Fatalf("WriteOutput() error: %v", err)
	}

	var decoded struct {
		EventCount   int            `json:"event_count"`
		NewCount     int            `json:"new_count"`
		NewEvents    []event.Event  `json:"new_events"`
		SourceCounts map[string]int `json:"source_counts"`
		Outputs      []string       `json:"outputs"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.EventCount != 3 || decoded.NewCount != 2 || len(decoded.NewEvents) != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.SourceCounts["Eventbrite"] != 2 {
		t.Errorf("SourceCounts = %v", decoded.SourceCounts)
	}
	if len(decoded.Outputs) != 1 {
		t.Errorf("Outputs = %v", decoded.Outputs)
	}
}

func TestWriteOutput_UnknownFormat(t *testing.T) {
	if err := WriteOutput(&bytes.Buffer{}, &OutputResult{}, "xml", false); err == nil {
		t.Error("WriteOutput() expected error for unknown format")
	}
}
