package manual

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/stagedoor/london-acting-events/internal/event"
)

// DefaultHorizon is how far ahead recurring entries are expanded.
const DefaultHorizon = 90 * 24 * time.Hour

//go:embed default.yaml
var defaultList []byte

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Entry is one curated event as written in the YAML file.
type Entry struct {
	Title       string   `yaml:"title"`
	Start       string   `yaml:"start"`
	End         string   `yaml:"end"`
	Location    string   `yaml:"location"`
	Description string   `yaml:"description"`
	URL         string   `yaml:"url"`
	RRule       string   `yaml:"rrule"`
	Exclude     []string `yaml:"exclude"`
}

type file struct {
	Events []Entry `yaml:"events"`
}

// Default returns the built-in list.
func Default() ([]Entry, error) {
	return Parse(defaultList)
}

// Load reads entries from path, or the built-in list when path is empty.
func Load(path string) ([]Entry, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manual events: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML list and checks that every entry has a title and a
// start.
func Parse(data []byte) ([]Entry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing manual events: %w", err)
	}

	var errs []error
	for i, e := range f.Events {
		if strings.TrimSpace(e.Title) == "" {
			errs = append(errs, fmt.Errorf("entry %d: missing title", i+1))
		}
		if strings.TrimSpace(e.Start) == "" {
			errs = append(errs, fmt.Errorf("entry %d (%s): missing start", i+1, e.Title))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid manual events: %w", err)
	}

	return f.Events, nil
}

// Expand turns entries into events. A one-off entry yields exactly one event
// whatever its date; past ones are dropped later with every other past event.
// A recurring entry yields each occurrence starting in [now, now+horizon],
// all with the duration of the first. Times without an offset are read in loc.
func Expand(entries []Entry, now time.Time, horizon time.Duration, loc *time.Location) ([]*event.Event, error) {
	if loc == nil {
		loc = time.UTC
	}

	events := make([]*event.Event, 0, len(entries))
	for i, e := range entries {
		expanded, err := e.expand(now, horizon, loc)
		if err != nil {
			return nil, fmt.Errorf("entry %d (%s): %w", i+1, e.Title, err)
		}
		events = append(events, expanded...)
	}
	return events, nil
}

func (e Entry) expand(now time.Time, horizon time.Duration, loc *time.Location) ([]*event.Event, error) {
	start, err := parseTime(e.Start, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing start: %w", err)
	}

	end := start
	if strings.TrimSpace(e.End) != "" {
		if end, err = parseTime(e.End, loc); err != nil {
			return nil, fmt.Errorf("parsing end: %w", err)
		}
	}

	if strings.TrimSpace(e.RRule) == "" {
		return e.occurrences([]time.Time{start}, end.Sub(start)), nil
	}

	r, err := rrule.StrToRRule(e.RRule)
	if err != nil {
		return nil, fmt.Errorf("parsing rrule: %w", err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range e.Exclude {
		t, err := parseTime(ex, loc)
		if err != nil {
			return nil, fmt.Errorf("parsing exclude: %w", err)
		}
		set.ExDate(t)
	}

	from := now.In(loc)
	starts := set.Between(from, from.Add(horizon), true)
	return e.occurrences(starts, end.Sub(start)), nil
}

func (e Entry) occurrences(starts []time.Time, duration time.Duration) []*event.Event {
	out := make([]*event.Event, 0, len(starts))
	for _, s := range starts {
		evt := &event.Event{
			Title:       e.Title,
			Start:       s,
			End:         s.Add(duration),
			Location:    e.Location,
			Description: e.Description,
			URL:         e.URL,
			Source:      event.SourceManual,
		}
		if event.Normalize(evt, e.URL, 0) {
			out = append(out, evt)
		}
	}
	return out
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}
