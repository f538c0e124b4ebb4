// Package status renders the public landing page that links to the feed and
// summarises the latest run.
package status

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
)

const (
	// PageFile is the status page's name in the output directory.
	PageFile = "index.html"

	// MaxNewShown caps the new-event list; the rest are summarised as "+N more".
	MaxNewShown = 5

	// timestampLayout matches the en-GB locale string ("18/10/2026, 00:00:00").
	timestampLayout = "02/01/2006, 15:04:05"
)

//go:embed index.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("index").Parse(pageSource))

// SourceCount is one row of the source list.
type SourceCount struct {
	Name  string
	Count int
}

// Page holds everything the template shows.
type Page struct {
	FeedURL   string
	FeedFile  string
	Total     int
	New       []*event.Event
	Sources   []SourceCount
	Venues    []string
	UpdatedAt time.Time
	Location  *time.Location
	Schedule  string
}

// NewPage builds a page from a run's output. Sources are sorted by count,
// largest first.
func NewPage(events, fresh []*event.Event, counts map[string]int, feedURL string, updated time.Time) Page {
	sources := make([]SourceCount, 0, len(counts))
	for name, n := range counts {
		sources = append(sources, SourceCount{Name: name, Count: n})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Count != sources[j].Count {
			return sources[i].Count > sources[j].Count
		}
		return sources[i].Name < sources[j].Name
	})

	return Page{
		FeedURL:   feedURL,
		Total:     len(events),
		New:       fresh,
		Sources:   sources,
		UpdatedAt: updated,
	}
}

// ShownNew is the capped list of new events.
func (p Page) ShownNew() []*event.Event {
	if len(p.New) > MaxNewShown {
		return p.New[:MaxNewShown]
	}
	return p.New
}

// MoreNew counts new events left out of ShownNew.
func (p Page) MoreNew() int {
	if len(p.New) > MaxNewShown {
		return len(p.New) - MaxNewShown
	}
	return 0
}

// WebcalURL is the subscribe link. It is marked safe because html/template
// rejects URL schemes other than http, https and mailto.
func (p Page) WebcalURL() template.URL {
	return template.URL(WebcalURL(p.FeedURL))
}

// Updated formats UpdatedAt in the page's time zone.
func (p Page) Updated() string {
	return p.UpdatedAt.In(p.location()).Format(timestampLayout)
}

// When formats an event start in the page's time zone.
func (p Page) When(t time.Time) string {
	return t.In(p.location()).Format("Mon 2 Jan, 15:04")
}

func (p Page) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// WebcalURL swaps an http(s) scheme for webcal. A URL without a scheme gets
// one prefixed.
func WebcalURL(feedURL string) string {
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(feedURL, scheme) {
			return "webcal://" + strings.TrimPrefix(feedURL, scheme)
		}
	}
	if strings.HasPrefix(feedURL, "webcal://") {
		return feedURL
	}
	return "webcal://" + feedURL
}

// Render executes the page template.
func Render(w io.Writer, p Page) error {
	if p.FeedFile == "" {
		p.FeedFile = "calendar.ics"
	}
	if p.Schedule == "" {
		p.Schedule = "Updates daily at midnight GMT"
	}
	if err := pageTemplate.Execute(w, p); err != nil {
		return fmt.Errorf("rendering status page: %w", err)
	}
	return nil
}

// WriteFile renders the page to path, creating its directory.
func WriteFile(path string, p Page) error {
	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing status page: %w", err)
	}
	return nil
}
