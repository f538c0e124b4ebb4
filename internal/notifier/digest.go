package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stagedoor/london-acting-events/internal/event"
)

// Digest is the rendered notification.
type Digest struct {
	Subject string
	Body    string
}

// DigestOptions controls digest rendering.
type DigestOptions struct {
	// Location formats dates and times; defaults to UTC.
	Location *time.Location
	// FeedURL is linked at the end of the body when set.
	FeedURL string
}

// FormatSubject returns "N new London acting event(s)".
func FormatSubject(count int) string {
	return fmt.Sprintf("%d new London acting event%s", count, pluralize(count))
}

// FormatDigest renders a plain-text digest grouped by source.
func FormatDigest(events []*event.Event, opts DigestOptions) Digest {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d new event%s added to the London acting calendar.\n\n", len(events), pluralize(len(events)))

	bySource := make(map[string][]*event.Event)
	for _, evt := range events {
		bySource[evt.Source] = append(bySource[evt.Source], evt)
	}

	sources := make([]string, 0, len(bySource))
	for source := range bySource {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		sourceEvents := bySource[source]
		fmt.Fprintf(&b, "== %s (%d event%s) ==\n\n", source, len(sourceEvents), pluralize(len(sourceEvents)))

		for _, evt := range sourceEvents {
			start := evt.Start.In(loc)
			fmt.Fprintf(&b, "%s\n", evt.Title)
			fmt.Fprintf(&b, "  Date: %s\n", start.Format("Monday 2 January 2006"))
			fmt.Fprintf(&b, "  Time: %s\n", start.Format("15:04"))
			if evt.Location != "" {
				fmt.Fprintf(&b, "  Location: %s\n", evt.Location)
			}
			if evt.URL != "" {
				fmt.Fprintf(&b, "  Link: %s\n", evt.URL)
			}
			b.WriteString("\n")
		}
	}

	if opts.FeedURL != "" {
		fmt.Fprintf(&b, "Full calendar: %s\n", opts.FeedURL)
	}

	return Digest{Subject: FormatSubject(len(events)), Body: b.String()}
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
