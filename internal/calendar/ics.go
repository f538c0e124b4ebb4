// Package calendar writes the subscribable iCalendar feed.
package calendar

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/stagedoor/london-acting-events/internal/event"
)

const (
	FeedName        = "London Acting Industry Events"
	FeedDescription = "Automated calendar of acting, theatre, and film industry events in London"
	FeedFile        = "calendar.ics"

	productID = "-//Stage Door//london-acting-events//EN"
)

// Options describes the feed as a whole.
type Options struct {
	Name        string
	Description string
	Timezone    string
	// URL is the public address of the feed.
	URL string
	// Refresh is the polling interval suggested to subscribers.
	Refresh time.Duration
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

// DefaultOptions returns the feed metadata for a calendar published at url.
func DefaultOptions(url string) Options {
	return Options{
		Name:        FeedName,
		Description: FeedDescription,
		Timezone:    "Europe/London",
		URL:         url,
		Refresh:     24 * time.Hour,
	}
}

// Build creates a calendar with one VEVENT per event. UIDs are derived from
// each event's title and start, so unchanged events keep their identity in
// subscribers' calendars between rebuilds.
func Build(events []*event.Event, opts Options) *ics.Calendar {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := now().UTC()

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}
	if opts.Description != "" {
		cal.SetDescription(opts.Description)
		cal.SetXWRCalDesc(opts.Description)
	}
	if opts.Timezone != "" {
		cal.SetXWRTimezone(opts.Timezone)
	}
	if opts.URL != "" {
		cal.SetUrl(opts.URL)
	}
	if opts.Refresh > 0 {
		cal.SetRefreshInterval(isoDuration(opts.Refresh))
		cal.SetXPublishedTTL(isoDuration(opts.Refresh))
	}

	for _, evt := range events {
		ve := cal.AddEvent(evt.UID())
		ve.SetDtStampTime(stamp)
		ve.SetStartAt(evt.Start)
		ve.SetEndAt(evt.End)
		ve.SetSummary(evt.Title)
		ve.SetDescription(describe(evt))
		ve.SetLocation(evt.Location)
		if evt.URL != "" {
			ve.SetURL(evt.URL)
		}
	}

	return cal
}

// WriteFile serializes the feed to path, creating its directory.
func WriteFile(path string, events []*event.Event, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data := Build(events, opts).Serialize()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing calendar: %w", err)
	}
	return nil
}

func describe(evt *event.Event) string {
	if evt.Source == "" {
		return evt.Description
	}
	if evt.Description == "" {
		return "Source: " + evt.Source
	}
	return evt.Description + "\n\nSource: " + evt.Source
}

// isoDuration renders d as an RFC 5545 duration (PT1H, P1D).
func isoDuration(d time.Duration) string {
	if d%(24*time.Hour) == 0 {
		return fmt.Sprintf("P%dD", d/(24*time.Hour))
	}
	if d%time.Hour == 0 {
		return fmt.Sprintf("PT%dH", d/time.Hour)
	}
	return fmt.Sprintf("PT%dM", d/time.Minute)
}
