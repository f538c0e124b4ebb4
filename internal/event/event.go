package event

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultLocation is used when a source gives no venue or address.
	DefaultLocation = "London, UK"

	// MaxDescriptionLength caps scraped descriptions, in characters.
	MaxDescriptionLength = 200

	// ISOLayout is the UTC, millisecond-precision timestamp stored in
	// snapshot keys.
	ISOLayout = "2006-01-02T15:04:05.000Z"

	// SourceManual labels events from the curated list.
	SourceManual = "Manual"
)

// uidNamespace scopes calendar UIDs to this feed.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://london-acting-events/calendar.ics"))

// Event is one calendar-worthy occurrence, normalised across sources.
type Event struct {
	Title       string    `json:"title"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Location    string    `json:"location"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
}

// Key identifies an event across runs: exact title plus ISO start timestamp.
// It is also the element type of a persisted Snapshot.
type Key struct {
	Title string `json:"title"`
	Start string `json:"start"`
}

// identity is the in-run deduplication key. It compares start instants exactly,
// independent of the location attached to the time value.
type identity struct {
	title string
	start int64
}

// FormatISO renders t the way snapshot keys store it.
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// Key returns the snapshot key for e.
func (e *Event) Key() Key {
	return Key{Title: e.Title, Start: FormatISO(e.Start)}
}

func (e *Event) identity() identity {
	return identity{title: e.Title, start: e.Start.UnixNano()}
}

// UID returns a deterministic identifier derived from the event key, so the
// same event keeps its calendar UID between feed rebuilds.
func (e *Event) UID() string {
	k := e.Key()
	return uuid.NewSHA1(uidNamespace, []byte(k.Title+"|"+k.Start)).String()
}

// Normalize applies the shared fallbacks to a freshly extracted event:
// text is NFC-normalised and whitespace-collapsed, the description is
// truncated, a missing location, URL or end time is filled in. End defaults
// to Start plus defaultDuration (zero for sources whose events have no
// meaningful length). It reports false when the record has no title or no
// start time and must be dropped.
func Normalize(e *Event, pageURL string, defaultDuration time.Duration) bool {
	e.Title = CleanText(e.Title)
	if e.Title == "" || e.Start.IsZero() {
		return false
	}

	e.Location = CleanText(e.Location)
	if e.Location == "" {
		e.Location = DefaultLocation
	}

	e.Description = Truncate(CleanText(e.Description), MaxDescriptionLength)

	e.URL = strings.TrimSpace(e.URL)
	if e.URL == "" {
		e.URL = pageURL
	}

	if e.End.IsZero() {
		e.End = e.Start.Add(defaultDuration)
	}

	return true
}

// CleanText NFC-normalises s and collapses runs of whitespace to one space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Truncate shortens s to at most n characters.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
