package scraper

import (
	"iter"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
)

const (
	// StrategyListing names the CSS-selector listing strategy in the registry.
	StrategyListing = "listing"

	// ListingDuration is the assumed length of listing events, which never
	// publish an end time.
	ListingDuration = 2 * time.Hour
)

// Selectors locate the parts of a listing card. Each field is a goquery
// (CSS) selector; Item selects the repeated card, the others are searched
// within it.
type Selectors struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Date        string `yaml:"date"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
}

// DefaultSelectors match the card markup common to event listing sites.
var DefaultSelectors = Selectors{
	Item:        `[data-event-label], .event-card, .event-listing, li.event, article`,
	Title:       `h2, h3, [class*="title"]`,
	Date:        `time, [class*="date"]`,
	Description: `p, [class*="description"]`,
	Link:        `a[href]`,
}

func (s Selectors) withDefaults() Selectors {
	if s.Item == "" {
		s.Item = DefaultSelectors.Item
	}
	if s.Title == "" {
		s.Title = DefaultSelectors.Title
	}
	if s.Date == "" {
		s.Date = DefaultSelectors.Date
	}
	if s.Description == "" {
		s.Description = DefaultSelectors.Description
	}
	if s.Link == "" {
		s.Link = DefaultSelectors.Link
	}
	return s
}

// Listing extracts events heuristically from repeated listing cards. A card
// becomes an event only if it has a title and a date that parses to a time
// strictly in the future; anything else is discarded.
type Listing struct {
	opts Options
	sel  Selectors
}

// NewListing creates the listing strategy.
func NewListing(opts Options) *Listing {
	opts = opts.withDefaults()
	return &Listing{opts: opts, sel: opts.Selectors.withDefaults()}
}

// Extract yields one event per accepted card, in document order.
func (l *Listing) Extract(page, pageURL string) iter.Seq[*event.Event] {
	return func(yield func(*event.Event) bool) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		if err != nil {
			logger.Debug("unparseable page", logger.Fields{"source": l.opts.Source, "url": pageURL})
			return
		}

		base := origin(pageURL)
		now := l.opts.Now()

		doc.Find(l.sel.Item).EachWithBreak(func(i int, card *goquery.Selection) bool {
			evt, ok := l.candidate(card, base, pageURL, now)
			if !ok {
				return true
			}
			return yield(evt)
		})
	}
}

func (l *Listing) candidate(card *goquery.Selection, base *url.URL, pageURL string, now time.Time) (*event.Event, bool) {
	title := strings.TrimSpace(card.Find(l.sel.Title).First().Text())
	if title == "" {
		return nil, false
	}

	start, ok := l.cardDate(card.Find(l.sel.Date).First(), now)
	if !ok || !start.After(now) {
		return nil, false
	}

	href, _ := card.Attr("href")
	if !card.Is("a") || href == "" {
		href = card.Find(l.sel.Link).First().AttrOr("href", "")
	}

	evt := &event.Event{
		Title:       title,
		Start:       start,
		Description: card.Find(l.sel.Description).First().Text(),
		URL:         resolve(base, href),
		Source:      l.opts.Source,
	}
	if !event.Normalize(evt, pageURL, ListingDuration) {
		return nil, false
	}
	return evt, true
}

// cardDate prefers a machine-readable datetime attribute and falls back to the
// element's text.
func (l *Listing) cardDate(sel *goquery.Selection, now time.Time) (time.Time, bool) {
	if attr := strings.TrimSpace(sel.AttrOr("datetime", "")); attr != "" {
		if t, ok := event.ParseDate(attr, now, l.opts.Location); ok {
			return t, true
		}
	}

	text := strings.TrimSpace(sel.Text())
	if text == "" {
		return time.Time{}, false
	}
	return event.ParseDate(text, now, l.opts.Location)
}

// origin returns scheme://host of pageURL, or nil if it has none.
func origin(pageURL string) *url.URL {
	u, err := url.Parse(pageURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}

// resolve makes href absolute against the site origin. Unresolvable links
// become empty so the page URL is used instead.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	if base == nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
