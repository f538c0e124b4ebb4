package scraper

import (
	"bytes"
	"encoding/json"
	"html"
	"iter"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
)

// StrategyJSONLD names the schema.org JSON-LD strategy in the registry.
const StrategyJSONLD = "jsonld"

// StructuredData extracts schema.org Event objects from the JSON-LD script
// blocks embedded in a page. Events without an end time end at their start.
type StructuredData struct {
	opts Options
}

// NewStructuredData creates the JSON-LD strategy.
func NewStructuredData(opts Options) *StructuredData {
	return &StructuredData{opts: opts.withDefaults()}
}

// ldEvent is the subset of a schema.org Event this strategy reads.
type ldEvent struct {
	Type        json.RawMessage `json:"@type"`
	Name        string          `json:"name"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Description string          `json:"description"`
	URL         string          `json:"url"`
	Location    json.RawMessage `json:"location"`
}

type ldPlace struct {
	Name    string          `json:"name"`
	Address json.RawMessage `json:"address"`
}

type ldPostalAddress struct {
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	PostalCode      string `json:"postalCode"`
}

// Extract yields one event per JSON-LD block that describes an Event, or whose
// top-level array starts with one.
func (s *StructuredData) Extract(page, pageURL string) iter.Seq[*event.Event] {
	return func(yield func(*event.Event) bool) {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
		if err != nil {
			logger.Debug("unparseable page", logger.Fields{"source": s.opts.Source, "url": pageURL})
			return
		}

		doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, sel *goquery.Selection) bool {
			evt, ok := s.parseBlock([]byte(sel.Text()), pageURL)
			if !ok {
				return true
			}
			return yield(evt)
		})
	}
}

// parseBlock decodes one script block. Anything malformed or not an Event
// reports false.
func (s *StructuredData) parseBlock(data []byte, pageURL string) (*event.Event, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, false
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil || len(items) == 0 {
			return nil, false
		}
		data = items[0]
	}

	var ld ldEvent
	if err := json.Unmarshal(data, &ld); err != nil {
		logger.Debug("skipping malformed structured data", logger.Fields{"source": s.opts.Source, "url": pageURL, "error": err.Error()})
		return nil, false
	}
	if !isEventType(ld.Type) {
		return nil, false
	}

	now := s.opts.Now()
	start, ok := event.ParseDate(ld.StartDate, now, s.opts.Location)
	if !ok {
		return nil, false
	}
	var end time.Time
	if t, ok := event.ParseDate(ld.EndDate, now, s.opts.Location); ok {
		end = t
	}

	evt := &event.Event{
		Title:       html.UnescapeString(ld.Name),
		Start:       start,
		End:         end,
		Location:    html.UnescapeString(parseLocation(ld.Location)),
		Description: html.UnescapeString(ld.Description),
		URL:         ld.URL,
		Source:      s.opts.Source,
	}
	if !event.Normalize(evt, pageURL, 0) {
		return nil, false
	}
	return evt, true
}

// isEventType accepts "@type": "Event" and "@type": ["Event", ...].
func isEventType(raw json.RawMessage) bool {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return single == "Event"
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err == nil {
		for _, t := range many {
			if t == "Event" {
				return true
			}
		}
	}
	return false
}

// parseLocation reads location.address, which sites publish either as a plain
// string or as a PostalAddress. The place name is used when there is no address.
func parseLocation(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var place ldPlace
	if err := json.Unmarshal(raw, &place); err != nil {
		return ""
	}
	if addr := parseAddress(place.Address); addr != "" {
		return addr
	}
	return place.Name
}

func parseAddress(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var postal ldPostalAddress
	if err := json.Unmarshal(raw, &postal); err != nil {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{postal.StreetAddress, postal.AddressLocality, postal.PostalCode} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
