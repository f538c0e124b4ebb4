package event

import (
	"regexp"
	"strings"
	"time"
)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	meridiem      = regexp.MustCompile(`(?i)(\d)\s*([ap])\.?m\b\.?`)
	rangeSep      = regexp.MustCompile(`(?i)\s+(-|–|—|to|until)\s+`)
	clockOnly     = regexp.MustCompile(`(?i)^\d{1,2}([:.]\d{2}\s*([ap]\.?m\.?)?|\s*[ap]\.?m\.?)$`)
	hasClock      = regexp.MustCompile(`(?i)\d{1,2}[:.]\d{2}|\d\s*[ap]\.?m\b`)

	noiseWords = map[string]bool{
		"at": true, "from": true, "on": true,
		"gmt": true, "bst": true, "utc": true,
	}

	isoLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}

	datedLayouts    = buildLayouts(true)
	yearlessLayouts = buildLayouts(false)
)

// buildLayouts combines the day/month orderings listing pages use with an
// optional weekday prefix and an optional clock time.
func buildLayouts(withYear bool) []string {
	weekdays := []string{"", "Mon ", "Monday "}
	dayMonths := []string{"2 Jan", "Jan 2", "2 January", "January 2"}
	clocks := []string{"", " 15:04", " 15.04", " 3:04PM", " 3.04PM", " 3PM"}

	var dates []string
	for _, wd := range weekdays {
		for _, dm := range dayMonths {
			if withYear {
				dates = append(dates, wd+dm+" 2006")
			} else {
				dates = append(dates, wd+dm)
			}
		}
	}
	if withYear {
		dates = append(dates, "02/01/2006", "2/1/2006")
	}

	layouts := make([]string, 0, len(dates)*len(clocks))
	for _, d := range dates {
		for _, c := range clocks {
			layouts = append(layouts, d+c)
		}
	}
	return layouts
}

// ParseDate parses the free-form date strings found on listing pages, such as
// "Sat, 14 Nov 2026, 19:00", "14th November 2026 7:30pm", "Nov 14, 7:00 PM" or
// an ISO-8601 timestamp. Times without an explicit offset are read in loc.
// When a range is given only its start is used. A date without a year is
// placed in now's year, or the next one if that would put it more than a
// month in the past; 29 February without a year lands in the next leap year.
// It reports false if the text is not a recognised date.
func ParseDate(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}

	raw := strings.TrimSpace(text)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}

	s := normalizeDateText(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range datedLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		return placeYear(t, now.In(loc), loc)
	}

	return time.Time{}, false
}

// placeYear moves a yearless date into now's year, or a later one if it would
// be more than a month in the past. 29 February goes to the next leap year.
func placeYear(t, now time.Time, loc *time.Location) (time.Time, bool) {
	cutoff := now.AddDate(0, -1, 0)
	for year := now.Year(); year <= now.Year()+8; year++ {
		candidate := time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
		if candidate.Day() != t.Day() || candidate.Before(cutoff) {
			continue
		}
		return candidate, true
	}
	return time.Time{}, false
}

// cutRange drops the end of a range, keeping its start. A separator followed
// only by a clock time, as in "1 November 2026 - 10:00am", joins a date to its
// time instead.
func cutRange(s string) string {
	for {
		loc := rangeSep.FindStringIndex(s)
		if loc == nil {
			return s
		}
		head, tail := s[:loc[0]], s[loc[1]:]

		next := tail
		if i := rangeSep.FindStringIndex(tail); i != nil {
			next = tail[:i[0]]
		}
		if !hasClock.MatchString(head) && clockOnly.MatchString(strings.TrimSpace(next)) {
			s = head + " " + tail
			continue
		}
		return head
	}
}

// normalizeDateText reduces listing date text to the token forms buildLayouts
// knows: no ranges, ordinals, punctuation or filler words, and "7:30PM" style
// meridiems.
func normalizeDateText(s string) string {
	s = cutRange(s)
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = meridiem.ReplaceAllStringFunc(s, func(m string) string {
		sub := meridiem.FindStringSubmatch(m)
		return sub[1] + strings.ToUpper(sub[2]) + "M"
	})

	s = strings.NewReplacer(",", " ", "·", " ", "|", " ", "•", " ").Replace(s)

	fields := strings.Fields(s)
	kept := fields[:0]
	for _, f := range fields {
		if noiseWords[strings.ToLower(f)] {
			continue
		}
		kept = append(kept, f)
	}
	return strings.Join(kept, " ")
}
