package event

import (
	"sort"
	"time"
)

// Aggregate concatenates the curated events with every source's output.
// Curated events come first, which makes them win duplicate resolution in
// Upcoming.
func Aggregate(manual []*Event, sources ...[]*Event) []*Event {
	total := len(manual)
	for _, s := range sources {
		total += len(s)
	}

	all := make([]*Event, 0, total)
	all = append(all, manual...)
	for _, s := range sources {
		all = append(all, s...)
	}
	return all
}

// Upcoming returns the events that start strictly after now, keeping only the
// first occurrence of each (title, start) pair, sorted by start time. Events
// with equal start times keep their input order.
func Upcoming(events []*Event, now time.Time) []*Event {
	seen := make(map[identity]struct{}, len(events))
	out := make([]*Event, 0, len(events))

	for _, evt := range events {
		if evt == nil || !evt.Start.After(now) {
			continue
		}

		id := evt.identity()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, evt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start.Before(out[j].Start)
	})

	return out
}

// CountBySource tallies events per source label.
func CountBySource(events []*Event) map[string]int {
	counts := make(map[string]int)
	for _, evt := range events {
		counts[evt.Source]++
	}
	return counts
}
