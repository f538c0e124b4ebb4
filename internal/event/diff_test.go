package event

import (
	"testing"
	"time"
)

func TestDiff(t *testing.T) {
	s1 := time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)
	s2 := time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)

	evt1 := &Event{Title: "Scratch Night", Start: s1}
	evt2 := &Event{Title: "Industry Mixer", Start: s2}

	previous := Snapshot{{Title: "Scratch Night", Start: "2026-11-14T19:00:00.000Z"}}
	current := []*Event{evt1, evt2}

	t.Run("finds new events", func(t *testing.T) {
		fresh := Diff(previous, current)

		if len(fresh) != 1 {
			t.Fatalf("expected 1 new event, got %d", len(fresh))
		}
		if fresh[0] != evt2 {
			t.Errorf("new event = %q, want %q", fresh[0].Title, evt2.Title)
		}
	})

	t.Run("handles nil previous snapshot", func(t *testing.T) {
		fresh := Diff(nil, current)
		if len(fresh) != 2 {
			t.Errorf("expected all 2 events to be new, got %d", len(fresh))
		}
	})

	t.Run("rescheduled event is new", func(t *testing.T) {
		moved := &Event{Title: "Scratch Night", Start: s1.Add(time.Hour)}
		fresh := Diff(previous, []*Event{moved})
		if len(fresh) != 1 {
			t.Errorf("expected moved event to be new, got %d", len(fresh))
		}
	})

	t.Run("removed events are ignored", func(t *testing.T) {
		fresh := Diff(previous, []*Event{evt2})
		if len(fresh) != 1 || fresh[0] != evt2 {
			t.Errorf("Diff() = %v, want only evt2", fresh)
		}
	})

	t.Run("preserves current order", func(t *testing.T) {
		evt3 := &Event{Title: "Actors Lab", Start: s2.Add(time.Hour)}
		fresh := Diff(nil, []*Event{evt3, evt2, evt1})
		if fresh[0] != evt3 || fresh[1] != evt2 || fresh[2] != evt1 {
			t.Error("Diff() reordered events")
		}
	})
}

func TestCreateSnapshot(t *testing.T) {
	events := []*Event{
		{Title: "Scratch Night", Start: time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)},
		{Title: "Industry Mixer", Start: time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)},
	}

	snap := CreateSnapshot(events)

	want := Snapshot{
		{Title: "Scratch Night", Start: "2026-11-14T19:00:00.000Z"},
		{Title: "Industry Mixer", Start: "2026-11-20T18:30:00.000Z"},
	}
	if len(snap) != len(want) {
		t.Fatalf("CreateSnapshot() has %d entries, want %d", len(snap), len(want))
	}
	for i := range want {
		if snap[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, snap[i], want[i])
		}
	}

	if len(CreateSnapshot(nil)) != 0 {
		t.Error("CreateSnapshot(nil) should be empty")
	}
}

func TestSnapshot_RoundTripThroughDiff(t *testing.T) {
	events := []*Event{
		{Title: "Scratch Night", Start: time.Date(2026, 11, 14, 19, 0, 0, 0, time.UTC)},
		{Title: "Industry Mixer", Start: time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)},
	}

	if fresh := Diff(CreateSnapshot(events), events); len(fresh) != 0 {
		t.Errorf("Diff() against own snapshot found %d new events, want 0", len(fresh))
	}
}
