package event

// Snapshot is the persisted output of the previous run: the (title, ISO start)
// key of every event it published, in publication order.
type Snapshot []Key

// NewSnapshot creates an empty snapshot
func NewSnapshot() Snapshot {
	return Snapshot{}
}

// CreateSnapshot records the keys of events. The result replaces, never
// extends, the previous snapshot.
func CreateSnapshot(events []*Event) Snapshot {
	snap := make(Snapshot, 0, len(events))
	for _, evt := range events {
		snap = append(snap, evt.Key())
	}
	return snap
}

// Keys returns the snapshot as a set for membership tests.
func (s Snapshot) Keys() map[Key]struct{} {
	set := make(map[Key]struct{}, len(s))
	for _, k := range s {
		set[k] = struct{}{}
	}
	return set
}

// Diff returns the events in current whose key is absent from previous, in
// the order they appear in current. A nil or empty previous snapshot makes
// every event new.
func Diff(previous Snapshot, current []*Event) []*Event {
	known := previous.Keys()

	fresh := make([]*Event, 0)
	for _, evt := range current {
		if _, exists := known[evt.Key()]; !exists {
			fresh = append(fresh, evt)
		}
	}
	return fresh
}
