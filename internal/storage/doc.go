// Package storage persists the snapshot of the previous run's output.
//
// The snapshot is a single JSON array of {"title", "start"} objects in the
// data directory (snapshot.json), read once before a run and fully replaced
// after it. The default location is ~/.local/share/acting-events/.
package storage
