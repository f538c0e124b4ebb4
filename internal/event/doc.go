// Package event provides the normalised Event record shared by every source, and
// the pure steps of the aggregation pipeline built on it.
//
// Extractors produce Events through Normalize, the pipeline concatenates them with
// Aggregate, Upcoming drops past events and duplicate (title, start) pairs before
// sorting by start time, and Diff compares the result with the Snapshot persisted
// by the previous run to find newly listed events.
package event
