// Package pipeline runs one aggregation cycle: every provider is collected
// concurrently, the results are merged with the curated events, filtered to
// unique upcoming events and compared with the previous run's snapshot.
//
// Process is the pure core and takes the current time and previous snapshot
// as arguments. Pipeline.Run wraps it with collection, snapshot persistence
// and metrics.
package pipeline
