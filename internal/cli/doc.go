// Package cli implements the command-line interface for acting-events.
//
// The cli package provides the Cobra-based CLI: run performs one aggregation
// cycle and publishes the calendar feed, status page and metrics; serve
// repeats it on a cron schedule; sources lists the configured providers.
// It coordinates the config, pipeline, storage and publisher packages.
package cli
