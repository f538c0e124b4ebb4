// Package manual loads the curated list of venue events that are published
// alongside scraped ones.
//
// Entries are read from YAML. An entry is either a single dated event or, with
// an rrule, a recurring one that is expanded into occurrences over a horizon.
// A built-in list is used when no file is configured.
package manual
