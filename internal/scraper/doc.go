// Package scraper fetches listing pages and turns them into normalised events.
//
// A Provider owns a list of page URLs, a Fetcher and an Extractor. Pages are
// fetched one after another with a fixed delay between requests, and a page
// that fails to load is logged and skipped. Extractors are selected by name
// from a registry ("jsonld" for schema.org Event blocks, "listing" for
// selector-driven HTML listings), so a new site only needs a new strategy.
package scraper
