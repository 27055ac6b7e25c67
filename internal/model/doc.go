// Package model defines the core data structures used throughout contactscan.
//
// This package contains the following main types:
//   - Finding: One extracted piece of contact information with provenance
//   - Page: The successful outcome of fetching a single URL
//   - CrawlResult: The final deduplicated result set plus crawl statistics
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, extract, report, database) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
