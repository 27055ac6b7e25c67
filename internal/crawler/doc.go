// Package crawler implements the crawl engine and link discovery.
//
// # Architecture
//
// The package is designed around the Engine type, which coordinates a
// breadth-first crawl from one seed URL. It keeps a FIFO frontier of
// normalized same-site URLs, a visited set for deduplication, and feeds
// every fetched page through the extractor into the result store.
//
// # Components
//
//   - Engine: the crawl loop with frontier, visited set and page budget
//   - Discoverer: turns a page's anchors into frontier candidates,
//     applying same-site scoping and ignore/follow patterns
//
// # Politeness
//
// The engine is designed to be polite:
//   - Delays between requests (rate limited, configurable)
//   - Limits concurrent in-flight fetches
//   - Hard cap on pages per crawl
//
// # Usage
//
//	engine := crawler.New(fetcher, extractor, store, crawler.WithMaxPages(50))
//	stats, err := engine.Run(ctx, "https://example.com")
package crawler
