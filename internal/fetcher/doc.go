// Package fetcher provides the HTTP client used to retrieve pages during
// a crawl. A Fetcher performs a single GET per page with a bounded timeout,
// a capped redirect chain, and a size-limited body read, and classifies
// every failure into a FetchError kind so the crawl engine can count and
// log failures without inspecting transport details.
package fetcher
