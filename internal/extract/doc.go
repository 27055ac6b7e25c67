// Package extract turns fetched pages into contact findings.
//
// The Extractor parses each HTML page once with golang.org/x/net/html and
// runs four passes over the parsed document: email addresses (visible text
// and mailto: links), phone numbers (visible text and tel: links), social
// profile links (anchor hrefs matched against known platforms), and page
// metadata (title, description, generator). All values are normalized
// before they leave this package so the result store can deduplicate on
// (type, value) alone.
//
// The optional EXIFAnalyzer additionally fetches JPEG/TIFF images
// referenced by crawled pages and reports identifying EXIF tags as
// metadata findings.
package extract
