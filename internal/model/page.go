package model

import "strings"

// MaxBodySize is the maximum size of raw page content to retain.
// Larger responses are truncated to this size to prevent memory
// exhaustion from unexpectedly large pages.
const MaxBodySize = 5 * 1024 * 1024 // 5 MB

// Page is the successful outcome of fetching one URL.
//
// Design decision: We use an explicit success type consumed together with a
// typed fetch error rather than a response object with dynamic accessors.
// The crawl engine consumes a Page immediately after the fetch; pages are
// not retained once extraction and link discovery have run.
type Page struct {
	// FinalURL is the URL after following redirects.
	FinalURL string `json:"final_url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header,
	// without parameters such as charset.
	ContentType string `json:"content_type"`

	// Body contains the raw response body, capped at MaxBodySize.
	Body []byte `json:"-"`
}

// IsHTML reports whether the page content type indicates HTML.
func (p *Page) IsHTML() bool {
	return p.ContentType == "text/html" ||
		p.ContentType == "application/xhtml+xml" ||
		strings.HasPrefix(p.ContentType, "text/html")
}

// TruncateBody enforces the MaxBodySize cap on the raw body.
// Call this after setting Body.
func (p *Page) TruncateBody() {
	if len(p.Body) > MaxBodySize {
		p.Body = p.Body[:MaxBodySize]
	}
}
