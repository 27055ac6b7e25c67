package crawler

import (
	"bytes"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/contactscan/contactscan/internal/urlutil"
	"golang.org/x/net/html"
)

// defaultIgnorePatterns skips URLs that never yield contact content:
// static assets, archives, media, and auth flows that would end a session
// or loop forever.
var defaultIgnorePatterns = []string{
	"*.pdf", "*.jpg", "*.jpeg", "*.png", "*.gif", "*.svg", "*.webp", "*.ico",
	"*.css", "*.js", "*.zip", "*.tar", "*.gz", "*.mp3", "*.mp4", "*.avi",
	"*.woff", "*.woff2", "*.ttf", "*.eot", "*.doc", "*.docx", "*.xls", "*.xlsx",
	"/logout*", "/signout*", "/login*", "/signin*", "/register*", "/wp-admin/*",
}

// Discoverer extracts crawlable same-site links from a fetched page.
type Discoverer struct {
	// ignorePatterns are URL path patterns to skip.
	// Patterns use glob syntax (e.g., "/admin/*", "*.pdf").
	ignorePatterns []string

	// followPatterns are URL path patterns to follow.
	// If set, only URLs matching at least one pattern are crawled.
	followPatterns []string
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithIgnorePatterns appends URL path patterns to skip during discovery.
// The built-in asset and auth patterns always apply.
func WithIgnorePatterns(patterns []string) DiscovererOption {
	return func(d *Discoverer) {
		d.ignorePatterns = append(d.ignorePatterns, patterns...)
	}
}

// WithFollowPatterns sets URL path patterns to follow during discovery.
// Empty means all URLs are allowed (subject to ignore patterns).
func WithFollowPatterns(patterns []string) DiscovererOption {
	return func(d *Discoverer) {
		d.followPatterns = patterns
	}
}

// NewDiscoverer creates a Discoverer with the built-in ignore patterns.
func NewDiscoverer(opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		ignorePatterns: append([]string(nil), defaultIgnorePatterns...),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover parses the page body and returns the normalized same-site
// URLs worth crawling, in document order, deduplicated. Malformed and
// non-HTTP references (mailto:, tel:, javascript:) are skipped silently;
// they are the extractor's business, not the frontier's.
func (d *Discoverer) Discover(body []byte, base *url.URL) []*url.URL {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	links := make([]*url.URL, 0)
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				u, err := urlutil.Normalize(attr.Val, base)
				if err != nil {
					break
				}
				if !urlutil.SameSite(u, base) || !d.shouldCrawl(u) {
					break
				}
				if key := u.String(); !seen[key] {
					seen[key] = true
					links = append(links, u)
				}
				break
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links
}

// shouldCrawl checks a URL against the ignore/follow patterns.
//
// Logic:
//  1. If the path matches any ignore pattern, skip it
//  2. If follow patterns are set and the path matches none, skip it
//  3. Otherwise, crawl it
func (d *Discoverer) shouldCrawl(u *url.URL) bool {
	path := u.Path
	if path == "" {
		path = "/"
	}

	for _, pattern := range d.ignorePatterns {
		if matchPattern(pattern, path) {
			return false
		}
	}

	if len(d.followPatterns) > 0 {
		for _, pattern := range d.followPatterns {
			if matchPattern(pattern, path) {
				return true
			}
		}
		return false
	}

	return true
}

// matchPattern checks if a path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//
// Examples:
//   - "/admin/*" matches "/admin/dashboard", "/admin/users"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/api/v?" matches "/api/v1", "/api/v2"
func matchPattern(pattern, path string) bool {
	// For patterns like "/admin/*", match "/admin/anything" at any depth
	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(path, prefix+"/") || path == prefix {
			return true
		}
	}

	// Handle extension patterns like "*.pdf"
	if strings.HasPrefix(pattern, "*.") {
		ext := strings.TrimPrefix(pattern, "*")
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}

	// Prefix patterns like "/logout*"
	if strings.HasSuffix(pattern, "*") && !strings.Contains(strings.TrimSuffix(pattern, "*"), "*") {
		if strings.HasPrefix(path, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}

	// filepath.Match handles * and ? for single-segment patterns
	matched, err := filepath.Match(pattern, path)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Also try matching just the filename for patterns like "*.bak"
	if strings.Contains(pattern, "*") && !strings.Contains(pattern, "/") {
		if matched, err := filepath.Match(pattern, filepath.Base(path)); err == nil && matched {
			return true
		}
	}

	return false
}
