// Package urlutil normalizes URLs into the canonical form used for
// crawl frontier deduplication and same-site scoping.
//
// Two URLs that normalize to the same string are treated as the same page.
// Normalization is idempotent: normalizing an already-normalized URL is a
// no-op.
package urlutil

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrUnsupportedScheme is returned when a URL uses a scheme the crawler
// cannot fetch, such as mailto:, tel:, javascript: or ftp:. Callers route
// mailto: and tel: references to the extractor instead of the frontier.
var ErrUnsupportedScheme = errors.New("urlutil: unsupported url scheme")

// Normalize resolves raw against base (when base is non-nil and raw is
// relative) and returns the canonical absolute URL.
//
// Canonicalization rules:
//   - scheme and host are lowercased
//   - default ports are stripped (:80 for http, :443 for https)
//   - the fragment is removed
//   - the path is cleaned (duplicate and trailing slashes, dot segments)
//   - an empty path becomes "/"
//   - the query string is preserved as-is
func Normalize(raw string, base *url.URL) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if base != nil {
		u = base.ResolveReference(u)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrUnsupportedScheme
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "" ||
		(u.Scheme == "http" && port == "80") ||
		(u.Scheme == "https" && port == "443"):
		u.Host = host
	default:
		u.Host = host + ":" + port
	}

	u.Fragment = ""
	u.RawFragment = ""

	cleaned := path.Clean(u.Path)
	if cleaned == "." || cleaned == "" {
		cleaned = "/"
	}
	u.Path = cleaned
	u.RawPath = ""

	return u, nil
}

// SameSite reports whether a and b are on the same site. Site identity is
// the exact normalized host: subdomains are distinct sites.
func SameSite(a, b *url.URL) bool {
	return strings.EqualFold(a.Hostname(), b.Hostname())
}

// EnsureScheme prepends https:// to a bare host given on the command line.
func EnsureScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}
