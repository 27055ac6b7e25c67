package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/contactscan/contactscan/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// socialPlatform holds detection info for one social platform.
// Patterns match against fully resolved anchor URLs.
type socialPlatform struct {
	name    string
	pattern *regexp.Regexp
}

// socialPlatforms is ordered so that extraction output is deterministic.
// Each pattern anchors at the start of the URL and requires a profile
// path segment, not just the platform host.
var socialPlatforms = []socialPlatform{
	{"linkedin", regexp.MustCompile(`(?i)^https?://(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|company)/[A-Za-z0-9%_.\-]+`)},
	{"twitter", regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:twitter\.com|x\.com)/[A-Za-z0-9_]{1,15}(?:/|$|\?)`)},
	{"facebook", regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:facebook\.com|fb\.com)/[A-Za-z0-9.]+(?:/|$|\?)`)},
	{"instagram", regexp.MustCompile(`(?i)^https?://(?:www\.)?instagram\.com/[A-Za-z0-9_.]+(?:/|$|\?)`)},
	{"github", regexp.MustCompile(`(?i)^https?://(?:www\.)?github\.com/[A-Za-z0-9\-]+(?:/|$|\?)`)},
	{"youtube", regexp.MustCompile(`(?i)^https?://(?:www\.)?youtube\.com/(?:channel/|c/|user/|@)[A-Za-z0-9_\-]+`)},
}

// nonProfilePaths filters platform URLs that are site chrome rather than
// profiles: share widgets, login pages and similar.
var nonProfilePaths = []string{
	"/intent/", "/share", "/sharer", "/login", "/signup", "/register",
	"/help", "/about", "/terms", "/privacy", "/settings", "/search",
	"/home", "/explore", "/notifications", "/messages", "/i/",
	"/hashtag/", "/plugins/", "/dialog/",
}

// extractSocials finds social profile links among the page's anchors.
// Values are canonicalized (lowercase host, no query, no fragment, no
// trailing slash) so URL variants deduplicate to one finding.
func extractSocials(doc *pageDoc, base *url.URL, sourceURL string) []model.Finding {
	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	for _, href := range doc.Hrefs {
		resolved := resolveRef(href, base)
		if resolved == "" {
			continue
		}

		for _, platform := range socialPlatforms {
			if !platform.pattern.MatchString(resolved) {
				continue
			}
			if !isProfileLink(resolved) {
				break
			}
			value := canonicalSocialURL(resolved)
			if value == "" || seen[value] {
				break
			}
			seen[value] = true
			findings = append(findings, model.Finding{
				Type:      model.FindingSocial,
				Value:     value,
				SourceURL: sourceURL,
			})
			break
		}
	}

	return findings
}

// isProfileLink filters out share widgets, login pages and other
// platform chrome.
func isProfileLink(link string) bool {
	lower := strings.ToLower(link)
	for _, invalid := range nonProfilePaths {
		if strings.Contains(lower, invalid) {
			return false
		}
	}
	return true
}

// canonicalSocialURL reduces a profile URL to its canonical form:
// lowercase scheme and host, no query, no fragment, no trailing slash.
func canonicalSocialURL(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// PlatformTitle returns the display name for a platform identified by
// PlatformOf, falling back to a title-cased version of the raw name.
func PlatformTitle(platform string) string {
	titles := map[string]string{
		"linkedin":  "LinkedIn",
		"twitter":   "Twitter/X",
		"facebook":  "Facebook",
		"instagram": "Instagram",
		"github":    "GitHub",
		"youtube":   "YouTube",
	}
	if title, ok := titles[platform]; ok {
		return title
	}
	return cases.Title(language.English).String(platform)
}

// PlatformOf reports which platform a social finding value belongs to,
// or "" when it matches none.
func PlatformOf(value string) string {
	for _, platform := range socialPlatforms {
		if platform.pattern.MatchString(value) {
			return platform.name
		}
	}
	return ""
}
