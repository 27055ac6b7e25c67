package extract

import (
	"regexp"
	"strings"

	"github.com/contactscan/contactscan/internal/model"
)

// emailRegex matches email addresses in text.
//
// Design decision: We use a permissive regex rather than strict RFC 5322
// because:
//  1. Real-world pages rarely contain RFC-clean addresses
//  2. The trailing TLD requirement filters most false positives
//  3. Strict parsing would miss many real-world cases
var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// maxEmailLength guards against regex matches that run into surrounding
// garbage, such as concatenated minified content.
const maxEmailLength = 100

// extractEmails finds email addresses in visible text and mailto: links.
// Values are lowercased so case variants deduplicate to one finding.
func extractEmails(doc *pageDoc, sourceURL string) []model.Finding {
	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	add := func(raw string) {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || len(email) > maxEmailLength || seen[email] {
			return
		}
		seen[email] = true
		findings = append(findings, model.Finding{
			Type:      model.FindingEmail,
			Value:     email,
			SourceURL: sourceURL,
		})
	}

	for _, match := range emailRegex.FindAllString(doc.Text, -1) {
		add(match)
	}

	for _, href := range doc.Hrefs {
		if !strings.HasPrefix(strings.ToLower(href), "mailto:") {
			continue
		}
		addr := href[len("mailto:"):]
		// Drop ?subject=... and friends
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		// A mailto: target may list several comma-separated addresses
		for _, part := range strings.Split(addr, ",") {
			if emailRegex.MatchString(part) {
				add(emailRegex.FindString(part))
			}
		}
	}

	return findings
}
