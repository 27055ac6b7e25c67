package extract

import (
	"strings"

	"github.com/contactscan/contactscan/internal/model"
)

// metaKeys are the meta tag names reported as metadata findings.
// The generator tag in particular identifies the site's CMS, which is
// useful context for contact research.
var metaKeys = []string{"description", "generator"}

// extractMetadata reports the page title and selected meta tags.
// Values carry a "key: " prefix so different keys with identical content
// stay distinct after (type, value) deduplication.
func extractMetadata(doc *pageDoc, sourceURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	if title := strings.TrimSpace(doc.Title); title != "" {
		findings = append(findings, model.Finding{
			Type:      model.FindingMetadata,
			Value:     "title: " + title,
			SourceURL: sourceURL,
		})
	}

	for _, key := range metaKeys {
		if content := strings.TrimSpace(doc.Meta[key]); content != "" {
			findings = append(findings, model.Finding{
				Type:      model.FindingMetadata,
				Value:     key + ": " + content,
				SourceURL: sourceURL,
			})
		}
	}

	return findings
}
