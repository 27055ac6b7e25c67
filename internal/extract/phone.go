package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/contactscan/contactscan/internal/model"
)

// phoneCandidateRegex matches phone-number-shaped runs of digits with
// optional separators. Validation happens afterwards; the regex only has
// to be loose enough to catch common formattings like "+1 (555) 123-4567"
// and "0211 55 55 55".
var phoneCandidateRegex = regexp.MustCompile(`\+?\d[\d()\[\]. \-]{5,24}\d`)

// Significant digit bounds for a plausible phone number. Shorter runs are
// usually prices or dates, longer runs are IDs or tracking numbers.
const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// extractPhones finds phone numbers in visible text and tel: links.
//
// A candidate from page text must carry formatting evidence (a separator
// character or a leading plus) in addition to a plausible digit count,
// otherwise plain integers like order numbers would match. tel: links are
// explicit, so they only need the digit count to validate.
func extractPhones(doc *pageDoc, sourceURL string) []model.Finding {
	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	add := func(value string) {
		if value == "" || seen[value] {
			return
		}
		seen[value] = true
		findings = append(findings, model.Finding{
			Type:      model.FindingPhone,
			Value:     value,
			SourceURL: sourceURL,
		})
	}

	for _, candidate := range phoneCandidateRegex.FindAllString(doc.Text, -1) {
		if value, ok := normalizePhone(candidate, false); ok {
			add(value)
		}
	}

	for _, href := range doc.Hrefs {
		if !strings.HasPrefix(strings.ToLower(href), "tel:") {
			continue
		}
		number := href[len("tel:"):]
		if unescaped, err := url.PathUnescape(number); err == nil {
			number = unescaped
		}
		if value, ok := normalizePhone(number, true); ok {
			add(value)
		}
	}

	return findings
}

// normalizePhone validates a candidate and reduces it to its canonical
// form: the significant digits, keeping a leading plus when present.
// explicit marks candidates from tel: links, which skip the separator
// requirement.
func normalizePhone(raw string, explicit bool) (string, bool) {
	raw = strings.TrimSpace(raw)

	var digits strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	n := digits.Len()
	if n < minPhoneDigits || n > maxPhoneDigits {
		return "", false
	}

	hasPlus := strings.HasPrefix(raw, "+")
	if !explicit && !hasPlus && !strings.ContainsAny(raw, " ()-.[]") {
		return "", false
	}

	if hasPlus {
		return "+" + digits.String(), true
	}
	return digits.String(), true
}
