package extract

import (
	"log/slog"
	"net/url"

	"github.com/contactscan/contactscan/internal/model"
)

// Extractor runs all contact-signal passes over a fetched page.
//
// An Extractor is stateless with respect to pages: deduplication across
// pages is the result store's job. Within a single page, duplicate values
// are collapsed so the findings slice stays small.
type Extractor struct {
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for extraction diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract parses the page and returns all findings discovered on it,
// tagged with the page's final URL. Non-HTML pages yield no findings.
// Extraction never fails a crawl: unparseable content returns nil.
func (e *Extractor) Extract(page *model.Page) []model.Finding {
	if page == nil || !page.IsHTML() {
		return nil
	}

	base, err := url.Parse(page.FinalURL)
	if err != nil {
		base = nil
	}

	doc, err := parsePage(page.Body, base)
	if err != nil {
		e.logger.Debug("skipping unparseable page", "url", page.FinalURL, "error", err)
		return nil
	}

	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)

	add := func(f model.Finding) {
		if !seen[f.Key()] {
			seen[f.Key()] = true
			findings = append(findings, f)
		}
	}

	for _, f := range extractEmails(doc, page.FinalURL) {
		add(f)
	}
	for _, f := range extractPhones(doc, page.FinalURL) {
		add(f)
	}
	for _, f := range extractSocials(doc, base, page.FinalURL) {
		add(f)
	}
	for _, f := range extractMetadata(doc, page.FinalURL) {
		add(f)
	}

	return findings
}

// ImageURLs returns the image URLs referenced by the page, resolved
// against the page URL. Used by the EXIF analyzer.
func (e *Extractor) ImageURLs(page *model.Page) []string {
	if page == nil || !page.IsHTML() {
		return nil
	}

	base, err := url.Parse(page.FinalURL)
	if err != nil {
		base = nil
	}

	doc, err := parsePage(page.Body, base)
	if err != nil {
		return nil
	}
	return doc.Images
}
