package model

// FindingType identifies the kind of contact signal a Finding carries.
type FindingType string

// Supported finding types.
const (
	// FindingEmail is an email address found in page text or a mailto: link.
	FindingEmail FindingType = "email"

	// FindingPhone is a phone number found in page text or a tel: link.
	FindingPhone FindingType = "phone"

	// FindingSocial is a social media profile link found in an anchor href.
	FindingSocial FindingType = "social"

	// FindingMetadata is page metadata (title, description, generator) or
	// EXIF metadata extracted from an image referenced by a page.
	FindingMetadata FindingType = "metadata"
)

// Finding represents one extracted fact with provenance.
//
// Invariant: Value is normalized per type before it reaches the result store:
// emails are lowercased, phone numbers are reduced to digits with an optional
// leading plus sign, and social links are canonicalized to the bare profile
// URL. Two Findings with equal (Type, Value) are the same fact regardless of
// where they were discovered.
type Finding struct {
	// Type is the finding type identifier.
	Type FindingType `json:"type"`

	// Value is the normalized extracted value.
	Value string `json:"value"`

	// SourceURL is the page the finding was first discovered on.
	SourceURL string `json:"source_url"`
}

// Key returns the deduplication key for the finding.
// Provenance is deliberately excluded: a value found on multiple pages
// is reported once, attributed to its first occurrence.
func (f Finding) Key() string {
	return string(f.Type) + "|" + f.Value
}
