package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/contactscan/contactscan/internal/model"
	"github.com/contactscan/contactscan/internal/urlutil"
)

// ErrNoHTTPClient is returned when the analyzer is used without a client.
// The analyzer must share the crawl's HTTP client so images go through
// the same proxy and timeout configuration as pages.
var ErrNoHTTPClient = errors.New("no HTTP client configured for exif analysis")

// exifTags maps EXIF tag names to the label used in the finding value.
// Only identity-relevant tags are reported: authorship, copyright and
// location. Camera technical data is noise for contact research.
var exifTags = map[string]string{
	"Artist":          "artist",
	"XPAuthor":        "artist",
	"Copyright":       "copyright",
	"GPSLatitude":     "gps",
	"GPSLongitude":    "gps",
	"GPSLatitudeRef":  "gps",
	"GPSLongitudeRef": "gps",
}

// EXIFAnalyzer extracts identifying EXIF metadata from images referenced
// by crawled pages. Images are fetched with the crawl's own HTTP client,
// restricted to the crawled site, and capped in count and size.
type EXIFAnalyzer struct {
	// httpClient fetches images. Shared with the page fetcher so proxy
	// and TLS settings stay consistent.
	httpClient *http.Client

	// maxImageSize limits the size of each downloaded image.
	maxImageSize int64

	// maxImages caps how many images are fetched per crawl.
	maxImages int

	// imageURLPattern restricts fetches to formats that carry EXIF.
	imageURLPattern *regexp.Regexp

	logger *slog.Logger
}

// EXIFOption configures an EXIFAnalyzer.
type EXIFOption func(*EXIFAnalyzer)

// WithMaxImages caps how many images are fetched per crawl.
func WithMaxImages(n int) EXIFOption {
	return func(a *EXIFAnalyzer) {
		a.maxImages = n
	}
}

// WithMaxImageSize limits the size of each downloaded image.
func WithMaxImageSize(size int64) EXIFOption {
	return func(a *EXIFAnalyzer) {
		a.maxImageSize = size
	}
}

// WithEXIFLogger sets the logger for analysis diagnostics.
func WithEXIFLogger(logger *slog.Logger) EXIFOption {
	return func(a *EXIFAnalyzer) {
		a.logger = logger
	}
}

// NewEXIFAnalyzer creates an analyzer that fetches images with client.
func NewEXIFAnalyzer(client *http.Client, opts ...EXIFOption) *EXIFAnalyzer {
	a := &EXIFAnalyzer{
		httpClient:      client,
		maxImageSize:    5 * 1024 * 1024, // 5MB
		maxImages:       20,
		imageURLPattern: regexp.MustCompile(`(?i)\.(jpe?g|tiff?)(?:\?[^"'\s]*)?$`),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fetches up to maxImages of the given image URLs and reports
// identifying EXIF tags as metadata findings. Only images on the same
// site as siteURL are fetched. Per-image failures are logged and skipped;
// the only hard error is a missing HTTP client or a cancelled context.
func (a *EXIFAnalyzer) Analyze(ctx context.Context, siteURL string, imageURLs []string) ([]model.Finding, error) {
	if a.httpClient == nil {
		return nil, ErrNoHTTPClient
	}

	site, err := url.Parse(siteURL)
	if err != nil {
		return nil, err
	}

	findings := make([]model.Finding, 0)
	seen := make(map[string]bool)
	fetched := 0

	for _, imgURL := range imageURLs {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}

		if fetched >= a.maxImages {
			break
		}
		if seen[imgURL] {
			continue
		}
		seen[imgURL] = true

		if !a.imageURLPattern.MatchString(imgURL) {
			continue
		}
		parsed, err := url.Parse(imgURL)
		if err != nil || !urlutil.SameSite(parsed, site) {
			continue
		}

		fetched++
		imgFindings, err := a.analyzeImage(ctx, imgURL)
		if err != nil {
			a.logger.Debug("exif image skipped", "url", imgURL, "error", err)
			continue
		}
		findings = append(findings, imgFindings...)
	}

	return findings, nil
}

// analyzeImage fetches one image and extracts its EXIF findings.
func (a *EXIFAnalyzer) analyzeImage(ctx context.Context, imageURL string) ([]model.Finding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Response body close in defer

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(resp.Status)
	}
	if resp.ContentLength > a.maxImageSize {
		return nil, errors.New("image exceeds size limit")
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, a.maxImageSize))
	if err != nil {
		return nil, err
	}

	return a.analyzeImageData(imageData, imageURL), nil
}

// analyzeImageData extracts identity-relevant EXIF tags from image bytes.
func (a *EXIFAnalyzer) analyzeImageData(imageData []byte, imageURL string) []model.Finding {
	findings := make([]model.Finding, 0)

	rawExif, err := exif.SearchAndExtractExif(imageData)
	if err != nil || rawExif == nil {
		return findings
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return findings
	}

	for _, entry := range entries {
		label, ok := exifTags[entry.TagName]
		if !ok {
			continue
		}
		value := strings.TrimSpace(entry.Formatted)
		if value == "" {
			continue
		}
		findings = append(findings, model.Finding{
			Type:      model.FindingMetadata,
			Value:     "exif " + label + " (" + entry.TagName + "): " + value,
			SourceURL: imageURL,
		})
	}

	return findings
}
