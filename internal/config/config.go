package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultMaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating sites.
	// Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// DefaultTimeout is the per-request HTTP timeout. 30 seconds is generous
	// for a single page fetch while still letting a crawl of slow hosts
	// finish in bounded time.
	DefaultTimeout = 30 * time.Second

	// DefaultDelay is the politeness delay between page fetches.
	// 1 second is conservative and respectful of server resources.
	DefaultDelay = 1 * time.Second

	// DefaultConcurrency is the number of in-flight page fetches.
	// The default of 1 gives strictly sequential, delay-paced crawling.
	DefaultConcurrency = 1

	// DefaultBatchSize is the number of concurrent crawls when processing
	// multiple seed URLs. Each crawl paces itself, so a modest batch size
	// keeps total load reasonable.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultMaxRedirects is the redirect chain cap per request.
	DefaultMaxRedirects = 10

	// DefaultMaxEXIFImages is the maximum number of images fetched for
	// EXIF analysis per crawl when --exif is enabled.
	DefaultMaxEXIFImages = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "contactscan"
)

// Config holds all configuration options for contactscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// SeedURLs is the list of seed URLs to crawl, one crawl per seed.
	// Must contain at least one entry. A bare host is accepted and gets
	// an https:// scheme prepended.
	SeedURLs []string

	// MaxPages is the maximum number of page fetch attempts per crawl.
	// Both successful and failed fetches count toward this budget, so the
	// crawl terminates even when every fetch fails.
	MaxPages int

	// Timeout is the HTTP timeout for each page fetch.
	Timeout time.Duration

	// Delay is the politeness delay between page fetch dispatches.
	// Lower values may cause rate limiting or service disruption.
	Delay time.Duration

	// Recursive enables following same-site links beyond the seed page.
	// When false, only the seed page is fetched.
	Recursive bool

	// Concurrency is the number of in-flight page fetches per crawl.
	// Dispatches remain paced by Delay regardless of this value.
	Concurrency int

	// BatchSize is the number of concurrent crawls when multiple seeds
	// are given.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// InsecureTLS disables TLS certificate verification.
	// Verification is on by default; disabling it is logged as a warning.
	InsecureTLS bool

	// Proxy is an optional proxy URL for all HTTP traffic.
	// Supports http://, https:// and socks5:// schemes.
	Proxy string

	// UserAgent pins a single User-Agent header for all requests.
	// When empty, a small built-in pool is rotated per request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. Zero means the default.
	MaxBodySize int64

	// OutputFile is the report output path. The file extension selects
	// the format (.json, .csv, .md). When empty, a console summary is
	// printed instead.
	OutputFile string

	// EXIF enables fetching JPEG/TIFF images referenced by crawled pages
	// and extracting Artist, Copyright and GPS tags as metadata findings.
	EXIF bool

	// MaxEXIFImages caps how many images are fetched when EXIF is enabled.
	MaxEXIFImages int

	// NoDB disables persisting crawl results to the history database.
	NoDB bool

	// DBDir is the directory for the SQLite history database.
	// Defaults to the XDG data directory.
	DBDir string

	// ConfigFilePath is the path to the site configuration file.
	// If empty, the tool searches for .contactscan in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds per-host configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted per seed.
	SiteConfigs *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		MaxPages:      DefaultMaxPages,
		Timeout:       DefaultTimeout,
		Delay:         DefaultDelay,
		Concurrency:   DefaultConcurrency,
		BatchSize:     DefaultBatchSize,
		MaxBodySize:   DefaultMaxBodySize,
		MaxEXIFImages: DefaultMaxEXIFImages,
	}
}

// XDGDataDir returns the XDG data directory for contactscan.
// On Linux: ~/.local/share/contactscan
// On macOS: ~/Library/Application Support/contactscan
// On Windows: %LOCALAPPDATA%\contactscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for contactscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.SeedURLs) == 0 {
		return ErrNoSeed
	}

	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// A negative delay is invalid; zero disables pacing entirely
	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.OutputFile != "" {
		switch strings.ToLower(filepath.Ext(c.OutputFile)) {
		case ".json", ".csv", ".md":
		default:
			return ErrUnsupportedOutput
		}
		// One output file cannot hold reports for several crawls
		if len(c.SeedURLs) > 1 {
			return ErrOutputWithMultipleSeeds
		}
	}

	return nil
}
