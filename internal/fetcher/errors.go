package fetcher

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure.
// The crawl engine treats all kinds the same way (count and continue),
// but logs and reports benefit from the distinction.
type ErrorKind int

// Fetch failure kinds.
const (
	// KindTimeout means the request exceeded the configured timeout.
	KindTimeout ErrorKind = iota

	// KindConnection means DNS resolution or the TCP/TLS connection failed.
	KindConnection

	// KindTooManyRedirects means the redirect chain exceeded the cap.
	KindTooManyRedirects

	// KindHTTP means the server answered with a 4xx or 5xx status.
	KindHTTP

	// KindDecode means the response could not be used as page content,
	// for example a non-text Content-Type or an unreadable body.
	KindDecode
)

// String returns the human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindConnection:
		return "connection"
	case KindTooManyRedirects:
		return "too many redirects"
	case KindHTTP:
		return "http error"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// errTooManyRedirects aborts the redirect chain inside CheckRedirect.
// It surfaces wrapped in a *url.Error and is translated to
// KindTooManyRedirects by classify.
var errTooManyRedirects = errors.New("stopped after too many redirects")

// FetchError is the typed failure returned by Fetcher.Fetch.
type FetchError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// URL is the request URL that failed.
	URL string

	// StatusCode is the HTTP status for KindHTTP failures, zero otherwise.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: %s (status %d)", e.URL, e.Kind, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}
