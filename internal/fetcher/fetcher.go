package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/contactscan/contactscan/internal/model"
	"golang.org/x/net/proxy"
)

// Fetcher retrieves pages over HTTP(S).
//
// Design decision: We use a struct with a shared http.Client rather than
// passing the client on each call because:
//  1. Client configuration (proxy, timeouts) should be consistent
//  2. Connection pooling works better with a shared client
//  3. Easier to test with a configurable base URL
type Fetcher struct {
	// client is the configured HTTP client.
	client *http.Client

	// agents hands out the User-Agent for each request.
	agents *agentPool

	// headers are extra headers set on every request.
	headers map[string]string

	// cookie is a raw cookie string appended to every request.
	cookie string

	// maxBodySize limits the response body size to prevent memory exhaustion.
	maxBodySize int64

	// timeout is the per-request timeout.
	timeout time.Duration

	// maxRedirects caps the redirect chain per request.
	maxRedirects int

	// proxyURL routes traffic through an HTTP or SOCKS5 proxy when set.
	proxyURL string

	// insecureTLS disables certificate verification when true.
	insecureTLS bool

	logger *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = timeout
	}
}

// WithMaxBodySize sets the maximum response body size in bytes.
func WithMaxBodySize(size int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// WithMaxRedirects sets the redirect chain cap per request.
func WithMaxRedirects(n int) Option {
	return func(f *Fetcher) {
		f.maxRedirects = n
	}
}

// WithUserAgent pins a single User-Agent header for all requests.
// When unset, a small built-in pool is rotated per request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.agents = newAgentPool(ua)
	}
}

// WithHeaders sets extra headers included in every request.
func WithHeaders(headers map[string]string) Option {
	return func(f *Fetcher) {
		f.headers = headers
	}
}

// WithCookie sets a raw cookie string sent with every request.
// Format: "name=value" or "name1=value1; name2=value2"
func WithCookie(cookie string) Option {
	return func(f *Fetcher) {
		f.cookie = cookie
	}
}

// WithProxy routes all traffic through the given proxy URL.
// Supported schemes are http, https and socks5.
func WithProxy(proxyURL string) Option {
	return func(f *Fetcher) {
		f.proxyURL = proxyURL
	}
}

// WithInsecureTLS disables TLS certificate verification.
// A warning is logged when this is enabled.
func WithInsecureTLS(insecure bool) Option {
	return func(f *Fetcher) {
		f.insecureTLS = insecure
	}
}

// WithLogger sets the logger for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// New creates a Fetcher with the given options applied over safe defaults.
// It returns an error when the proxy URL cannot be parsed or uses an
// unsupported scheme.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		agents:       newAgentPool(""),
		maxBodySize:  model.MaxBodySize,
		timeout:      30 * time.Second,
		maxRedirects: 10,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(f)
	}

	transport, err := f.newTransport()
	if err != nil {
		return nil, err
	}

	if f.insecureTLS {
		f.logger.Warn("TLS certificate verification disabled")
	}

	// Cookie jar for server-set session cookies during crawling
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= f.maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	return f, nil
}

// newTransport builds the HTTP transport, wiring in the proxy when set.
func (f *Fetcher) newTransport() (*http.Transport, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: f.insecureTLS, //nolint:gosec // Explicit --insecure opt-in
		},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	if f.proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(f.proxyURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5":
		var auth *proxy.Auth
		if u.User != nil {
			password, _ := u.User.Password()
			auth = &proxy.Auth{User: u.User.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		}
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}

	return transport, nil
}

// Client returns the underlying HTTP client. Analyzers that fetch
// auxiliary resources (such as images) share the crawl's proxy and
// timeout settings this way.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Fetch performs one GET and returns the page on success.
// All failures are returned as a *FetchError with a classified kind.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*model.Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindConnection, URL: rawURL, Err: err}
	}
	f.setHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classify(err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Response body close in defer

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &FetchError{Kind: KindHTTP, URL: rawURL, StatusCode: resp.StatusCode}
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !usableContentType(contentType) {
		return nil, &FetchError{
			Kind: KindDecode,
			URL:  rawURL,
			Err:  fmt.Errorf("unsupported content type %q", contentType),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &FetchError{Kind: KindDecode, URL: rawURL, Err: err}
	}

	page := &model.Page{
		FinalURL:    resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}
	page.TruncateBody()

	return page, nil
}

// ResolveFinalURL follows redirects from rawURL and returns the final URL.
// It tries a HEAD request first and falls back to GET for servers that
// reject HEAD.
func (f *Fetcher) ResolveFinalURL(ctx context.Context, rawURL string) (string, error) {
	for _, method := range []string{http.MethodHead, http.MethodGet} {
		req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
		if err != nil {
			return "", &FetchError{Kind: KindConnection, URL: rawURL, Err: err}
		}
		f.setHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			return "", &FetchError{Kind: classify(err), URL: rawURL, Err: err}
		}
		finalURL := resp.Request.URL.String()
		status := resp.StatusCode
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // Drain for connection reuse
		resp.Body.Close()                                           //nolint:errcheck,gosec // Best-effort close

		// Some servers answer HEAD with 405 or 501; retry with GET
		if method == http.MethodHead &&
			(status == http.StatusMethodNotAllowed || status == http.StatusNotImplemented) {
			continue
		}
		if status >= http.StatusBadRequest {
			return "", &FetchError{Kind: KindHTTP, URL: rawURL, StatusCode: status}
		}
		return finalURL, nil
	}
	return "", &FetchError{Kind: KindHTTP, URL: rawURL, StatusCode: http.StatusMethodNotAllowed}
}

// setHeaders applies the User-Agent, standard accept headers, and any
// configured per-site headers and cookie to the request.
func (f *Fetcher) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.agents.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	for key, value := range f.headers {
		req.Header.Set(key, value)
	}

	if f.cookie != "" {
		if existing := req.Header.Get("Cookie"); existing != "" {
			req.Header.Set("Cookie", existing+"; "+f.cookie)
		} else {
			req.Header.Set("Cookie", f.cookie)
		}
	}
}

// classify maps a transport-level error to an ErrorKind.
func classify(err error) ErrorKind {
	if errors.Is(err, errTooManyRedirects) {
		return KindTooManyRedirects
	}
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return KindTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return KindTimeout
	}
	return KindConnection
}

// mediaType strips parameters such as charset from a Content-Type header.
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		// Fall back to a plain prefix cut for malformed headers
		if i := strings.Index(header, ";"); i >= 0 {
			header = header[:i]
		}
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}

// usableContentType reports whether the content type is worth reading.
// Binary types (images, archives, PDFs) are rejected before the body is
// read so the crawl never buffers content it cannot extract from.
func usableContentType(contentType string) bool {
	if contentType == "" {
		// Assume HTML when the server omits the header
		return true
	}
	return strings.HasPrefix(contentType, "text/") ||
		contentType == "application/xhtml+xml" ||
		contentType == "application/xml"
}
