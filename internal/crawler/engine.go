package crawler

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/contactscan/contactscan/internal/model"
	"github.com/contactscan/contactscan/internal/urlutil"
)

const (
	// defaultMaxPages caps how many pages one crawl may fetch.
	defaultMaxPages = 50

	// defaultDelay is the politeness delay between page fetches.
	defaultDelay = 1 * time.Second

	// defaultConcurrency is the number of in-flight fetches.
	defaultConcurrency = 1
)

// PageFetcher fetches a single page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Page, error)
}

// FindingExtractor extracts contact findings and image references
// from a fetched page.
type FindingExtractor interface {
	Extract(page *model.Page) []model.Finding
	ImageURLs(page *model.Page) []string
}

// FindingStore accumulates findings across pages, deduplicating on
// (type, value). Add reports how many findings were new.
type FindingStore interface {
	Add(findings ...model.Finding) int
}

// ProgressFunc is called after each page attempt with the page URL and
// the running visited/failed counts.
type ProgressFunc func(pageURL string, visited, failed int)

// Engine coordinates a breadth-first crawl of one site.
//
// An Engine tracks the state of a single crawl. Create a new Engine
// for each seed URL.
type Engine struct {
	fetcher    PageFetcher
	extractor  FindingExtractor
	store      FindingStore
	discoverer *Discoverer
	logger     *slog.Logger

	maxPages      int
	delay         time.Duration
	concurrency   int64
	recursive     bool
	collectImages bool
	progress      ProgressFunc

	mu       sync.Mutex
	frontier []*url.URL
	visited  map[string]bool
	inFlight int
	pagesOK  int
	failed   int
	finalURL string
	images   []string

	wake chan struct{}
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPages caps how many pages the crawl may fetch, counting both
// successful and failed attempts.
func WithMaxPages(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPages = n
		}
	}
}

// WithDelay sets the politeness delay between page fetches.
// Zero disables pacing.
func WithDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.delay = d
	}
}

// WithConcurrency sets how many fetches may be in flight at once.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = int64(n)
		}
	}
}

// WithRecursive enables link discovery. When disabled only the seed
// page is fetched.
func WithRecursive(recursive bool) Option {
	return func(e *Engine) {
		e.recursive = recursive
	}
}

// WithDiscoverer replaces the default link discoverer.
func WithDiscoverer(d *Discoverer) Option {
	return func(e *Engine) {
		e.discoverer = d
	}
}

// WithImageCollection enables collecting image URLs from crawled pages
// for later EXIF analysis. Retrieve them with Images after Run.
func WithImageCollection(enabled bool) Option {
	return func(e *Engine) {
		e.collectImages = enabled
	}
}

// WithProgress sets a callback invoked after each page attempt.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithLogger sets the logger for crawl diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates a crawl engine.
func New(fetcher PageFetcher, extractor FindingExtractor, store FindingStore, opts ...Option) *Engine {
	e := &Engine{
		fetcher:     fetcher,
		extractor:   extractor,
		store:       store,
		discoverer:  NewDiscoverer(),
		logger:      slog.Default(),
		maxPages:    defaultMaxPages,
		delay:       defaultDelay,
		concurrency: defaultConcurrency,
		wake:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run crawls from seedURL until the frontier is exhausted, the page
// budget is spent, or the context is cancelled. Findings go into the
// store as pages complete; on cancellation the findings collected so
// far are preserved and the returned stats carry StateAborted.
func (e *Engine) Run(ctx context.Context, seedURL string) (model.CrawlStats, error) {
	stats := model.CrawlStats{
		StartedAt: time.Now(),
		State:     model.StateRunning,
	}

	seed, err := urlutil.Normalize(seedURL, nil)
	if err != nil {
		stats.State = model.StateIdle
		return stats, err
	}

	e.mu.Lock()
	e.frontier = []*url.URL{seed}
	e.visited = map[string]bool{seed.String(): true}
	e.finalURL = seed.String()
	e.mu.Unlock()

	e.logger.Info("crawl started",
		"seed_url", seed.String(),
		"max_pages", e.maxPages,
		"recursive", e.recursive,
	)

	var limiter *rate.Limiter
	if e.delay > 0 {
		limiter = rate.NewLimiter(rate.Every(e.delay), 1)
	}
	sem := semaphore.NewWeighted(e.concurrency)

	var wg sync.WaitGroup
	dispatched := 0
	aborted := false

loop:
	for {
		if ctx.Err() != nil {
			aborted = true
			break
		}
		if dispatched >= e.maxPages {
			break
		}

		e.mu.Lock()
		if len(e.frontier) == 0 {
			idle := e.inFlight == 0
			e.mu.Unlock()
			if idle {
				break
			}
			// Frontier may refill when an in-flight page completes.
			select {
			case <-ctx.Done():
				aborted = true
				break loop
			case <-e.wake:
			}
			continue
		}
		next := e.frontier[0]
		e.frontier = e.frontier[1:]
		e.mu.Unlock()

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				aborted = true
				break
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			aborted = true
			break
		}

		dispatched++
		isSeed := dispatched == 1

		e.mu.Lock()
		e.inFlight++
		e.mu.Unlock()

		wg.Add(1)
		go func(u *url.URL) {
			defer wg.Done()
			defer sem.Release(1)
			e.crawlPage(ctx, u, isSeed)

			e.mu.Lock()
			e.inFlight--
			e.mu.Unlock()
			select {
			case e.wake <- struct{}{}:
			default:
			}
		}(next)
	}

	wg.Wait()

	e.mu.Lock()
	stats.FinalURL = e.finalURL
	stats.PagesVisited = e.pagesOK
	stats.PagesFailed = e.failed
	e.mu.Unlock()
	stats.Elapsed = time.Since(stats.StartedAt)

	if aborted {
		stats.State = model.StateAborted
	} else {
		stats.State = model.StateCompleted
	}

	e.logger.Info("crawl finished",
		"final_url", stats.FinalURL,
		"pages_visited", stats.PagesVisited,
		"pages_failed", stats.PagesFailed,
		"state", stats.State.String(),
		"elapsed", stats.Elapsed,
	)

	return stats, nil
}

// Images returns the image URLs collected during the crawl, in the
// order they were first seen. Empty unless WithImageCollection was set.
func (e *Engine) Images() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.images...)
}

// crawlPage fetches one page, extracts its findings into the store and
// feeds discovered links back into the frontier.
func (e *Engine) crawlPage(ctx context.Context, u *url.URL, isSeed bool) {
	pageURL := u.String()
	e.logger.Debug("fetching page", "url", pageURL)

	page, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		// Cancellation is not a page failure.
		if ctx.Err() != nil {
			return
		}
		e.logger.Debug("page fetch failed", "url", pageURL, "error", err)
		e.mu.Lock()
		e.failed++
		visited, failed := e.pagesOK, e.failed
		e.mu.Unlock()
		if e.progress != nil {
			e.progress(pageURL, visited, failed)
		}
		return
	}

	findings := e.extractor.Extract(page)
	added := e.store.Add(findings...)

	var links []*url.URL
	if e.recursive && page.IsHTML() {
		if base, err := url.Parse(page.FinalURL); err == nil {
			links = e.discoverer.Discover(page.Body, base)
		}
	}

	var imageURLs []string
	if e.collectImages {
		imageURLs = e.extractor.ImageURLs(page)
	}

	e.mu.Lock()
	e.pagesOK++
	if isSeed {
		e.finalURL = page.FinalURL
	}
	e.images = append(e.images, imageURLs...)
	for _, link := range links {
		key := link.String()
		if !e.visited[key] {
			e.visited[key] = true
			e.frontier = append(e.frontier, link)
		}
	}
	visited, failed := e.pagesOK, e.failed
	e.mu.Unlock()

	e.logger.Debug("page crawled",
		"url", page.FinalURL,
		"status", page.StatusCode,
		"new_findings", added,
		"new_links", len(links),
	)
	if e.progress != nil {
		e.progress(pageURL, visited, failed)
	}
}
