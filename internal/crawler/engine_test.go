package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/contactscan/contactscan/internal/extract"
	"github.com/contactscan/contactscan/internal/fetcher"
	"github.com/contactscan/contactscan/internal/model"
)

// memStore is a minimal finding store for engine tests.
type memStore struct {
	mu       sync.Mutex
	findings []model.Finding
	seen     map[string]bool
}

func newMemStore() *memStore {
	return &memStore{seen: make(map[string]bool)}
}

func (s *memStore) Add(findings ...model.Finding) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := 0
	for _, f := range findings {
		if s.seen[f.Key()] {
			continue
		}
		s.seen[f.Key()] = true
		s.findings = append(s.findings, f)
		added++
	}
	return added
}

func (s *memStore) all() []model.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Finding(nil), s.findings...)
}

func newTestFetcher(t *testing.T) *fetcher.Fetcher {
	t.Helper()
	f, err := fetcher.New(fetcher.WithTimeout(5 * time.Second))
	if err != nil {
		t.Fatalf("fetcher.New() error = %v", err)
	}
	return f
}

func TestEngineRun(t *testing.T) {
	t.Parallel()

	t.Run("recursive crawl visits each page once", func(t *testing.T) {
		t.Parallel()

		var hits sync.Map
		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if n, _ := hits.LoadOrStore(r.URL.Path, new(atomic.Int64)); n != nil {
				n.(*atomic.Int64).Add(1)
			}
			switch r.URL.Path {
			case "/":
				fmt.Fprint(w, `<html><body>
					<a href="/contact">Contact</a>
					<a href="/about">About</a>
					<a href="/contact">Contact again</a>
				</body></html>`)
			case "/contact":
				fmt.Fprint(w, `<html><body>info@example.com<a href="/">Home</a></body></html>`)
			case "/about":
				fmt.Fprint(w, `<html><body>About us<a href="/contact">Contact</a></body></html>`)
			default:
				http.NotFound(w, r)
			}
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		engine := New(newTestFetcher(t), extract.New(), store,
			WithRecursive(true),
			WithDelay(0),
		)

		stats, err := engine.Run(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.State != model.StateCompleted {
			t.Errorf("State = %v, want StateCompleted", stats.State)
		}
		if stats.PagesVisited != 3 {
			t.Errorf("PagesVisited = %d, want 3", stats.PagesVisited)
		}
		if stats.PagesFailed != 0 {
			t.Errorf("PagesFailed = %d, want 0", stats.PagesFailed)
		}

		hits.Range(func(path, n any) bool {
			if got := n.(*atomic.Int64).Load(); got != 1 {
				t.Errorf("path %v fetched %d times, want 1", path, got)
			}
			return true
		})

		found := false
		for _, f := range store.all() {
			if f.Type == model.FindingEmail && f.Value == "info@example.com" {
				found = true
			}
		}
		if !found {
			t.Error("email from linked page not collected")
		}
	})

	t.Run("page budget bounds total fetch attempts", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := requests.Add(1)
			fmt.Fprintf(w, `<html><body><a href="/p/%d">Next</a></body></html>`, n)
		}))
		defer server.Close()

		engine := New(newTestFetcher(t), extract.New(), newMemStore(),
			WithRecursive(true),
			WithMaxPages(3),
			WithDelay(0),
		)

		stats, err := engine.Run(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := requests.Load(); got != 3 {
			t.Errorf("server saw %d requests, want 3", got)
		}
		if stats.PagesVisited != 3 {
			t.Errorf("PagesVisited = %d, want 3", stats.PagesVisited)
		}
		if stats.State != model.StateCompleted {
			t.Errorf("State = %v, want StateCompleted", stats.State)
		}
	})

	t.Run("failed pages are counted separately", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/":
				fmt.Fprint(w, `<html><body>
					<a href="/missing">Gone</a>
					<a href="/contact">Contact</a>
				</body></html>`)
			case "/contact":
				fmt.Fprint(w, `<html><body>sales@example.com</body></html>`)
			default:
				http.NotFound(w, r)
			}
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		store := newMemStore()
		engine := New(newTestFetcher(t), extract.New(), store,
			WithRecursive(true),
			WithDelay(0),
		)

		stats, err := engine.Run(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.PagesVisited != 2 {
			t.Errorf("PagesVisited = %d, want 2", stats.PagesVisited)
		}
		if stats.PagesFailed != 1 {
			t.Errorf("PagesFailed = %d, want 1", stats.PagesFailed)
		}
		if stats.State != model.StateCompleted {
			t.Errorf("State = %v, want StateCompleted", stats.State)
		}
	})

	t.Run("non-recursive fetches only the seed", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, `<html><body><a href="/more">More</a></body></html>`)
		}))
		defer server.Close()

		engine := New(newTestFetcher(t), extract.New(), newMemStore(), WithDelay(0))

		stats, err := engine.Run(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("server saw %d requests, want 1", got)
		}
		if stats.PagesVisited != 1 {
			t.Errorf("PagesVisited = %d, want 1", stats.PagesVisited)
		}
	})

	t.Run("cancellation aborts but preserves findings", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintf(w, `<html><body>page%d@example.com<a href="/p/%s">Next</a></body></html>`,
				len(r.URL.Path), r.URL.Path)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store := newMemStore()
		engine := New(newTestFetcher(t), extract.New(), store,
			WithRecursive(true),
			WithDelay(0),
			WithProgress(func(_ string, visited, _ int) {
				if visited >= 1 {
					cancel()
				}
			}),
		)

		stats, err := engine.Run(ctx, server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if stats.State != model.StateAborted {
			t.Errorf("State = %v, want StateAborted", stats.State)
		}
		if len(store.all()) == 0 {
			t.Error("findings from completed pages should be preserved")
		}
	})

	t.Run("final url reflects seed redirect", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/home", http.StatusMovedPermanently)
		})
		mux.HandleFunc("/home", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body>Home</body></html>`)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		engine := New(newTestFetcher(t), extract.New(), newMemStore(), WithDelay(0))

		stats, err := engine.Run(context.Background(), server.URL)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if want := server.URL + "/home"; stats.FinalURL != want {
			t.Errorf("FinalURL = %q, want %q", stats.FinalURL, want)
		}
	})

	t.Run("rejects unsupported seed scheme", func(t *testing.T) {
		t.Parallel()

		engine := New(newTestFetcher(t), extract.New(), newMemStore())
		if _, err := engine.Run(context.Background(), "ftp://example.com"); err == nil {
			t.Error("expected error for unsupported scheme")
		}
	})

	t.Run("collects image urls when enabled", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `<html><body><img src="/photos/team.jpg"></body></html>`)
		}))
		defer server.Close()

		engine := New(newTestFetcher(t), extract.New(), newMemStore(),
			WithDelay(0),
			WithImageCollection(true),
		)

		if _, err := engine.Run(context.Background(), server.URL); err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		images := engine.Images()
		if len(images) != 1 {
			t.Fatalf("Images() = %v, want 1 entry", images)
		}
		if want := server.URL + "/photos/team.jpg"; images[0] != want {
			t.Errorf("Images()[0] = %q, want %q", images[0], want)
		}
	})
}
