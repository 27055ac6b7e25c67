package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestEXIFAnalyzer(t *testing.T) {
	t.Parallel()

	t.Run("requires http client", func(t *testing.T) {
		t.Parallel()

		a := NewEXIFAnalyzer(nil)
		_, err := a.Analyze(context.Background(), "https://example.com/", []string{"https://example.com/a.jpg"})
		if !errors.Is(err, ErrNoHTTPClient) {
			t.Errorf("expected ErrNoHTTPClient, got %v", err)
		}
	})

	t.Run("only fetches same-site exif formats", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, "not a real image")
		}))
		defer server.Close()

		a := NewEXIFAnalyzer(server.Client())
		findings, err := a.Analyze(context.Background(), server.URL+"/", []string{
			server.URL + "/photo.jpg",         // fetched: same site, jpeg
			server.URL + "/logo.png",          // skipped: no EXIF in png
			"https://other.example/photo.jpg", // skipped: different site
		})
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected 1 image fetch, got %d", got)
		}
		// The fetched body carries no EXIF, so no findings either
		if len(findings) != 0 {
			t.Errorf("expected no findings, got %v", findings)
		}
	})

	t.Run("respects max images cap", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, "nope")
		}))
		defer server.Close()

		a := NewEXIFAnalyzer(server.Client(), WithMaxImages(2))
		urls := []string{
			server.URL + "/a.jpg",
			server.URL + "/b.jpg",
			server.URL + "/c.jpg",
		}
		if _, err := a.Analyze(context.Background(), server.URL+"/", urls); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got := requests.Load(); got != 2 {
			t.Errorf("expected 2 image fetches, got %d", got)
		}
	})

	t.Run("deduplicates image urls", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int64
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requests.Add(1)
			fmt.Fprint(w, "nope")
		}))
		defer server.Close()

		a := NewEXIFAnalyzer(server.Client())
		urls := []string{
			server.URL + "/a.jpg",
			server.URL + "/a.jpg",
		}
		if _, err := a.Analyze(context.Background(), server.URL+"/", urls); err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if got := requests.Load(); got != 1 {
			t.Errorf("expected 1 image fetch, got %d", got)
		}
	})
}
