// Package store accumulates findings across a crawl and seals them into
// a final crawl result.
package store

import (
	"sync"

	"github.com/contactscan/contactscan/internal/model"
)

// Store collects findings during a crawl, deduplicating on (type, value).
// The first finding with a given key wins, so SourceURL always points at
// the page where the value was first seen. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	findings []model.Finding
	seen     map[string]bool
}

// New creates an empty store.
func New() *Store {
	return &Store{
		findings: make([]model.Finding, 0),
		seen:     make(map[string]bool),
	}
}

// Add records the given findings, skipping any whose (type, value) key
// was already seen, and returns how many were new.
func (s *Store) Add(findings ...model.Finding) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, f := range findings {
		key := f.Key()
		if s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.findings = append(s.findings, f)
		added++
	}
	return added
}

// Len returns the number of findings collected so far.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.findings)
}

// Findings returns a copy of the collected findings in first-seen order.
func (s *Store) Findings() []model.Finding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Finding(nil), s.findings...)
}

// Finalize seals the store into a crawl result. The store can keep
// accepting findings afterwards, but the returned result holds its own
// copy and does not change.
func (s *Store) Finalize(runID, seedURL string, stats model.CrawlStats) *model.CrawlResult {
	stats.StateText = stats.State.String()
	return &model.CrawlResult{
		RunID:      runID,
		SeedURL:    seedURL,
		CrawlStats: stats,
		Findings:   s.Findings(),
	}
}
