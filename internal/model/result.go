package model

import "time"

// CrawlState describes the lifecycle of a crawl.
//
// A crawl moves from StateIdle to StateRunning when the seed is enqueued,
// and terminates in either StateCompleted (budget or frontier exhausted)
// or StateAborted (external cancellation). The terminal states are final:
// once reached, the CrawlResult is sealed and no longer mutated.
type CrawlState int

// Crawl lifecycle states.
const (
	// StateIdle means the crawl has not started yet.
	StateIdle CrawlState = iota

	// StateRunning means the crawl loop is dispatching pages.
	StateRunning

	// StateCompleted means the crawl terminated normally: the frontier
	// drained or the page budget was reached.
	StateCompleted

	// StateAborted means the crawl was cancelled externally. Findings
	// collected before cancellation are preserved.
	StateAborted
)

// String returns the human-readable state name.
func (s CrawlState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CrawlStats holds the page-level statistics of one crawl.
type CrawlStats struct {
	// FinalURL is the seed URL after redirect resolution.
	FinalURL string `json:"final_url"`

	// PagesVisited is the number of pages fetched successfully.
	PagesVisited int `json:"pages_visited"`

	// PagesFailed is the number of fetch attempts that failed.
	// Failures are never fatal to the crawl; they are only counted.
	PagesFailed int `json:"pages_failed"`

	// StartedAt is when the crawl began dispatching.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration `json:"elapsed"`

	// State is the terminal crawl state.
	State CrawlState `json:"-"`

	// StateText is the human-readable state for serialization.
	StateText string `json:"state"`
}

// CrawlResult is the final, deduplicated outcome of one crawl.
// It is created by the result store when the crawl terminates and is
// immutable from that point on.
type CrawlResult struct {
	// RunID uniquely identifies this crawl run.
	// Used to correlate database rows with exported reports.
	RunID string `json:"run_id"`

	// SeedURL is the URL the crawl was started from, as given by the user.
	SeedURL string `json:"seed_url"`

	// CrawlStats embeds the page statistics for this run.
	CrawlStats

	// Findings is the deduplicated sequence of extracted facts, in
	// first-discovery order.
	Findings []Finding `json:"findings"`
}

// Aborted reports whether the crawl was cancelled before finishing.
func (r *CrawlResult) Aborted() bool {
	return r.State == StateAborted
}

// CountByType returns the number of findings per finding type.
func (r *CrawlResult) CountByType() map[FindingType]int {
	counts := make(map[FindingType]int)
	for _, f := range r.Findings {
		counts[f.Type]++
	}
	return counts
}
