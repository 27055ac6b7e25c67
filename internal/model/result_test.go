package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestCrawlStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		state CrawlState
		want  string
	}{
		{name: "idle", state: StateIdle, want: "idle"},
		{name: "running", state: StateRunning, want: "running"},
		{name: "completed", state: StateCompleted, want: "completed"},
		{name: "aborted", state: StateAborted, want: "aborted"},
		{name: "unknown", state: CrawlState(99), want: "unknown"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.state.String(); got != tt.want {
				t.Errorf("CrawlState.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCrawlResultAborted(t *testing.T) {
	t.Parallel()

	completed := &CrawlResult{CrawlStats: CrawlStats{State: StateCompleted}}
	if completed.Aborted() {
		t.Error("Aborted() = true for completed crawl, want false")
	}

	aborted := &CrawlResult{CrawlStats: CrawlStats{State: StateAborted}}
	if !aborted.Aborted() {
		t.Error("Aborted() = false for aborted crawl, want true")
	}
}

func TestCrawlResultCountByType(t *testing.T) {
	t.Parallel()

	result := &CrawlResult{
		Findings: []Finding{
			{Type: FindingEmail, Value: "info@example.com"},
			{Type: FindingEmail, Value: "sales@example.com"},
			{Type: FindingPhone, Value: "+15551234567"},
			{Type: FindingSocial, Value: "https://github.com/example"},
		},
	}

	counts := result.CountByType()
	if counts[FindingEmail] != 2 {
		t.Errorf("CountByType()[email] = %d, want 2", counts[FindingEmail])
	}
	if counts[FindingPhone] != 1 {
		t.Errorf("CountByType()[phone] = %d, want 1", counts[FindingPhone])
	}
	if counts[FindingSocial] != 1 {
		t.Errorf("CountByType()[social] = %d, want 1", counts[FindingSocial])
	}
	if counts[FindingMetadata] != 0 {
		t.Errorf("CountByType()[metadata] = %d, want 0", counts[FindingMetadata])
	}
}

func TestCrawlResultJSON(t *testing.T) {
	t.Parallel()

	result := &CrawlResult{
		RunID:   "f47ac10b-58cc-4372-a567-0e02b2c3d479",
		SeedURL: "https://example.com",
		CrawlStats: CrawlStats{
			FinalURL:     "https://example.com/",
			PagesVisited: 3,
			PagesFailed:  1,
			StartedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
			Elapsed:      5 * time.Second,
			State:        StateCompleted,
			StateText:    StateCompleted.String(),
		},
		Findings: []Finding{
			{Type: FindingEmail, Value: "info@example.com", SourceURL: "https://example.com/"},
		},
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	got := string(data)
	for _, want := range []string{
		`"run_id":"f47ac10b-58cc-4372-a567-0e02b2c3d479"`,
		`"seed_url":"https://example.com"`,
		`"state":"completed"`,
		`"pages_visited":3`,
		`"pages_failed":1`,
		`"type":"email"`,
		`"source_url":"https://example.com/"`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("marshaled result missing %s in %s", want, got)
		}
	}
}
