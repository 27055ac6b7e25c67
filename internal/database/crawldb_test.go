package database

import (
	"context"
	"testing"
	"time"

	"github.com/contactscan/contactscan/internal/model"
)

func openTestDB(t *testing.T) *CrawlDB {
	t.Helper()

	cdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		if err := cdb.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return cdb
}

func sampleResult(runID, seedURL string, startedAt time.Time) *model.CrawlResult {
	return &model.CrawlResult{
		RunID:   runID,
		SeedURL: seedURL,
		CrawlStats: model.CrawlStats{
			FinalURL:     seedURL + "/",
			PagesVisited: 4,
			PagesFailed:  1,
			StartedAt:    startedAt,
			Elapsed:      1500 * time.Millisecond,
			State:        model.StateCompleted,
			StateText:    "completed",
		},
		Findings: []model.Finding{
			{Type: model.FindingEmail, Value: "info@example.com", SourceURL: seedURL + "/contact"},
			{Type: model.FindingPhone, Value: "+15551234567", SourceURL: seedURL + "/contact"},
		},
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database when allowed", func(t *testing.T) {
		t.Parallel()
		openTestDB(t)
	})

	t.Run("fails when database missing and creation disabled", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

func TestSaveAndGetRun(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	startedAt := time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	result := sampleResult("run-1", "https://example.com", startedAt)

	if err := cdb.SaveCrawlResult(context.Background(), result); err != nil {
		t.Fatalf("SaveCrawlResult() error = %v", err)
	}

	got, err := cdb.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got == nil {
		t.Fatal("GetRun() returned nil for stored run")
	}

	if got.SeedURL != "https://example.com" {
		t.Errorf("SeedURL = %q", got.SeedURL)
	}
	if got.FinalURL != "https://example.com/" {
		t.Errorf("FinalURL = %q", got.FinalURL)
	}
	if got.State != model.StateCompleted {
		t.Errorf("State = %v, want StateCompleted", got.State)
	}
	if got.PagesVisited != 4 || got.PagesFailed != 1 {
		t.Errorf("pages = (%d, %d), want (4, 1)", got.PagesVisited, got.PagesFailed)
	}
	if !got.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, startedAt)
	}
	if got.Elapsed != 1500*time.Millisecond {
		t.Errorf("Elapsed = %v", got.Elapsed)
	}
	if len(got.Findings) != 2 {
		t.Fatalf("Findings = %v, want 2 entries", got.Findings)
	}
	if got.Findings[0].Type != model.FindingEmail || got.Findings[0].Value != "info@example.com" {
		t.Errorf("first finding = %+v", got.Findings[0])
	}
}

func TestGetRunMissing(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	got, err := cdb.GetRun(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got != nil {
		t.Errorf("GetRun() = %+v, want nil", got)
	}
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	base := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	for i, run := range []struct {
		id   string
		seed string
	}{
		{"run-a", "https://example.com"},
		{"run-b", "https://example.com"},
		{"run-c", "https://other.example"},
	} {
		result := sampleResult(run.id, run.seed, base.Add(time.Duration(i)*time.Hour))
		if err := cdb.SaveCrawlResult(context.Background(), result); err != nil {
			t.Fatalf("SaveCrawlResult(%s) error = %v", run.id, err)
		}
	}

	t.Run("returns all runs newest first", func(t *testing.T) {
		runs, err := cdb.ListRuns(context.Background(), "")
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("ListRuns() = %d runs, want 3", len(runs))
		}
		if runs[0].RunID != "run-c" || runs[2].RunID != "run-a" {
			t.Errorf("unexpected order: %s, %s, %s", runs[0].RunID, runs[1].RunID, runs[2].RunID)
		}
		if runs[0].FindingCount != 2 {
			t.Errorf("FindingCount = %d, want 2", runs[0].FindingCount)
		}
	})

	t.Run("filters by seed url", func(t *testing.T) {
		runs, err := cdb.ListRuns(context.Background(), "https://example.com")
		if err != nil {
			t.Fatalf("ListRuns() error = %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("ListRuns() = %d runs, want 2", len(runs))
		}
		for _, run := range runs {
			if run.SeedURL != "https://example.com" {
				t.Errorf("unexpected seed %q", run.SeedURL)
			}
		}
	})

	t.Run("lists distinct seeds", func(t *testing.T) {
		seeds, err := cdb.ListSeeds(context.Background())
		if err != nil {
			t.Fatalf("ListSeeds() error = %v", err)
		}
		if len(seeds) != 2 {
			t.Errorf("ListSeeds() = %v, want 2 seeds", seeds)
		}
	})
}

func TestSaveCrawlResultDuplicateFindings(t *testing.T) {
	t.Parallel()

	cdb := openTestDB(t)
	result := sampleResult("run-1", "https://example.com", time.Now().UTC())
	result.Findings = append(result.Findings, result.Findings[0])

	if err := cdb.SaveCrawlResult(context.Background(), result); err != nil {
		t.Fatalf("SaveCrawlResult() error = %v", err)
	}

	got, err := cdb.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if len(got.Findings) != 2 {
		t.Errorf("Findings = %d, want duplicate row dropped", len(got.Findings))
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "rfc3339 nano", input: "2026-08-24T10:30:00.123456789Z"},
		{name: "rfc3339", input: "2026-08-24T10:30:00Z"},
		{name: "sqlite default", input: "2026-08-24 10:30:00"},
		{name: "garbage", input: "not-a-time", zero: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q).IsZero() = %v, want %v", tt.input, got.IsZero(), tt.zero)
			}
		})
	}
}
