package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/contactscan/contactscan/internal/model"
)

func testResult() *model.CrawlResult {
	return &model.CrawlResult{
		RunID:   "run-1",
		SeedURL: "https://example.com",
		CrawlStats: model.CrawlStats{
			FinalURL:     "https://www.example.com/",
			PagesVisited: 5,
			PagesFailed:  1,
			StartedAt:    time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
			Elapsed:      3 * time.Second,
			State:        model.StateCompleted,
			StateText:    "completed",
		},
		Findings: []model.Finding{
			{Type: model.FindingEmail, Value: "info@example.com", SourceURL: "https://www.example.com/contact"},
			{Type: model.FindingPhone, Value: "+15551234567", SourceURL: "https://www.example.com/contact"},
			{Type: model.FindingSocial, Value: "https://github.com/example", SourceURL: "https://www.example.com/"},
			{Type: model.FindingMetadata, Value: "title: Example", SourceURL: "https://www.example.com/"},
		},
	}
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes findings array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).Write(testResult()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}

		var findings []map[string]string
		if err := json.Unmarshal(buf.Bytes(), &findings); err != nil {
			t.Fatalf("output is not a JSON array: %v", err)
		}
		if len(findings) != 4 {
			t.Fatalf("expected 4 findings, got %d", len(findings))
		}
		first := findings[0]
		if first["type"] != "email" || first["value"] != "info@example.com" {
			t.Errorf("unexpected first finding: %v", first)
		}
		if first["source_url"] != "https://www.example.com/contact" {
			t.Errorf("source_url = %q", first["source_url"])
		}
	})

	t.Run("empty result yields empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		result := testResult()
		result.Findings = nil
		if _, err := NewJSONWriter(&buf).Write(result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("output = %q, want []", got)
		}
	})

	t.Run("pretty print indents output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testResult()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "1.2.3").Write(testResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var wrapped struct {
		Version string `json:"version"`
		Result  struct {
			RunID    string `json:"run_id"`
			SeedURL  string `json:"seed_url"`
			State    string `json:"state"`
			Findings []any  `json:"findings"`
		} `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if wrapped.Version != "1.2.3" {
		t.Errorf("version = %q", wrapped.Version)
	}
	if wrapped.Result.RunID != "run-1" || wrapped.Result.State != "completed" {
		t.Errorf("result metadata = %+v", wrapped.Result)
	}
	if len(wrapped.Result.Findings) != 4 {
		t.Errorf("findings = %d, want 4", len(wrapped.Result.Findings))
	}
}

func TestCSVWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewCSVWriter(&buf).Write(testResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("expected header + 4 rows, got %d records", len(records))
	}
	if got := strings.Join(records[0], ","); got != "type,value,source_url" {
		t.Errorf("header = %q", got)
	}
	if records[1][0] != "email" || records[1][1] != "info@example.com" {
		t.Errorf("first row = %v", records[1])
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"# ContactScan Report",
		"## Finding Summary",
		"Email Addresses",
		"info@example.com",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("shows summary and findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(testResult()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		out := buf.String()

		for _, want := range []string{
			"CONTACTSCAN REPORT",
			"TOTAL:     4 findings",
			"* info@example.com",
			"* +15551234567",
		} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q", want)
			}
		}
		if strings.Contains(out, "Source:") {
			t.Error("source URLs should only appear in verbose mode")
		}
	})

	t.Run("verbose shows source urls", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf, WithVerbose(true)).Write(testResult()); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "Source: https://www.example.com/contact") {
			t.Error("verbose output missing source URL")
		}
	})

	t.Run("aborted crawl is labeled", func(t *testing.T) {
		t.Parallel()

		result := testResult()
		result.State = model.StateAborted

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(result); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !strings.Contains(buf.String(), "ABORTED") {
			t.Error("aborted status not shown")
		}
	})
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewJSONWriter(&a), NewCSVWriter(&b))
	if _, err := mw.Write(testResult()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if a.Len() == 0 || b.Len() == 0 {
		t.Error("both writers should receive output")
	}
}

func TestForPath(t *testing.T) {
	t.Parallel()

	t.Run("dispatches on extension", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"out.json", "out.csv", "out.MD"} {
			w, closer, err := ForPath(filepath.Join(dir, name))
			if err != nil {
				t.Fatalf("ForPath(%s) error = %v", name, err)
			}
			if _, err := w.Write(testResult()); err != nil {
				t.Errorf("Write(%s) error = %v", name, err)
			}
			if err := closer.Close(); err != nil {
				t.Errorf("Close(%s) error = %v", name, err)
			}
		}
	})

	t.Run("rejects unknown extensions", func(t *testing.T) {
		t.Parallel()

		if _, _, err := ForPath("report.xml"); !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}
