package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/contactscan/contactscan/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no findings are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with source URLs per finding.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeSummary(&sb, result)
	w.writeFindings(&sb, result)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CONTACTSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Seed URL:       %s\n", result.SeedURL))
	if result.FinalURL != "" && result.FinalURL != result.SeedURL {
		sb.WriteString(fmt.Sprintf("Final URL:      %s\n", result.FinalURL))
	}
	sb.WriteString(fmt.Sprintf("Crawl Date:     %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Pages Visited:  %d\n", result.PagesVisited))
	sb.WriteString(fmt.Sprintf("Pages Failed:   %d\n", result.PagesFailed))

	if result.Aborted() {
		sb.WriteString("Status:         ABORTED (partial results)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the finding-type summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDING SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	counts := result.CountByType()
	sb.WriteString(fmt.Sprintf("  EMAILS:    %d\n", counts[model.FindingEmail]))
	sb.WriteString(fmt.Sprintf("  PHONES:    %d\n", counts[model.FindingPhone]))
	sb.WriteString(fmt.Sprintf("  SOCIALS:   %d\n", counts[model.FindingSocial]))
	sb.WriteString(fmt.Sprintf("  METADATA:  %d\n", counts[model.FindingMetadata]))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  TOTAL:     %d findings\n", len(result.Findings)))
	sb.WriteString("\n")
}

// writeFindings writes all findings grouped by type.
func (w *SimpleWriter) writeFindings(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Findings) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FINDINGS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, group := range findingOrder {
		findings := findingsOfType(result, group.typ)
		if len(findings) == 0 && !w.showEmpty {
			continue
		}

		sb.WriteString(fmt.Sprintf("[%s]\n", strings.ToUpper(string(group.typ))))
		if len(findings) == 0 {
			sb.WriteString("  No findings\n\n")
			continue
		}

		for _, f := range findings {
			sb.WriteString(fmt.Sprintf("  * %s\n", f.Value))
			if w.verbose && f.SourceURL != "" {
				sb.WriteString(fmt.Sprintf("    Source: %s\n", f.SourceURL))
			}
		}
		sb.WriteString("\n")
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by contactscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
