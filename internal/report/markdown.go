package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/contactscan/contactscan/internal/model"
)

// findingOrder fixes the section order of grouped findings.
var findingOrder = []struct {
	typ    model.FindingType
	header string
}{
	{model.FindingEmail, "Email Addresses"},
	{model.FindingPhone, "Phone Numbers"},
	{model.FindingSocial, "Social Profiles"},
	{model.FindingMetadata, "Page Metadata"},
}

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeFindings(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("ContactScan Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed URL", "`" + result.SeedURL + "`"},
			{"Final URL", "`" + result.FinalURL + "`"},
			{"Crawl Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(result.PagesVisited)},
			{"Pages Failed", strconv.Itoa(result.PagesFailed)},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on the crawl state.
func statusText(result *model.CrawlResult) string {
	if result.Aborted() {
		return "⚠️ Aborted (partial results)"
	}
	return "✅ Complete"
}

// writeSummary writes the finding-type summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Finding Summary")
	md.PlainText("")

	counts := result.CountByType()
	rows := make([][]string, 0, len(findingOrder)+1)
	for _, group := range findingOrder {
		rows = append(rows, []string{group.header, strconv.Itoa(counts[group.typ])})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(len(result.Findings)) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Type", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.Findings) > 0 {
		w.writePieChart(md, counts)
	}

	switch {
	case result.Aborted():
		md.Warningf("Crawl was aborted before finishing; findings may be incomplete.")
	case len(result.Findings) == 0:
		md.Note("No contact signals were found on the crawled pages.")
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the finding distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, counts map[model.FindingType]int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Type Distribution"),
		piechart.WithShowData(true),
	)

	for _, group := range findingOrder {
		if n := counts[group.typ]; n > 0 {
			chart.LabelAndIntValue(group.header, uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFindings writes all findings grouped by type.
func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Findings")
	md.PlainText("")

	if len(result.Findings) == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	for _, group := range findingOrder {
		findings := findingsOfType(result, group.typ)
		if len(findings) == 0 {
			continue
		}

		md.PlainText("### " + group.header)
		md.PlainText("")

		rows := make([][]string, len(findings))
		for i, f := range findings {
			rows[i] = []string{
				truncateString(f.Value, 60),
				truncateString(f.SourceURL, 60),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Value", "Source"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// findingsOfType filters the result's findings by type, keeping order.
func findingsOfType(result *model.CrawlResult, typ model.FindingType) []model.Finding {
	findings := make([]model.Finding, 0)
	for _, f := range result.Findings {
		if f.Type == typ {
			findings = append(findings, f)
		}
	}
	return findings
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by contactscan*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
