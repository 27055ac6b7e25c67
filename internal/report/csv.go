package report

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/contactscan/contactscan/internal/model"
)

// csvHeader is the fixed column layout of CSV exports.
var csvHeader = []string{"type", "value", "source_url"}

// CSVWriter outputs findings as flat CSV rows, one finding per row.
// This format is designed for spreadsheets and quick grepping.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result's findings in CSV format with a header row.
func (w *CSVWriter) Write(result *model.CrawlResult) (int, error) {
	var buf bytes.Buffer

	cw := csv.NewWriter(&buf)
	if err := cw.Write(csvHeader); err != nil {
		return 0, err
	}
	for _, f := range result.Findings {
		if err := cw.Write([]string{string(f.Type), f.Value, f.SourceURL}); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
