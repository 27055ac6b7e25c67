package report

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/contactscan/contactscan/internal/model"
)

// ErrUnsupportedFormat is returned by ForPath for file extensions that
// no writer handles.
var ErrUnsupportedFormat = errors.New("unsupported report format")

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.CrawlResult) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.CrawlResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ForPath creates the writer matching the file extension of path and
// opens the file it writes to. The caller closes the returned file.
// Supported extensions are .json, .csv and .md.
func ForPath(path string) (Writer, io.Closer, error) {
	var build func(io.Writer) Writer

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		build = func(out io.Writer) Writer { return NewJSONWriter(out, WithPrettyPrint()) }
	case ".csv":
		build = func(out io.Writer) Writer { return NewCSVWriter(out) }
	case ".md":
		build = func(out io.Writer) Writer { return NewMarkdownWriter(out) }
	default:
		return nil, nil, ErrUnsupportedFormat
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return build(f), f, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
