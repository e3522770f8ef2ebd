// Package output renders scan results: the fixed-template text report, plus
// JSON, SARIF, Markdown and HTML for tooling and CI summaries.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/garagon/perfscan/internal/scanner"
)

// Formatter is the interface for outputting scan results.
type Formatter interface {
	Format(w io.Writer, result *scanner.Result) error
}

// ForName returns the formatter registered under name. An empty name
// selects the text report.
func ForName(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "markdown", "md":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, json, sarif, markdown or html)", name)
	}
}

// WriteReport writes the text report verbatim to path, replacing any
// existing file.
func WriteReport(path, report string) error {
	if err := os.WriteFile(path, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
