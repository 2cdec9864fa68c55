package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/bizreport/internal/document"
	"github.com/nao1215/bizreport/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface so the command can pick the text or
// Markdown rendering and the destination (stdout or a file) independently.
type Writer interface {
	// Write renders the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// FaultLine returns the single line describing the fault that stopped the
// analysis, or "" when the report has none.
func FaultLine(report *model.Report) string {
	err := report.Err
	if err == nil {
		return ""
	}

	var syntaxErr *document.SyntaxError
	switch {
	case errors.Is(err, document.ErrFileNotFound):
		return fmt.Sprintf("Error: File '%s' not found", report.Path)
	case errors.As(err, &syntaxErr):
		return "Error: Invalid JSON in file - " + syntaxErr.Error()
	default:
		return "Error: " + err.Error()
	}
}

// display returns the text of v, or placeholder when v is absent.
func display(v document.Value, placeholder string) string {
	if !v.Exists() {
		return placeholder
	}
	return v.String()
}

// claimedTotal returns the declared business count as printed in the header.
func claimedTotal(report *model.Report) string {
	if report.Header == nil {
		return model.PlaceholderHeader
	}
	return display(report.Header.DeclaredTotal, model.PlaceholderHeader)
}

// demoFlag returns the summary's demo/test flag text.
func demoFlag(s *model.Summary) string {
	if !s.HasRecords {
		return model.PlaceholderCategory
	}
	return fmt.Sprintf("%t", s.IsDemo)
}

// dataVersion returns the summary's data version text.
func dataVersion(s *model.Summary) string {
	if !s.HasRecords {
		return model.PlaceholderCategory
	}
	return display(s.DataVersion, model.PlaceholderCategory)
}
