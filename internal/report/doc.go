// Package report renders analysis reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: the plain text report printed by default
//   - MarkdownWriter: a Markdown rendering with tables and a mermaid chart
//
// Design decision: We separate report writing from report data structures
// (which are in the model package) so that a new output format does not
// touch the analysis code.
//
// Both writers render only the sections present in the report and end with
// the fault line when the analysis stopped early.
package report
