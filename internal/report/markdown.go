package report

import (
	"io"
	"strconv"

	"github.com/nao1215/bizreport/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MarkdownWriter outputs reports in Markdown format.
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

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)
	title := cases.Title(language.English)

	md.H1("Business Data Analysis")
	md.PlainText("")

	if report.Header != nil {
		w.writeHeader(md, report)
	}
	if report.Metadata != nil {
		w.writeMetadata(md, report.Metadata)
	}
	if report.Businesses != nil {
		w.writeBusinesses(md, title, report.Businesses)
	}
	if report.Summary != nil {
		w.writeSummary(md, report)
	}
	if line := FaultLine(report); line != "" {
		md.Cautionf("%s", line)
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the property table of top-level fields.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"File", "`" + report.Path + "`"},
			{"Version", display(report.Header.Version, model.PlaceholderHeader)},
			{"Generated", display(report.Header.Generated, model.PlaceholderHeader)},
			{"Total Businesses (claimed)", claimedTotal(report)},
		},
	})
	md.PlainText("")
}

// writeMetadata writes the description and the data quality flags.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, meta *model.Metadata) {
	md.H2("Metadata")
	md.PlainText("")
	md.PlainTextf("**Description:** %s", display(meta.Description, model.PlaceholderRecord))
	md.PlainText("")

	if !meta.HasDataQuality || len(meta.DataQuality) == 0 {
		return
	}

	flags := make([]string, len(meta.DataQuality))
	for i, m := range meta.DataQuality {
		flags[i] = "`" + m.Key + "`: " + m.Value.String()
	}
	md.PlainText("**Data Quality Flags:**")
	md.PlainText("")
	md.BulletList(flags...)
	md.PlainText("")
}

// writeBusinesses writes one subsection per produced breakdown.
func (w *MarkdownWriter) writeBusinesses(md *markdown.Markdown, title cases.Caser, b *model.Businesses) {
	md.H2("Businesses")
	md.PlainText("")
	md.PlainTextf("Actual count in array: **%d**", b.Count)
	md.PlainText("")

	if b.Sample != nil && len(b.Sample.Entries) > 0 {
		rows := make([][]string, len(b.Sample.Entries))
		for i, e := range b.Sample.Entries {
			rows[i] = []string{
				strconv.Itoa(e.Position),
				display(e.ID, model.PlaceholderRecord),
				display(e.Name, model.PlaceholderRecord),
			}
		}
		md.PlainText("### First " + strconv.Itoa(b.Sample.Limit) + " Businesses")
		md.PlainText("")
		md.Table(markdown.TableSet{Header: []string{"#", "ID", "Name"}, Rows: rows})
		md.PlainText("")
	}

	if b.IDPatterns != nil {
		w.writeDistribution(md, title, "ID Patterns", "id pattern", b.IDPatterns)
		w.writePieChart(md, b.IDPatterns)
	}
	if b.Industries != nil {
		w.writeDistribution(md, title, "Industries (top "+strconv.Itoa(b.Industries.Limit)+")", "industry", b.Industries)
	}
	if b.Neighborhoods != nil {
		w.writeDistribution(md, title, "Neighborhoods (top "+strconv.Itoa(b.Neighborhoods.Limit)+")", "neighborhood", b.Neighborhoods)
	}
	if b.Duplicates != nil {
		w.writeDuplicates(md, b.Duplicates)
	}
	if b.Structure != nil {
		w.writeStructure(md, b.Structure)
	}
	if b.Ages != nil {
		w.writeDistribution(md, title, "Business Age Distribution", "business age", b.Ages)
	}
}

// writeDistribution writes a count table for one breakdown.
func (w *MarkdownWriter) writeDistribution(
	md *markdown.Markdown,
	title cases.Caser,
	heading, field string,
	d *model.Distribution,
) {
	md.PlainText("### " + heading)
	md.PlainText("")

	if len(d.Buckets) == 0 {
		md.PlainText("No records.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(d.Buckets))
	for i, bucket := range d.Buckets {
		rows[i] = []string{bucket.Label(), strconv.Itoa(bucket.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{title.String(field), "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart for the ID pattern split.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, d *model.Distribution) {
	if d.Total == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("ID Pattern Distribution"),
		piechart.WithShowData(true),
	)
	for _, bucket := range d.Buckets {
		chart.LabelAndIntValue(bucket.Label(), uint64(bucket.Count)) //nolint:gosec // Counts are never negative
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeDuplicates writes the duplicate name table.
func (w *MarkdownWriter) writeDuplicates(md *markdown.Markdown, d *model.DuplicateCheck) {
	md.PlainText("### Duplicate Check")
	md.PlainText("")

	if !d.HasDuplicates() {
		md.PlainText("No duplicate names found.")
		md.PlainText("")
		return
	}

	md.PlainTextf("Found **%d** duplicate business names.", d.Distinct)
	md.PlainText("")

	rows := make([][]string, len(d.Names))
	for i, bucket := range d.Names {
		rows[i] = []string{"'" + bucket.Label() + "'", strconv.Itoa(bucket.Count)}
	}
	md.Table(markdown.TableSet{Header: []string{"Name", "Appears"}, Rows: rows})
	md.PlainText("")
}

// writeStructure writes the first record's keys and address.
func (w *MarkdownWriter) writeStructure(md *markdown.Markdown, s *model.RecordShape) {
	md.PlainText("### Structure of First Business Object")
	md.PlainText("")
	md.PlainTextf("Top-level keys (%d total):", s.KeyCount)
	md.PlainText("")

	keys := make([]string, len(s.Keys))
	for i, key := range s.Keys {
		keys[i] = "`" + key + "`"
	}
	if len(keys) > 0 {
		md.BulletList(keys...)
		md.PlainText("")
	}

	if s.HasAddress {
		rows := make([][]string, len(s.Address))
		for i, m := range s.Address {
			rows[i] = []string{m.Key, m.Value.String()}
		}
		address := markdown.NewMarkdown(io.Discard)
		address.Table(markdown.TableSet{Header: []string{"Key", "Value"}, Rows: rows})
		md.Details("Address structure", address.String())
		md.PlainText("")
	}

	md.PlainTextf("Has embedding field in any business: **%t**", s.HasEmbedding)
	md.PlainText("")
}

// writeSummary writes the summary table and the count alert.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.Report) {
	s := report.Summary

	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Check", "Result"},
		Rows: [][]string{
			{"File claims", display(s.DeclaredTotal, model.PlaceholderClaimed)},
			{"Actually contains", strconv.Itoa(s.ActualCount)},
			{"Demo/test data", demoFlag(s)},
			{"Data version", dataVersion(s)},
		},
	})
	md.PlainText("")

	_, whole := report.DeclaredCount()
	switch {
	case report.CountMismatch():
		md.Warningf("File claims %s businesses but contains %d.",
			display(s.DeclaredTotal, model.PlaceholderClaimed), s.ActualCount)
	case whole:
		md.Tip("Declared business count matches the array length.")
	default:
		md.Note("File does not declare a numeric business count.")
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by bizreport*")
}
