package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/bizreport/internal/model"
)

// bannerWidth is the width of the "=" banner lines.
const bannerWidth = 60

// SimpleWriter outputs the plain text report.
// Sections that were not produced are skipped; a fault line, if any, is
// written after whatever sections were produced.
type SimpleWriter struct {
	baseWriter
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer) *SimpleWriter {
	return &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in plain text.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	if report.Header != nil {
		w.writeHeader(&sb, report)
	}
	if report.Metadata != nil {
		w.writeMetadata(&sb, report.Metadata)
	}
	if report.Businesses != nil {
		w.writeBusinesses(&sb, report.Businesses)
	}
	if report.Summary != nil {
		w.writeSummary(&sb, report.Summary)
	}
	if line := FaultLine(report); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return w.output.Write([]byte(sb.String()))
}

func banner(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", bannerWidth))
	sb.WriteString("\n")
}

// writeHeader writes the title banner and the top-level fields.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	banner(sb)
	sb.WriteString("IMPROVED DEMO DATA ANALYSIS\n")
	banner(sb)

	fmt.Fprintf(sb, "\nFile: %s\n", report.Path)
	fmt.Fprintf(sb, "Version: %s\n", display(report.Header.Version, model.PlaceholderHeader))
	fmt.Fprintf(sb, "Generated: %s\n", display(report.Header.Generated, model.PlaceholderHeader))
	fmt.Fprintf(sb, "Total Businesses (claimed): %s\n", claimedTotal(report))
}

// writeMetadata writes the description and data quality flags.
func (w *SimpleWriter) writeMetadata(sb *strings.Builder, meta *model.Metadata) {
	sb.WriteString("\nMETADATA:\n")
	fmt.Fprintf(sb, "  Description: %s\n", display(meta.Description, model.PlaceholderRecord))

	if !meta.HasDataQuality {
		return
	}
	sb.WriteString("  Data Quality Flags:\n")
	for _, m := range meta.DataQuality {
		fmt.Fprintf(sb, "    - %s: %s\n", m.Key, m.Value.String())
	}
}

// writeBusinesses writes every breakdown that was produced.
func (w *SimpleWriter) writeBusinesses(sb *strings.Builder, b *model.Businesses) {
	sb.WriteString("\nBUSINESSES ARRAY:\n")
	fmt.Fprintf(sb, "  Actual count in array: %d\n", b.Count)

	if b.Sample != nil {
		fmt.Fprintf(sb, "\n  First %d businesses:\n", b.Sample.Limit)
		for _, e := range b.Sample.Entries {
			fmt.Fprintf(sb, "    %d. ID: %s, Name: %s\n",
				e.Position,
				display(e.ID, model.PlaceholderRecord),
				display(e.Name, model.PlaceholderRecord),
			)
		}
	}

	if b.IDPatterns != nil {
		sb.WriteString("\n  ID Patterns:\n")
		writeBuckets(sb, b.IDPatterns.Buckets)
	}
	if b.Industries != nil {
		fmt.Fprintf(sb, "\n  Industries (top %d):\n", b.Industries.Limit)
		writeBuckets(sb, b.Industries.Buckets)
	}
	if b.Neighborhoods != nil {
		fmt.Fprintf(sb, "\n  Neighborhoods (top %d):\n", b.Neighborhoods.Limit)
		writeBuckets(sb, b.Neighborhoods.Buckets)
	}
	if b.Duplicates != nil {
		w.writeDuplicates(sb, b.Duplicates)
	}
	if b.Structure != nil {
		w.writeStructure(sb, b.Structure)
	}
	if b.Ages != nil {
		sb.WriteString("\n  Business Age Distribution:\n")
		for _, bucket := range b.Ages.Buckets {
			fmt.Fprintf(sb, "    - Age %s: %d businesses\n", bucket.Label(), bucket.Count)
		}
	}
}

func writeBuckets(sb *strings.Builder, buckets []model.Bucket) {
	for _, bucket := range buckets {
		fmt.Fprintf(sb, "    - %s: %d\n", bucket.Label(), bucket.Count)
	}
}

// writeDuplicates writes the duplicate name check.
func (w *SimpleWriter) writeDuplicates(sb *strings.Builder, d *model.DuplicateCheck) {
	sb.WriteString("\n  Duplicate Check:\n")
	if !d.HasDuplicates() {
		sb.WriteString("    No duplicate names found\n")
		return
	}

	fmt.Fprintf(sb, "    Found %d duplicate business names:\n", d.Distinct)
	for _, bucket := range d.Names {
		fmt.Fprintf(sb, "      - '%s': appears %d times\n", bucket.Label(), bucket.Count)
	}
}

// writeStructure writes the first record's keys, address and the
// embedding check.
func (w *SimpleWriter) writeStructure(sb *strings.Builder, s *model.RecordShape) {
	sb.WriteString("\n  Structure of first business object:\n")
	fmt.Fprintf(sb, "    Top-level keys (%d total):\n", s.KeyCount)
	for _, key := range s.Keys {
		fmt.Fprintf(sb, "      - %s\n", key)
	}

	if s.HasAddress {
		sb.WriteString("\n    Address structure:\n")
		for _, m := range s.Address {
			fmt.Fprintf(sb, "      - %s: %s\n", m.Key, m.Value.String())
		}
	}

	fmt.Fprintf(sb, "\n    Has embedding field in any business: %t\n", s.HasEmbedding)
}

// writeSummary writes the closing footer.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, s *model.Summary) {
	sb.WriteString("\n")
	banner(sb)
	sb.WriteString("SUMMARY:\n")
	fmt.Fprintf(sb, "  - File claims %s businesses\n", display(s.DeclaredTotal, model.PlaceholderClaimed))
	fmt.Fprintf(sb, "  - Actually contains %d business objects\n", s.ActualCount)
	fmt.Fprintf(sb, "  - Data appears to be demo/test data: %s\n", demoFlag(s))
	fmt.Fprintf(sb, "  - Data version: %s\n", dataVersion(s))
	banner(sb)
}
