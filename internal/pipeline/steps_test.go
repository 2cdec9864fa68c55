package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/bizreport/internal/config"
	"github.com/nao1215/bizreport/internal/document"
	"github.com/nao1215/bizreport/internal/model"
)

// discardLogger returns a logger that drops everything.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseDocument builds a document from JSON text.
func parseDocument(t *testing.T, content string) *document.Document {
	t.Helper()

	root, err := document.Parse([]byte(content))
	if err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return &document.Document{Path: "data.json", Root: root, Size: len(content)}
}

// analyze runs the standard pipeline with default limits over content.
func analyze(t *testing.T, content string) *model.Report {
	t.Helper()

	p := NewAnalysisPipeline(config.DefaultLimits(), WithLogger(discardLogger()))
	report := model.NewReport("data.json")
	_ = p.Execute(context.Background(), parseDocument(t, content), report) //nolint:errcheck // Error is stored in report
	return report
}

// labelCount is a comparable view of a bucket.
type labelCount struct {
	Label string
	Count int
}

func labels(buckets []model.Bucket) []labelCount {
	out := make([]labelCount, len(buckets))
	for i, b := range buckets {
		out[i] = labelCount{Label: b.Label(), Count: b.Count}
	}
	return out
}

// recordsJSON builds a businesses array from per-record JSON bodies.
func recordsJSON(bodies ...string) string {
	objs := make([]string, len(bodies))
	for i, b := range bodies {
		objs[i] = "{" + b + "}"
	}
	return `{"businesses": [` + strings.Join(objs, ",") + `]}`
}

func TestAnalysis_RoundTrip(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"totalBusinesses": 5, "businesses": [
		{"id":"prof-1","name":"A","industry":"Food"},
		{"id":"42","name":"A","industry":"Food"}
	]}`)

	if report.Err != nil {
		t.Fatalf("unexpected error: %v", report.Err)
	}
	if report.ActualCount() != 2 {
		t.Errorf("expected actual count 2, got %d", report.ActualCount())
	}
	if !report.CountMismatch() {
		t.Error("expected declared/actual mismatch")
	}

	b := report.Businesses
	wantIDs := []labelCount{{"Professional (prof-)", 1}, {"Numeric", 1}}
	if diff := cmp.Diff(wantIDs, labels(b.IDPatterns.Buckets)); diff != "" {
		t.Errorf("id patterns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]labelCount{{"Food", 2}}, labels(b.Industries.Buckets)); diff != "" {
		t.Errorf("industries mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]labelCount{{"Unknown", 2}}, labels(b.Neighborhoods.Buckets)); diff != "" {
		t.Errorf("neighborhoods mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]labelCount{{"A", 2}}, labels(b.Duplicates.Names)); diff != "" {
		t.Errorf("duplicates mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]labelCount{{"Unknown", 2}}, labels(b.Ages.Buckets)); diff != "" {
		t.Errorf("ages mismatch (-want +got):\n%s", diff)
	}

	wantSteps := NewAnalysisPipeline(config.DefaultLimits()).StepNames()
	if diff := cmp.Diff(wantSteps, report.PerformedSteps); diff != "" {
		t.Errorf("performed steps mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalysis_EmptyArray(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"businesses": []}`)

	if report.Err != nil {
		t.Fatalf("unexpected error: %v", report.Err)
	}
	b := report.Businesses
	if b == nil || b.Count != 0 {
		t.Fatalf("expected empty businesses section, got %+v", b)
	}
	if b.Structure != nil {
		t.Error("expected no structure section for an empty array")
	}
	if b.Ages != nil {
		t.Error("expected no age section for an empty array")
	}
	if len(b.Sample.Entries) != 0 {
		t.Errorf("expected no sample entries, got %d", len(b.Sample.Entries))
	}
	if b.Duplicates.HasDuplicates() {
		t.Error("expected no duplicates")
	}
	if report.Summary.HasRecords {
		t.Error("expected summary without records")
	}
}

func TestAnalysis_NoBusinessesField(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"version": "2.0", "totalBusinesses": 3}`)

	if report.Err != nil {
		t.Fatalf("unexpected error: %v", report.Err)
	}
	if report.Businesses != nil {
		t.Error("expected no businesses section")
	}
	if report.Summary == nil {
		t.Fatal("expected summary")
	}
	if report.Summary.ActualCount != 0 || report.Summary.HasRecords {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if report.Header.Version.String() != "2.0" {
		t.Errorf("expected version 2.0, got %q", report.Header.Version.String())
	}
}

func TestAnalysis_Faults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		content        string
		wantErr        error
		wantHeader     bool
		wantBusinesses bool
	}{
		{
			name:    "root is an array",
			content: `[1, 2]`,
			wantErr: document.ErrNotObject,
		},
		{
			name:       "businesses is not an array",
			content:    `{"businesses": {"id": "1"}}`,
			wantErr:    document.ErrNotArray,
			wantHeader: true,
		},
		{
			name:           "record is not an object",
			content:        `{"businesses": [{"id": "1"}, "oops"]}`,
			wantErr:        document.ErrNotObject,
			wantHeader:     true,
			wantBusinesses: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report := analyze(t, tt.content)

			if !errors.Is(report.Err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, report.Err)
			}
			if got := report.Header != nil; got != tt.wantHeader {
				t.Errorf("header present = %v, want %v", got, tt.wantHeader)
			}
			if got := report.Businesses != nil; got != tt.wantBusinesses {
				t.Errorf("businesses present = %v, want %v", got, tt.wantBusinesses)
			}
			if report.Summary != nil {
				t.Error("expected no summary after a fault")
			}
		})
	}
}

func TestAnalysis_FaultKeepsCount(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"businesses": [{"id": "1"}, 7, {"id": "2"}]}`)

	if report.ActualCount() != 3 {
		t.Errorf("expected count 3 to be kept, got %d", report.ActualCount())
	}
	if report.Businesses.Sample != nil {
		t.Error("expected no sample after the fault")
	}
	if !strings.Contains(report.Err.Error(), "business record 2") {
		t.Errorf("expected error to name record 2, got %v", report.Err)
	}
}

func TestMetadataStep(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"metadata": {
		"description": "Demo export",
		"dataQuality": {"verified": true, "source": "manual", "score": 0.8}
	}}`)

	meta := report.Metadata
	if meta == nil {
		t.Fatal("expected metadata section")
	}
	if meta.Description.String() != "Demo export" {
		t.Errorf("unexpected description %q", meta.Description.String())
	}
	if !meta.HasDataQuality {
		t.Fatal("expected data quality flags")
	}

	got := make([]string, len(meta.DataQuality))
	for i, m := range meta.DataQuality {
		got[i] = m.Key + "=" + m.Value.String()
	}
	want := []string{"verified=true", "source=manual", "score=0.8"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("data quality mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataStep_Absent(t *testing.T) {
	t.Parallel()

	report := analyze(t, `{"businesses": []}`)
	if report.Metadata != nil {
		t.Error("expected no metadata section")
	}
}

func TestSampleStep(t *testing.T) {
	t.Parallel()

	bodies := make([]string, 7)
	for i := range bodies {
		bodies[i] = fmt.Sprintf(`"id": "%d", "name": "Shop %d"`, i+1, i+1)
	}
	bodies[2] = `"name": "No ID"`

	report := analyze(t, recordsJSON(bodies...))
	sample := report.Businesses.Sample

	if len(sample.Entries) != config.DefaultSampleSize {
		t.Fatalf("expected %d entries, got %d", config.DefaultSampleSize, len(sample.Entries))
	}
	for i, e := range sample.Entries {
		if e.Position != i+1 {
			t.Errorf("entry %d has position %d", i, e.Position)
		}
	}
	if sample.Entries[2].ID.Exists() {
		t.Error("expected missing id for third record")
	}
	if sample.Entries[4].Name.String() != "Shop 5" {
		t.Errorf("unexpected fifth name %q", sample.Entries[4].Name.String())
	}
}

func TestClassifyID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"prof-1", "Professional (prof-)"},
		{"prof-", "Professional (prof-)"},
		{"42", model.IDPatternNumeric},
		{"٤٢", model.IDPatternNumeric},
		{"", model.IDPatternOther},
		{"12a", model.IDPatternOther},
		{"-5", model.IDPatternOther},
		{"null", model.IDPatternOther},
		{"PROF-1", model.IDPatternOther},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyID(tt.id, "prof-"); got != tt.want {
				t.Errorf("ClassifyID(%q) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestIDPatternStep_NonStringIDs(t *testing.T) {
	t.Parallel()

	report := analyze(t, recordsJSON(`"id": 7`, `"id": null`, `"name": "x"`, `"id": "prof-9"`))

	want := []labelCount{{"Numeric", 1}, {"Other", 2}, {"Professional (prof-)", 1}}
	if diff := cmp.Diff(want, labels(report.Businesses.IDPatterns.Buckets)); diff != "" {
		t.Errorf("id patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestCategoryStep_TopTen(t *testing.T) {
	t.Parallel()

	var bodies []string
	for i := 1; i <= 12; i++ {
		for range i {
			bodies = append(bodies, fmt.Sprintf(`"industry": "Industry %02d"`, i))
		}
	}

	report := analyze(t, recordsJSON(bodies...))
	industries := report.Businesses.Industries

	if len(industries.Buckets) != config.DefaultTopCategories {
		t.Fatalf("expected %d buckets, got %d", config.DefaultTopCategories, len(industries.Buckets))
	}
	if industries.Distinct != 12 {
		t.Errorf("expected 12 distinct industries, got %d", industries.Distinct)
	}
	if industries.Buckets[0].Label() != "Industry 12" || industries.Buckets[0].Count != 12 {
		t.Errorf("unexpected top bucket %+v", labels(industries.Buckets[:1]))
	}
	for i := 1; i < len(industries.Buckets); i++ {
		if industries.Buckets[i].Count > industries.Buckets[i-1].Count {
			t.Errorf("buckets not in descending order at %d", i)
		}
	}
}

func TestCategoryStep_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	report := analyze(t, recordsJSON(
		`"neighborhood": "North"`,
		`"neighborhood": "South"`,
		`"industry": "Retail"`,
		`"neighborhood": "South"`,
		`"neighborhood": "North"`,
	))

	want := []labelCount{{"North", 2}, {"South", 2}, {"Unknown", 1}}
	if diff := cmp.Diff(want, labels(report.Businesses.Neighborhoods.Buckets)); diff != "" {
		t.Errorf("neighborhoods mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalysis_BucketTotalsMatchCount(t *testing.T) {
	t.Parallel()

	report := analyze(t, recordsJSON(
		`"id": "prof-1", "industry": "Food"`,
		`"id": "2", "industry": 3`,
		`"id": "x", "industry": null`,
		`"industry": "Food"`,
	))

	b := report.Businesses
	for name, d := range map[string]*model.Distribution{
		"id patterns":   b.IDPatterns,
		"industries":    b.Industries,
		"neighborhoods": b.Neighborhoods,
		"ages":          b.Ages,
	} {
		sum := 0
		for _, bucket := range d.Buckets {
			sum += bucket.Count
		}
		if sum != b.Count || d.Total != b.Count {
			t.Errorf("%s: bucket sum %d, total %d, want %d", name, sum, d.Total, b.Count)
		}
	}
}

func TestDuplicateStep(t *testing.T) {
	t.Parallel()

	t.Run("lists names in first-seen order", func(t *testing.T) {
		t.Parallel()

		report := analyze(t, recordsJSON(
			`"name": "B"`, `"name": "A"`, `"name": "B"`,
			`"name": "C"`, `"name": "A"`, `"name": "A"`,
		))

		want := []labelCount{{"B", 2}, {"A", 3}}
		if diff := cmp.Diff(want, labels(report.Businesses.Duplicates.Names)); diff != "" {
			t.Errorf("duplicates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("records without a name share the empty name", func(t *testing.T) {
		t.Parallel()

		report := analyze(t, recordsJSON(`"id": "1"`, `"id": "2"`))

		want := []labelCount{{"", 2}}
		if diff := cmp.Diff(want, labels(report.Businesses.Duplicates.Names)); diff != "" {
			t.Errorf("duplicates mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("truncates to the configured limit", func(t *testing.T) {
		t.Parallel()

		var bodies []string
		for i := range 12 {
			name := fmt.Sprintf(`"name": "Dup %d"`, i)
			bodies = append(bodies, name, name)
		}

		report := analyze(t, recordsJSON(bodies...))
		dup := report.Businesses.Duplicates

		if dup.Distinct != 12 {
			t.Errorf("expected 12 distinct duplicates, got %d", dup.Distinct)
		}
		if len(dup.Names) != config.DefaultDuplicateNames {
			t.Errorf("expected %d names, got %d", config.DefaultDuplicateNames, len(dup.Names))
		}
	})

	t.Run("unique names", func(t *testing.T) {
		t.Parallel()

		report := analyze(t, recordsJSON(`"name": "A"`, `"name": "B"`))
		if report.Businesses.Duplicates.HasDuplicates() {
			t.Error("expected no duplicates")
		}
	})
}

func TestStructureStep(t *testing.T) {
	t.Parallel()

	keys := make([]string, 20)
	for i := range keys {
		keys[i] = fmt.Sprintf(`"k%02d": %d`, i, i)
	}
	first := strings.Join(keys, ",") + `, "address": {"street": "1 Main", "zip": 12345}`

	report := analyze(t, recordsJSON(first, `"embedding": [0.1, 0.2]`))
	shape := report.Businesses.Structure

	if shape.KeyCount != 21 {
		t.Errorf("expected 21 keys, got %d", shape.KeyCount)
	}
	if len(shape.Keys) != config.DefaultKeyLimit {
		t.Errorf("expected %d listed keys, got %d", config.DefaultKeyLimit, len(shape.Keys))
	}
	if shape.Keys[0] != "k00" {
		t.Errorf("expected first key k00, got %q", shape.Keys[0])
	}
	if !shape.HasAddress || len(shape.Address) != 2 {
		t.Fatalf("expected two address members, got %+v", shape.Address)
	}
	if shape.Address[1].Key != "zip" || shape.Address[1].Value.String() != "12345" {
		t.Errorf("unexpected address member %+v", shape.Address[1])
	}
	if !shape.HasEmbedding {
		t.Error("expected embedding to be found in the second record")
	}
}

func TestStructureStep_AddressNotObject(t *testing.T) {
	t.Parallel()

	report := analyze(t, recordsJSON(`"address": "1 Main St"`))
	shape := report.Businesses.Structure

	if shape.HasAddress {
		t.Error("expected string address to be skipped")
	}
	if shape.HasEmbedding {
		t.Error("expected no embedding")
	}
}

func TestAgeStep_MixedTypes(t *testing.T) {
	t.Parallel()

	report := analyze(t, recordsJSON(
		`"businessAge": 3`,
		`"businessAge": "5"`,
		`"businessAge": 1`,
		`"businessAge": null`,
		`"name": "no age"`,
		`"businessAge": 1.0`,
		`"businessAge": 3`,
	))

	want := []labelCount{
		{"null", 1},
		{"1", 2},
		{"3", 2},
		{"5", 1},
		{"Unknown", 1},
	}
	if diff := cmp.Diff(want, labels(report.Businesses.Ages.Buckets)); diff != "" {
		t.Errorf("ages mismatch (-want +got):\n%s", diff)
	}
}

func TestAgeStep_Limit(t *testing.T) {
	t.Parallel()

	var bodies []string
	for i := 15; i > 0; i-- {
		bodies = append(bodies, fmt.Sprintf(`"businessAge": %d`, i))
	}

	report := analyze(t, recordsJSON(bodies...))
	ages := report.Businesses.Ages

	if len(ages.Buckets) != config.DefaultAgeBuckets {
		t.Fatalf("expected %d buckets, got %d", config.DefaultAgeBuckets, len(ages.Buckets))
	}
	if ages.Buckets[0].Label() != "1" || ages.Buckets[9].Label() != "10" {
		t.Errorf("expected ages 1..10, got %+v", labels(ages.Buckets))
	}
}

func TestSummaryStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		wantRecords bool
		wantDemo    bool
		wantVersion string
	}{
		{
			name:        "demo flag and version from first record",
			content:     recordsJSON(`"isDemo": true, "dataVersion": "v3"`, `"isDemo": false`),
			wantRecords: true,
			wantDemo:    true,
			wantVersion: "v3",
		},
		{
			name:        "missing fields",
			content:     recordsJSON(`"id": "1"`),
			wantRecords: true,
		},
		{
			name:        "truthy string flag",
			content:     recordsJSON(`"isDemo": "yes"`),
			wantRecords: true,
			wantDemo:    true,
		},
		{
			name:        "zero flag",
			content:     recordsJSON(`"isDemo": 0`),
			wantRecords: true,
		},
		{
			name:    "empty array",
			content: `{"businesses": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary := analyze(t, tt.content).Summary

			if summary.HasRecords != tt.wantRecords {
				t.Errorf("HasRecords = %v, want %v", summary.HasRecords, tt.wantRecords)
			}
			if summary.IsDemo != tt.wantDemo {
				t.Errorf("IsDemo = %v, want %v", summary.IsDemo, tt.wantDemo)
			}
			if got := summary.DataVersion.String(); got != tt.wantVersion {
				t.Errorf("DataVersion = %q, want %q", got, tt.wantVersion)
			}
		})
	}
}

func TestNewAnalysisPipeline_StepOrder(t *testing.T) {
	t.Parallel()

	want := []string{
		"header", "metadata", "businesses", "sample", "id_patterns",
		"industries", "neighborhoods", "duplicates", "structure", "ages", "summary",
	}
	if diff := cmp.Diff(want, NewAnalysisPipeline(config.DefaultLimits()).StepNames()); diff != "" {
		t.Errorf("step order mismatch (-want +got):\n%s", diff)
	}
}

func TestNewAnalysisPipeline_CustomLimits(t *testing.T) {
	t.Parallel()

	limits := config.DefaultLimits()
	limits.Sample = 1
	limits.IDPrefix = "biz-"

	p := NewAnalysisPipeline(limits, WithLogger(discardLogger()))
	report := model.NewReport("data.json")
	doc := parseDocument(t, recordsJSON(`"id": "biz-1"`, `"id": "prof-2"`))

	if err := p.Execute(context.Background(), doc, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Businesses.Sample.Entries) != 1 {
		t.Errorf("expected 1 sample entry, got %d", len(report.Businesses.Sample.Entries))
	}
	want := []labelCount{{"Professional (biz-)", 1}, {"Other", 1}}
	if diff := cmp.Diff(want, labels(report.Businesses.IDPatterns.Buckets)); diff != "" {
		t.Errorf("id patterns mismatch (-want +got):\n%s", diff)
	}
}
