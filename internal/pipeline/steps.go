package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/nao1215/bizreport/internal/config"
	"github.com/nao1215/bizreport/internal/document"
	"github.com/nao1215/bizreport/internal/model"
)

// Field names read from the document.
const (
	FieldVersion         = "version"
	FieldGenerated       = "generated"
	FieldTotalBusinesses = "totalBusinesses"
	FieldMetadata        = "metadata"
	FieldDescription     = "description"
	FieldDataQuality     = "dataQuality"
	FieldBusinesses      = "businesses"

	FieldID           = "id"
	FieldName         = "name"
	FieldIndustry     = "industry"
	FieldNeighborhood = "neighborhood"
	FieldAddress      = "address"
	FieldEmbedding    = "embedding"
	FieldBusinessAge  = "businessAge"
	FieldIsDemo       = "isDemo"
	FieldDataVersion  = "dataVersion"
)

// records returns the business records of the document.
// It is empty when the field is absent or not an array.
func records(doc *document.Document) []document.Value {
	businesses, _ := doc.Field(FieldBusinesses)
	return businesses.Items()
}

// recordAttr renders a record as a log group, one attribute per member.
func recordAttr(record document.Value) slog.Attr {
	members := record.Members()
	attrs := make([]any, 0, len(members))
	for _, m := range members {
		attrs = append(attrs, slog.String(m.Key, m.Value.String()))
	}
	return slog.Group("record", attrs...)
}

// HeaderStep reads the top-level descriptive fields.
// The document root must be an object.
type HeaderStep struct{}

// NewHeaderStep creates a new header step.
func NewHeaderStep() *HeaderStep {
	return &HeaderStep{}
}

// Name returns the step name.
func (s *HeaderStep) Name() string {
	return "header"
}

// Do executes the header step.
func (s *HeaderStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	if !doc.Root.IsObject() {
		return fmt.Errorf("document root is %s: %w", doc.Root.Kind(), document.ErrNotObject)
	}

	version, _ := doc.Field(FieldVersion)
	generated, _ := doc.Field(FieldGenerated)
	declared, _ := doc.Field(FieldTotalBusinesses)

	report.Header = &model.Header{
		Version:       version,
		Generated:     generated,
		DeclaredTotal: declared,
	}
	return nil
}

// MetadataStep reads the optional metadata block.
type MetadataStep struct{}

// NewMetadataStep creates a new metadata step.
func NewMetadataStep() *MetadataStep {
	return &MetadataStep{}
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return "metadata"
}

// Do executes the metadata step. Nothing is recorded when the document has
// no metadata field.
func (s *MetadataStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	meta, ok := doc.Field(FieldMetadata)
	if !ok {
		return nil
	}

	description, _ := meta.Get(FieldDescription)
	dataQuality, ok := meta.Get(FieldDataQuality)
	hasDataQuality := ok && dataQuality.IsObject()

	report.Metadata = &model.Metadata{
		Description:    description,
		HasDataQuality: hasDataQuality,
		DataQuality:    dataQuality.Members(),
	}
	return nil
}

// BusinessesStep counts the business records and checks that each one is
// an object. Later steps rely on that check.
type BusinessesStep struct {
	logger *slog.Logger
}

// NewBusinessesStep creates a new businesses step.
func NewBusinessesStep(logger *slog.Logger) *BusinessesStep {
	return &BusinessesStep{logger: logger}
}

// Name returns the step name.
func (s *BusinessesStep) Name() string {
	return "businesses"
}

// Do executes the businesses step. A document without a businesses field
// produces no section and no error.
func (s *BusinessesStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	businesses, ok := doc.Field(FieldBusinesses)
	if !ok {
		s.logger.Info("document has no businesses field", "file", doc.Path)
		return nil
	}
	if !businesses.IsArray() {
		return fmt.Errorf("businesses field is %s: %w", businesses.Kind(), document.ErrNotArray)
	}

	report.Businesses = &model.Businesses{Count: businesses.Len()}

	for i, record := range businesses.Items() {
		if !record.IsObject() {
			return fmt.Errorf("business record %d is %s: %w", i+1, record.Kind(), document.ErrNotObject)
		}
	}

	if report.CountMismatch() {
		s.logger.Warn("declared business count differs from array length",
			"file", doc.Path,
			"declared", report.Header.DeclaredTotal.String(),
			"actual", businesses.Len(),
		)
	}
	return nil
}

// SampleStep lists the leading records by id and name.
type SampleStep struct {
	limit  int
	logger *slog.Logger
}

// NewSampleStep creates a sample step listing up to limit records.
func NewSampleStep(limit int, logger *slog.Logger) *SampleStep {
	return &SampleStep{limit: limit, logger: logger}
}

// Name returns the step name.
func (s *SampleStep) Name() string {
	return "sample"
}

// Do executes the sample step.
func (s *SampleStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	if report.Businesses == nil {
		return nil
	}

	recs := records(doc)
	n := min(s.limit, len(recs))

	sample := &model.Sample{Limit: s.limit, Entries: make([]model.SampleEntry, n)}
	for i, record := range recs[:n] {
		id, _ := record.Get(FieldID)
		name, _ := record.Get(FieldName)
		sample.Entries[i] = model.SampleEntry{Position: i + 1, ID: id, Name: name}

		s.logger.Debug("sample record", "position", i+1, recordAttr(record))
	}

	report.Businesses.Sample = sample
	return nil
}

// IDPatternStep classifies record identifiers into the professional,
// numeric and other buckets.
type IDPatternStep struct {
	prefix string
}

// NewIDPatternStep creates an id classification step for the given
// professional prefix.
func NewIDPatternStep(prefix string) *IDPatternStep {
	return &IDPatternStep{prefix: prefix}
}

// Name returns the step name.
func (s *IDPatternStep) Name() string {
	return "id_patterns"
}

// Do executes the id classification step.
func (s *IDPatternStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	if report.Businesses == nil {
		return nil
	}

	counter := model.NewCounter()
	for _, record := range records(doc) {
		id := record.GetOr(FieldID, document.NewString("")).String()
		counter.AddString(ClassifyID(id, s.prefix))
	}

	report.Businesses.IDPatterns = &model.Distribution{
		Limit:    counter.Len(),
		Distinct: counter.Len(),
		Total:    counter.Total(),
		Buckets:  counter.Buckets(),
	}
	return nil
}

// ClassifyID returns the ID pattern label of an identifier text.
// The prefix check wins over the numeric check.
func ClassifyID(id, prefix string) string {
	switch {
	case strings.HasPrefix(id, prefix):
		return model.ProfessionalLabel(prefix)
	case isDigits(id):
		return model.IDPatternNumeric
	default:
		return model.IDPatternOther
	}
}

// isDigits reports whether s is non-empty and made of decimal digits only.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// CategoryStep counts a categorical field and keeps the most frequent values.
type CategoryStep struct {
	name   string
	field  string
	limit  int
	assign func(*model.Businesses, *model.Distribution)
}

// NewIndustryStep creates a step for the top industries.
func NewIndustryStep(limit int) *CategoryStep {
	return &CategoryStep{
		name:  "industries",
		field: FieldIndustry,
		limit: limit,
		assign: func(b *model.Businesses, d *model.Distribution) {
			b.Industries = d
		},
	}
}

// NewNeighborhoodStep creates a step for the top neighborhoods.
func NewNeighborhoodStep(limit int) *CategoryStep {
	return &CategoryStep{
		name:  "neighborhoods",
		field: FieldNeighborhood,
		limit: limit,
		assign: func(b *model.Businesses, d *model.Distribution) {
			b.Neighborhoods = d
		},
	}
}

// Name returns the step name.
func (s *CategoryStep) Name() string {
	return s.name
}

// Do executes the category step. Records without the field count as Unknown.
func (s *CategoryStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	if report.Businesses == nil {
		return nil
	}

	counter := model.NewCounter()
	unknown := document.NewString(model.PlaceholderCategory)
	for _, record := range records(doc) {
		counter.Add(record.GetOr(s.field, unknown))
	}

	s.assign(report.Businesses, &model.Distribution{
		Limit:    s.limit,
		Distinct: counter.Len(),
		Total:    counter.Total(),
		Buckets:  counter.MostCommon(s.limit),
	})
	return nil
}

// DuplicateStep finds names shared by more than one record.
type DuplicateStep struct {
	limit int
}

// NewDuplicateStep creates a duplicate name step listing up to limit names.
func NewDuplicateStep(limit int) *DuplicateStep {
	return &DuplicateStep{limit: limit}
}

// Name returns the step name.
func (s *DuplicateStep) Name() string {
	return "duplicates"
}

// Do executes the duplicate step. Records without a name count under the
// empty name.
func (s *DuplicateStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	if report.Businesses == nil {
		return nil
	}

	counter := model.NewCounter()
	empty := document.NewString("")
	for _, record := range records(doc) {
		counter.Add(record.GetOr(FieldName, empty))
	}

	repeated := counter.Repeated()
	report.Businesses.Duplicates = &model.DuplicateCheck{
		Distinct: len(repeated),
		Names:    repeated[:min(s.limit, len(repeated))],
	}
	return nil
}

// StructureStep describes the first record and looks for embeddings.
// It does nothing for an empty array.
type StructureStep struct {
	keyLimit int
	logger   *slog.Logger
}

// NewStructureStep creates a structure step listing up to keyLimit keys.
func NewStructureStep(keyLimit int, logger *slog.Logger) *StructureStep {
	return &StructureStep{keyLimit: keyLimit, logger: logger}
}

// Name returns the step name.
func (s *StructureStep) Name() string {
	return "structure"
}

// Do executes the structure step.
func (s *StructureStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	recs := records(doc)
	if report.Businesses == nil || len(recs) == 0 {
		return nil
	}

	first := recs[0]
	keys := first.Keys()
	shape := &model.RecordShape{
		KeyCount: len(keys),
		Keys:     keys[:min(s.keyLimit, len(keys))],
	}

	if address, ok := first.Get(FieldAddress); ok && address.IsObject() {
		shape.HasAddress = true
		shape.Address = address.Members()
	}

	for _, record := range recs {
		if record.Has(FieldEmbedding) {
			shape.HasEmbedding = true
			break
		}
	}

	s.logger.Debug("first record", "keys", shape.KeyCount, recordAttr(first))

	report.Businesses.Structure = shape
	return nil
}

// AgeStep counts business ages in ascending value order.
// It does nothing for an empty array.
type AgeStep struct {
	limit int
}

// NewAgeStep creates an age distribution step showing up to limit ages.
func NewAgeStep(limit int) *AgeStep {
	return &AgeStep{limit: limit}
}

// Name returns the step name.
func (s *AgeStep) Name() string {
	return "ages"
}

// Do executes the age step. Records without an age count as Unknown.
func (s *AgeStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	recs := records(doc)
	if report.Businesses == nil || len(recs) == 0 {
		return nil
	}

	counter := model.NewCounter()
	unknown := document.NewString(model.PlaceholderCategory)
	for _, record := range recs {
		counter.Add(record.GetOr(FieldBusinessAge, unknown))
	}

	report.Businesses.Ages = &model.Distribution{
		Limit:    s.limit,
		Distinct: counter.Len(),
		Total:    counter.Total(),
		Buckets:  counter.Sorted(s.limit),
	}
	return nil
}

// SummaryStep builds the footer. It works whether or not the document has
// a businesses field.
type SummaryStep struct{}

// NewSummaryStep creates a new summary step.
func NewSummaryStep() *SummaryStep {
	return &SummaryStep{}
}

// Name returns the step name.
func (s *SummaryStep) Name() string {
	return "summary"
}

// Do executes the summary step.
func (s *SummaryStep) Do(_ context.Context, doc *document.Document, report *model.Report) error {
	declared, _ := doc.Field(FieldTotalBusinesses)
	summary := &model.Summary{
		DeclaredTotal: declared,
		ActualCount:   report.ActualCount(),
	}

	if recs := records(doc); report.Businesses != nil && len(recs) > 0 {
		first := recs[0]
		summary.HasRecords = true
		summary.IsDemo = first.GetOr(FieldIsDemo, document.NewBool(false)).Truthy()
		summary.DataVersion, _ = first.Get(FieldDataVersion)
	}

	report.Summary = summary
	return nil
}

// NewAnalysisPipeline creates the standard pipeline: every report section
// in display order, configured with the given limits.
func NewAnalysisPipeline(limits config.Limits, opts ...Option) *Pipeline {
	p := New(opts...)

	p.AddSteps(
		NewHeaderStep(),
		NewMetadataStep(),
		NewBusinessesStep(p.logger),
		NewSampleStep(limits.Sample, p.logger),
		NewIDPatternStep(limits.IDPrefix),
		NewIndustryStep(limits.TopCategories),
		NewNeighborhoodStep(limits.TopCategories),
		NewDuplicateStep(limits.Duplicates),
		NewStructureStep(limits.Keys, p.logger),
		NewAgeStep(limits.Ages),
		NewSummaryStep(),
	)

	return p
}

// AnalyzeFile loads the file at path and runs p over it.
// Load faults and step faults are recorded in the returned report, never
// returned, so that every file yields something to print.
func AnalyzeFile(ctx context.Context, p *Pipeline, path string) *model.Report {
	report := model.NewReport(path)

	doc, err := document.LoadContext(ctx, path)
	if err != nil {
		p.logger.Info("document not analysed", "file", path, "error", err)
		report.SetError(err)
		return report
	}

	p.logger.Debug("document loaded", "file", path, "bytes", doc.Size)

	_ = p.Execute(ctx, doc, report) //nolint:errcheck // Error is stored in report
	return report
}
