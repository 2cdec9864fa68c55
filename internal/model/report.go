package model

import (
	"math"
	"time"

	"github.com/nao1215/bizreport/internal/document"
)

// Placeholders substituted for absent fields, per report section.
const (
	PlaceholderHeader   = "unknown"
	PlaceholderRecord   = "N/A"
	PlaceholderCategory = "Unknown"
	PlaceholderClaimed  = "?"
)

// ID pattern bucket labels. The professional label carries the configured
// prefix, see ProfessionalLabel.
const (
	IDPatternNumeric = "Numeric"
	IDPatternOther   = "Other"
)

// ProfessionalLabel returns the ID pattern label for a prefix,
// e.g. "Professional (prof-)".
func ProfessionalLabel(prefix string) string {
	return "Professional (" + prefix + ")"
}

// Report is the analysis result for one data file.
// Section fields stay nil until the step computing them has run; a nil
// section is not rendered.
type Report struct {
	// Path is the analysed data file.
	Path string `json:"path"`

	// AnalyzedAt is when the analysis started.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Header holds the top-level descriptive fields.
	Header *Header `json:"header,omitempty"`

	// Metadata is set only when the document has a metadata field.
	Metadata *Metadata `json:"metadata,omitempty"`

	// Businesses is set only when the document has a businesses field.
	Businesses *Businesses `json:"businesses,omitempty"`

	// Summary is the closing footer.
	Summary *Summary `json:"summary,omitempty"`

	// PerformedSteps lists the analysis steps that completed, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Err is the fault that stopped the analysis, if any.
	Err error `json:"-"`

	// ErrorMessage is the text of Err, kept for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewReport creates an empty report for the given data file.
func NewReport(path string) *Report {
	return &Report{
		Path:           path,
		AnalyzedAt:     time.Now(),
		PerformedSteps: make([]string, 0),
	}
}

// SetError records the fault that stopped the analysis.
func (r *Report) SetError(err error) {
	r.Err = err
	if err != nil {
		r.ErrorMessage = err.Error()
	}
}

// HasBusinesses reports whether the businesses section was produced.
func (r *Report) HasBusinesses() bool {
	return r.Businesses != nil
}

// ActualCount returns the number of records in the businesses array,
// or 0 when the document has none.
func (r *Report) ActualCount() int {
	if r.Businesses == nil {
		return 0
	}
	return r.Businesses.Count
}

// DeclaredCount returns the declared totalBusinesses value when it is a
// whole number that fits in an int. The second result is false otherwise.
func (r *Report) DeclaredCount() (int, bool) {
	if r.Header == nil {
		return 0, false
	}
	return wholeNumber(r.Header.DeclaredTotal)
}

// DeclaredInvalid reports whether totalBusinesses is a number that cannot
// be a record count, such as 1.5 or 1e400.
func (r *Report) DeclaredInvalid() bool {
	if r.Header == nil || r.Header.DeclaredTotal.Kind() != document.KindNumber {
		return false
	}
	_, ok := wholeNumber(r.Header.DeclaredTotal)
	return !ok
}

// CountMismatch reports whether a numeric declared count differs from the
// number of records actually present. A declared number that is not a
// whole count never matches.
func (r *Report) CountMismatch() bool {
	if r.DeclaredInvalid() {
		return true
	}
	declared, ok := r.DeclaredCount()
	return ok && declared != r.ActualCount()
}

// wholeNumber converts a finite integral number within the int range.
func wholeNumber(v document.Value) (int, bool) {
	if v.Kind() != document.KindNumber {
		return 0, false
	}
	f := v.Float()
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

// Header holds the top-level descriptive fields of the document.
// Absent fields are Missing values.
type Header struct {
	Version       document.Value `json:"version"`
	Generated     document.Value `json:"generated"`
	DeclaredTotal document.Value `json:"total_businesses"`
}

// Metadata holds the optional metadata block.
type Metadata struct {
	// Description is Missing when absent.
	Description document.Value `json:"description"`

	// HasDataQuality reports whether a dataQuality object is present.
	HasDataQuality bool `json:"has_data_quality"`

	// DataQuality lists the data quality flags in source order.
	DataQuality []document.Member `json:"-"`
}

// Businesses holds every breakdown of the businesses array.
type Businesses struct {
	// Count is the actual number of records in the array.
	Count int `json:"count"`

	Sample        *Sample         `json:"sample,omitempty"`
	IDPatterns    *Distribution   `json:"id_patterns,omitempty"`
	Industries    *Distribution   `json:"industries,omitempty"`
	Neighborhoods *Distribution   `json:"neighborhoods,omitempty"`
	Duplicates    *DuplicateCheck `json:"duplicates,omitempty"`

	// Structure and Ages are only produced for a non-empty array.
	Structure *RecordShape  `json:"structure,omitempty"`
	Ages      *Distribution `json:"ages,omitempty"`
}

// Sample lists the leading records by id and name.
type Sample struct {
	// Limit is the configured number of records listed.
	Limit int `json:"limit"`

	Entries []SampleEntry `json:"entries"`
}

// SampleEntry is one listed record. Absent fields are Missing values.
type SampleEntry struct {
	// Position is the 1-based index in the array.
	Position int            `json:"position"`
	ID       document.Value `json:"id"`
	Name     document.Value `json:"name"`
}

// Distribution is a frequency breakdown of one field.
type Distribution struct {
	// Limit is the configured number of buckets shown.
	Limit int `json:"limit"`

	// Distinct is the number of distinct values before truncation.
	Distinct int `json:"distinct"`

	// Total is the number of records counted.
	Total int `json:"total"`

	// Buckets are the shown categories, already ordered and truncated.
	Buckets []Bucket `json:"buckets"`
}

// DuplicateCheck lists names used by more than one record.
type DuplicateCheck struct {
	// Distinct is the number of distinct duplicated names.
	Distinct int `json:"distinct"`

	// Names are the first duplicated names in first-seen order.
	Names []Bucket `json:"names"`
}

// HasDuplicates reports whether any name occurs more than once.
func (d *DuplicateCheck) HasDuplicates() bool {
	return d.Distinct > 0
}

// RecordShape describes the first record of the array.
type RecordShape struct {
	// KeyCount is the total number of keys of the first record.
	KeyCount int `json:"key_count"`

	// Keys are the first keys in source order.
	Keys []string `json:"keys"`

	// HasAddress reports whether the first record has an address object.
	HasAddress bool `json:"has_address"`

	// Address lists the address members in source order.
	Address []document.Member `json:"-"`

	// HasEmbedding reports whether any record has an embedding key.
	HasEmbedding bool `json:"has_embedding"`
}

// Summary is the report footer.
type Summary struct {
	// DeclaredTotal is the totalBusinesses value, Missing when absent.
	DeclaredTotal document.Value `json:"declared_total"`

	// ActualCount is the number of records present.
	ActualCount int `json:"actual_count"`

	// HasRecords reports whether the array has at least one record.
	// IsDemo and DataVersion are meaningful only when it is true.
	HasRecords bool `json:"has_records"`

	// IsDemo is the truthiness of the first record's isDemo field.
	IsDemo bool `json:"is_demo"`

	// DataVersion is the first record's dataVersion, Missing when absent.
	DataVersion document.Value `json:"data_version"`
}
