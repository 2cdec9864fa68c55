package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// The default limits give the standard report layout.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "bizreport"

	// DefaultDataFile is analysed when no path is given on the command line.
	DefaultDataFile = "improvedDemoData.json"

	// DefaultSampleSize is the number of leading records listed by id and name.
	DefaultSampleSize = 5

	// DefaultTopCategories is the number of industries and neighborhoods shown.
	DefaultTopCategories = 10

	// DefaultDuplicateNames is the number of duplicated names listed.
	DefaultDuplicateNames = 10

	// DefaultKeyLimit is the number of first-record keys listed.
	DefaultKeyLimit = 15

	// DefaultAgeBuckets is the number of business age categories shown.
	DefaultAgeBuckets = 10

	// DefaultIDPrefix marks identifiers of professional listings.
	DefaultIDPrefix = "prof-"

	// DefaultBatchSize is the number of files loaded concurrently when
	// several paths are given. Parsing is memory bound, so a small value
	// keeps peak memory predictable for large exports.
	DefaultBatchSize = 4
)

// Limits holds the truncation limits and classification settings for a report.
type Limits struct {
	// Sample is the number of leading records listed.
	Sample int

	// TopCategories is the number of industries and neighborhoods listed.
	TopCategories int

	// Duplicates is the number of duplicated names listed.
	Duplicates int

	// Keys is the number of first-record keys listed.
	Keys int

	// Ages is the number of business age categories listed.
	Ages int

	// IDPrefix marks identifiers that belong to the professional bucket.
	IDPrefix string
}

// DefaultLimits returns the limits used when nothing is overridden.
func DefaultLimits() Limits {
	return Limits{
		Sample:        DefaultSampleSize,
		TopCategories: DefaultTopCategories,
		Duplicates:    DefaultDuplicateNames,
		Keys:          DefaultKeyLimit,
		Ages:          DefaultAgeBuckets,
		IDPrefix:      DefaultIDPrefix,
	}
}

// Validate checks that every limit is usable.
func (l Limits) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"sample", l.Sample},
		{"topCategories", l.TopCategories},
		{"duplicates", l.Duplicates},
		{"keys", l.Keys},
		{"ages", l.Ages},
	}
	for _, lim := range limits {
		if lim.value < 0 {
			return fmt.Errorf("%w: %s=%d", ErrInvalidLimit, lim.name, lim.value)
		}
	}
	if l.IDPrefix == "" {
		return ErrEmptyIDPrefix
	}
	return nil
}

// Config holds all configuration options for a bizreport run.
// It is populated from CLI flags and the optional settings file and passed
// through the application rather than kept in global state.
type Config struct {
	// Targets is the list of data files to analyse.
	Targets []string

	// Limits controls report truncation and id classification.
	Limits Limits

	// Verbose enables debug logging on stderr.
	Verbose bool

	// ConfigFilePath is the explicit settings file path, if any.
	ConfigFilePath string

	// MarkdownReport selects Markdown output instead of plain text.
	MarkdownReport bool

	// ReportFile is the output file path. When empty, reports go to stdout.
	ReportFile string

	// BatchSize is the number of files loaded concurrently.
	BatchSize int

	// Record saves a summary of each run to the history database.
	Record bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Targets:   []string{DefaultDataFile},
		Limits:    DefaultLimits(),
		BatchSize: DefaultBatchSize,
		DBDir:     XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for bizreport.
// On Linux: ~/.local/share/bizreport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for bizreport.
// On Linux: ~/.config/bizreport
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGConfigFile returns the per-user settings file in the XDG config
// directory.
func XDGConfigFile() string {
	return filepath.Join(XDGConfigDir(), xdgConfigFile)
}

// Validate checks if the configuration is valid.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	return c.Limits.Validate()
}
