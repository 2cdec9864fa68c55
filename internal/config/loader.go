package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the settings file name searched in the working
// and home directories.
const DefaultConfigFile = ".bizreport"

// xdgConfigFile is the settings file name inside the XDG config directory.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LimitSettings mirrors Limits in the settings file.
// Zero values leave the corresponding default untouched.
type LimitSettings struct {
	Sample        int `yaml:"sample,omitempty"`
	TopCategories int `yaml:"topCategories,omitempty"`
	Duplicates    int `yaml:"duplicates,omitempty"`
	Keys          int `yaml:"keys,omitempty"`
	Ages          int `yaml:"ages,omitempty"`
}

// File represents the structure of the settings file.
type File struct {
	// Limits overrides report truncation limits.
	Limits LimitSettings `yaml:"limits,omitempty"`

	// IDPrefix overrides the professional identifier prefix.
	IDPrefix string `yaml:"idPrefix,omitempty"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply overrides limits with the non-zero values of the file.
// Negative values are copied so that Validate can reject them.
func (cf *File) Apply(limits Limits) Limits {
	if cf == nil {
		return limits
	}

	override := func(dst *int, v int) {
		if v != 0 {
			*dst = v
		}
	}
	override(&limits.Sample, cf.Limits.Sample)
	override(&limits.TopCategories, cf.Limits.TopCategories)
	override(&limits.Duplicates, cf.Limits.Duplicates)
	override(&limits.Keys, cf.Limits.Keys)
	override(&limits.Ages, cf.Limits.Ages)

	if cf.IDPrefix != "" {
		limits.IDPrefix = cf.IDPrefix
	}
	return limits
}

// FindConfigFile searches for the settings file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .bizreport in the current directory
// 3. Look for .bizreport in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the settings file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, XDGConfigFile())

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
