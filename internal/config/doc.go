// Package config provides configuration structures and utilities for bizreport.
// It defines the report limits, output preferences and history settings,
// and loads optional overrides from a YAML settings file.
package config
