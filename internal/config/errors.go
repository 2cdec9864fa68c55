package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoTarget is returned when no data file path is available.
	ErrNoTarget = errors.New("no data file specified")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidLimit is returned when a report limit is negative.
	ErrInvalidLimit = errors.New("invalid report limit: must be non-negative")

	// ErrEmptyIDPrefix is returned when the professional id prefix is empty.
	// An empty prefix would classify every record as professional.
	ErrEmptyIDPrefix = errors.New("invalid id prefix: must not be empty")
)
