// Package log provides secure logging functionality built on top of the
// standard slog package.
//
// Debug logs of an analysis may include fields of business records. The
// SecureHandler keeps those logs shareable:
//   - Contact fields (email, phone, tax ids) and credentials are masked
//   - Values that look like email addresses or tokens are masked under any key
//   - Long string values such as serialized embeddings are truncated
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//	logger.Debug("sample record",
//	    slog.Group("record",
//	        "name", "Cafe Luna",
//	        "email", "owner@example.com", // logged as ***REDACTED***
//	    ),
//	)
package log
