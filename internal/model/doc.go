// Package model defines the data structures produced by a bizreport analysis.
//
// This package contains the following main types:
//   - Report: the analysis result for one data file, one field per section
//   - Counter: an ordered frequency counter used by every breakdown
//   - Bucket: one category and its count
//
// Design decision: We separate models into their own package so that the
// pipeline (which fills a Report) and the report writers (which render it)
// can share them without import cycles. A section field is nil until the
// step that computes it has run, which lets writers print exactly the
// sections completed before a fault.
package model
