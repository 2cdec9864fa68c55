// Package pipeline runs the analysis steps that turn a loaded business data
// document into a report.
//
// Each report section is produced by one Step. Steps run in display order;
// the first failing step stops the run, and the sections filled before it
// stay in the report so that partial output can still be printed.
//
// Design decision: We use a pipeline pattern instead of one large function
// because:
// 1. Each section can be tested in isolation
// 2. Faults are recorded in one place with consistent logging
// 3. Limits are bound to steps at construction time
//
// BatchProcessor analyses several files concurrently using errgroup and
// keeps the reports in argument order.
package pipeline
