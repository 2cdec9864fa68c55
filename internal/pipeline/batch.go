package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/bizreport/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of files analysed at once when no
// concurrency is configured.
const DefaultConcurrency = 4

// BatchProcessor analyses several data files concurrently.
// Reports come back in the order the paths were given, whatever order the
// analyses finish in.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each file.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of files analysed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Non-positive values are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
// The pipelineFactory function is called once per file.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyses every path and returns one report per path, in
// argument order. Per-file faults are stored in the reports. The error is
// non-nil only when ctx was cancelled, whether before a file started or
// while it was being analysed; reports for files that never started are nil
// in that case.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, paths []string) ([]*model.Report, error) {
	bp.logger.Debug("starting batch analysis",
		"total_files", len(paths),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Each goroutine owns one slot, so no lock is needed.
	results := make([]*model.Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analysing file",
				"file", path,
				"index", i+1,
				"total", len(paths),
			)

			report := AnalyzeFile(ctx, bp.pipelineFactory(), path)
			results[i] = report

			if report.Err != nil {
				bp.logger.Debug("analysis stopped early",
					"file", path,
					"error", report.Err,
				)
				if interrupted(report.Err) {
					return report.Err
				}
				return nil
			}

			bp.logger.Debug("analysis completed", "file", path)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch analysis complete",
		"total_files", len(paths),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

// interrupted reports whether err comes from a cancelled or expired context
// rather than from the file itself.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
