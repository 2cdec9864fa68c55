package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nao1215/bizreport/internal/config"
	"github.com/nao1215/bizreport/internal/database"
	seclog "github.com/nao1215/bizreport/internal/log"
	"github.com/nao1215/bizreport/internal/model"
	"github.com/nao1215/bizreport/internal/pipeline"
	"github.com/nao1215/bizreport/internal/report"
	"github.com/spf13/cobra"
)

// addAnalyzeFlags registers the analysis flags on cmd.
func addAnalyzeFlags(cmd *cobra.Command) {
	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .bizreport in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report instead of plain text")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of files analysed concurrently")

	// History flags
	cmd.Flags().BoolP("record", "r", false,
		"Record the run in the history database")
}

// runAnalyzeCmd executes the analysis.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)
	slog.SetDefault(logger)

	// The first signal cancels the analysis. stop restores the default
	// handlers, so a second signal terminates the process.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	return runAnalyze(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Verbose = getVerboseFlag(cmd)

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently keep the defaults if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.Limits = file.Apply(cfg.Limits)
	} else if explicitConfigPath {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Record, err = cmd.Flags().GetBool("record")
	if err != nil {
		return nil, err
	}

	// Positional arguments replace the default data file
	if len(args) > 0 {
		cfg.Targets = args
	}

	return cfg, nil
}

// setupLogger creates a structured logger based on verbosity setting.
// Record fields that look personal or secret are masked.
func setupLogger(verbose bool) *slog.Logger {
	return seclog.NewSecureLogger(os.Stderr, verbose)
}

// runAnalyze analyses every target and prints the reports in argument order.
// Per-file faults are part of the printed output, not errors.
func runAnalyze(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	logger.Debug("starting analysis",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"record", cfg.Record,
	)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewAnalysisPipeline(cfg.Limits, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	reports, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err == nil {
		err = cancellation(reports)
	}
	if err != nil {
		logger.Info("analysis cancelled", "error", err)
		return fmt.Errorf("analysis cancelled: %w", err)
	}

	if err := outputReports(cfg, stdout, reports); err != nil {
		return err
	}

	if cfg.Record {
		return saveRuns(ctx, cfg.DBDir, reports, logger)
	}
	return nil
}

// cancellation returns the first report fault caused by a cancelled or
// expired context.
func cancellation(reports []*model.Report) error {
	for _, r := range reports {
		if r == nil {
			continue
		}
		if errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, context.DeadlineExceeded) {
			return r.Err
		}
	}
	return nil
}

// outputReports writes the reports in the requested format, to the report
// file when one is configured and to stdout otherwise.
func outputReports(cfg *config.Config, stdout io.Writer, reports []*model.Report) error {
	output := stdout
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports quote record fields, so keep them owner-readable only
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var writer report.Writer = report.NewSimpleWriter(output)
	if cfg.MarkdownReport {
		writer = report.NewMarkdownWriter(output)
	}

	for i, r := range reports {
		if i > 0 {
			if _, err := io.WriteString(output, "\n"); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
		}
		if _, err := writer.Write(r); err != nil {
			return fmt.Errorf("failed to write report for %s: %w", r.Path, err)
		}
	}

	return nil
}

// saveRuns records one history row per report. Files are keyed by
// absolute path.
func saveRuns(ctx context.Context, dbDir string, reports []*model.Report, logger *slog.Logger) error {
	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	for _, r := range reports {
		run := database.NewRun(r)
		if abs, err := filepath.Abs(run.FilePath); err == nil {
			run.FilePath = abs
		}

		id, err := db.SaveRun(ctx, run)
		if err != nil {
			logger.Error("failed to record run", "file", run.FilePath, "error", err)
			continue
		}
		logger.Info("run recorded", "file", run.FilePath, "id", id)
	}

	return nil
}
