package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nao1215/bizreport/internal/config"
	"github.com/nao1215/bizreport/internal/database"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of recent runs listed without a file.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists runs recorded with --record.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [data-file]",
		Short: "Show recorded analysis runs",
		Long: `History lists analysis runs recorded with 'bizreport --record'.

Each run shows the declared and actual business counts, flags files whose
declared count does not match the array, and notes runs that stopped on
an error.

Examples:
  # Show the most recent runs across all files
  bizreport history

  # Show every recorded run of one file, newest first
  bizreport history data.json

  # List all files with recorded runs
  bizreport history --list-files`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-files", "L", false,
		"List all files with recorded runs")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Number of recent runs to show when no file is given (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listFiles, err := cmd.Flags().GetBool("list-files")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(config.XDGDataDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No runs recorded yet.")
		fmt.Fprintln(out, "\nUse 'bizreport --record <file>' to record an analysis run.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	switch {
	case listFiles:
		return listRecordedFiles(ctx, out, db)
	case len(args) == 1:
		path := args[0]
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		return listFileHistory(ctx, out, db, path)
	default:
		return listRecentRuns(ctx, out, db, limit)
	}
}

// listRecordedFiles lists all files that have recorded runs.
func listRecordedFiles(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	files, err := db.ListFiles(ctx)
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) == 0 {
		fmt.Fprintln(out, "No recorded files found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Recorded files (%d):\n\n", len(files))
	for _, file := range files {
		fmt.Fprintf(out, "  • %s\n", file)
	}
	fmt.Fprintln(out, "\nUse 'bizreport history <file>' to see the runs of a file.")

	return nil
}

// listFileHistory lists every run of one file, newest first.
func listFileHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, path string) error {
	runs, err := db.GetHistory(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No recorded runs found for %s\n", path)
		return nil
	}

	fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", path, len(runs))
	writeRunTable(out, runs, false)
	return nil
}

// listRecentRuns lists the latest runs across all files.
func listRecentRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRecent(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No recorded runs found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Recent runs (%d):\n\n", len(runs))
	writeRunTable(out, runs, true)
	return nil
}

// writeRunTable writes one line per run. withFile adds the file column.
func writeRunTable(out io.Writer, runs []database.Run, withFile bool) {
	header := fmt.Sprintf("  %-6s  %-20s  %-8s  %-8s  %-8s", "ID", "Date", "Claimed", "Actual", "Status")
	if withFile {
		header += "  File"
	}
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))

	for _, run := range runs {
		line := fmt.Sprintf("  %-6d  %-20s  %-8s  %-8d  %-8s",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			formatDeclared(run),
			run.ActualCount,
			formatStatus(run),
		)
		if withFile {
			line += "  " + run.FilePath
		}
		fmt.Fprintln(out, line)
	}
}

// formatDeclared returns the declared count or the claimed placeholder.
// A declared total that is not a whole count is shown as written.
func formatDeclared(run database.Run) string {
	if run.InvalidDeclared && run.Summary.DeclaredTotal != "" {
		return run.Summary.DeclaredTotal
	}
	if !run.DeclaredCount.Valid {
		return "?"
	}
	return strconv.FormatInt(run.DeclaredCount.Int64, 10)
}

// formatStatus summarises a run as ok, mismatch or error.
func formatStatus(run database.Run) string {
	switch {
	case run.Error != "":
		return "error"
	case run.Mismatch():
		return "mismatch"
	default:
		return "ok"
	}
}
