package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/bizreport/internal/model"
)

// FileName is the name of the history database file inside its directory.
const FileName = "bizreport.db"

// timestampLayout is a fixed-width UTC layout, so text order is time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores one row per analysed data file.
//
// Design decision: We keep counts in dedicated columns so that history
// listings never need to decode the summary JSON.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ErrDatabaseNotFound is returned by Open when the database does not exist
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("history database not found")

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s (run with --record first)", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL,
		timestamp DATETIME NOT NULL,
		declared_count INTEGER,
		invalid_declared INTEGER NOT NULL DEFAULT 0,
		actual_count INTEGER NOT NULL,
		has_businesses INTEGER NOT NULL,
		distinct_industries INTEGER NOT NULL DEFAULT 0,
		duplicate_names INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		summary_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_file ON runs(file_path);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	if _, err := hdb.db.ExecContext(context.Background(), schema); err != nil {
		return err
	}
	return hdb.addColumn("runs", "invalid_declared", "INTEGER NOT NULL DEFAULT 0")
}

// addColumn adds a column to a table created by an earlier release.
func (hdb *HistoryDB) addColumn(table, column, definition string) error {
	ctx := context.Background()

	rows, err := hdb.db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = hdb.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// RunSummary is the footer of a recorded run, as display text.
type RunSummary struct {
	DeclaredTotal string `json:"declared_total"`
	ActualCount   int    `json:"actual_count"`
	IsDemo        string `json:"is_demo"`
	DataVersion   string `json:"data_version"`
}

// Run is one recorded analysis of a data file.
type Run struct {
	ID        int64
	FilePath  string
	Timestamp time.Time

	// DeclaredCount is valid only when the file declared a whole numeric total.
	DeclaredCount sql.NullInt64

	// InvalidDeclared is set when the declared total is a number that is not
	// a whole count, such as 1.5. Summary.DeclaredTotal keeps its text.
	InvalidDeclared bool

	ActualCount        int
	HasBusinesses      bool
	DistinctIndustries int
	DuplicateNames     int

	// Error is the fault text, empty for a complete run.
	Error string

	Summary RunSummary
}

// Mismatch reports whether the declared count differs from the actual one.
// An invalid declared total always mismatches.
func (r *Run) Mismatch() bool {
	if r.InvalidDeclared {
		return true
	}
	return r.DeclaredCount.Valid && r.DeclaredCount.Int64 != int64(r.ActualCount)
}

// NewRun extracts the recorded figures from an analysis report.
func NewRun(report *model.Report) *Run {
	run := &Run{
		FilePath:      report.Path,
		Timestamp:     report.AnalyzedAt,
		ActualCount:   report.ActualCount(),
		HasBusinesses: report.HasBusinesses(),
		Error:         report.ErrorMessage,
	}

	if declared, ok := report.DeclaredCount(); ok {
		run.DeclaredCount = sql.NullInt64{Int64: int64(declared), Valid: true}
	}
	run.InvalidDeclared = report.DeclaredInvalid()

	if b := report.Businesses; b != nil {
		if b.Industries != nil {
			run.DistinctIndustries = b.Industries.Distinct
		}
		if b.Duplicates != nil {
			run.DuplicateNames = b.Duplicates.Distinct
		}
	}

	if s := report.Summary; s != nil {
		run.Summary = RunSummary{
			DeclaredTotal: displayOr(s.DeclaredTotal.String(), s.DeclaredTotal.Exists(), model.PlaceholderClaimed),
			ActualCount:   s.ActualCount,
			IsDemo:        displayOr(fmt.Sprintf("%t", s.IsDemo), s.HasRecords, model.PlaceholderCategory),
			DataVersion:   displayOr(s.DataVersion.String(), s.HasRecords && s.DataVersion.Exists(), model.PlaceholderCategory),
		}
	}

	return run
}

func displayOr(text string, ok bool, placeholder string) string {
	if !ok {
		return placeholder
	}
	return text
}

// SaveRun inserts a run and returns its ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *Run) (int64, error) {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	var runErr sql.NullString
	if run.Error != "" {
		runErr = sql.NullString{String: run.Error, Valid: true}
	}

	query := `
	INSERT INTO runs (file_path, timestamp, declared_count, invalid_declared, actual_count,
		has_businesses, distinct_industries, duplicate_names, error, summary_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := hdb.db.ExecContext(ctx, query,
		run.FilePath,
		run.Timestamp.UTC().Format(timestampLayout),
		run.DeclaredCount,
		run.InvalidDeclared,
		run.ActualCount,
		run.HasBusinesses,
		run.DistinctIndustries,
		run.DuplicateNames,
		runErr,
		string(summaryJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	return result.LastInsertId()
}

// ListFiles returns every file with at least one recorded run.
func (hdb *HistoryDB) ListFiles(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT file_path FROM runs
	ORDER BY file_path
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []string
	for rows.Next() {
		var file string
		if err := rows.Scan(&file); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}

	return files, rows.Err()
}

// GetHistory returns the runs recorded for one file, newest first.
func (hdb *HistoryDB) GetHistory(ctx context.Context, filePath string) ([]Run, error) {
	query := `
	SELECT id, file_path, timestamp, declared_count, invalid_declared, actual_count,
		has_businesses, distinct_industries, duplicate_names, error, summary_json
	FROM runs
	WHERE file_path = ?
	ORDER BY timestamp DESC, id DESC
	`

	return hdb.queryRuns(ctx, query, filePath)
}

// ListRecent returns the latest runs across all files, newest first.
// A non-positive limit returns every run.
func (hdb *HistoryDB) ListRecent(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, file_path, timestamp, declared_count, invalid_declared, actual_count,
		has_businesses, distinct_industries, duplicate_names, error, summary_json
	FROM runs
	ORDER BY timestamp DESC, id DESC
	`
	args := make([]any, 0, 1)

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return hdb.queryRuns(ctx, query, args...)
}

// queryRuns runs a SELECT over the runs columns and decodes every row.
func (hdb *HistoryDB) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var timestamp string
		var runErr sql.NullString
		var summaryJSON string

		err := rows.Scan(
			&run.ID,
			&run.FilePath,
			&timestamp,
			&run.DeclaredCount,
			&run.InvalidDeclared,
			&run.ActualCount,
			&run.HasBusinesses,
			&run.DistinctIndustries,
			&run.DuplicateNames,
			&runErr,
			&summaryJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		run.Error = runErr.String

		if err := json.Unmarshal([]byte(summaryJSON), &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to parse summary of run %d: %w", run.ID, err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by SaveRun, also returned by the driver
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
