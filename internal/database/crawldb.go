package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/contactscan/contactscan/internal/model"
)

// dbFileName is the SQLite file created inside the data directory.
const dbFileName = "contactscan.db"

// CrawlDB provides SQLite-based storage for crawl runs and their findings.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all runs rather than
// one file per site. This keeps history queries across sites simple and
// makes backup/restore a single-file operation.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer; multiple connections just contend.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one row per crawl
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed_url TEXT NOT NULL,
		final_url TEXT,
		state TEXT NOT NULL,
		pages_visited INTEGER NOT NULL DEFAULT 0,
		pages_failed INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON runs(seed_url);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Findings store the deduplicated facts of each run
	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		value TEXT NOT NULL,
		source_url TEXT NOT NULL,
		UNIQUE(run_id, type, value)
	);

	CREATE INDEX IF NOT EXISTS idx_findings_run ON findings(run_id);
	CREATE INDEX IF NOT EXISTS idx_findings_type ON findings(type);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlResult stores a sealed crawl result: the run row and all of
// its findings, in one transaction.
func (cdb *CrawlDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) error {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after commit is a no-op

	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, seed_url, final_url, state, pages_visited, pages_failed, started_at, elapsed_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.RunID,
		result.SeedURL,
		result.FinalURL,
		result.State.String(),
		result.PagesVisited,
		result.PagesFailed,
		result.StartedAt.UTC().Format(time.RFC3339Nano),
		result.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, f := range result.Findings {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO findings (run_id, type, value, source_url)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id, type, value) DO NOTHING
		`, result.RunID, string(f.Type), f.Value, f.SourceURL); err != nil {
			return fmt.Errorf("failed to insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying crawl history without loading the findings.
type RunMetadata struct {
	// RunID is the unique identifier of the run.
	RunID string

	// SeedURL is the URL the crawl started from.
	SeedURL string

	// FinalURL is the seed after redirect resolution.
	FinalURL string

	// State is the terminal state text of the run.
	State string

	// PagesVisited and PagesFailed are the page counters of the run.
	PagesVisited int
	PagesFailed  int

	// StartedAt is when the crawl began.
	StartedAt time.Time

	// Elapsed is the wall-clock duration of the crawl.
	Elapsed time.Duration

	// FindingCount is the number of findings stored for the run.
	FindingCount int
}

// ListRuns returns stored runs, newest first. If seedURL is non-empty,
// only runs for that seed are returned.
func (cdb *CrawlDB) ListRuns(ctx context.Context, seedURL string) ([]RunMetadata, error) {
	query := `
	SELECT r.id, r.seed_url, r.final_url, r.state, r.pages_visited, r.pages_failed,
	       r.started_at, r.elapsed_ms, COUNT(f.id)
	FROM runs r
	LEFT JOIN findings f ON f.run_id = r.id
	`
	args := make([]any, 0)
	if seedURL != "" {
		query += " WHERE r.seed_url = ?"
		args = append(args, seedURL)
	}
	query += " GROUP BY r.id ORDER BY r.started_at DESC"

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var startedAt string
		var elapsedMS int64

		if err := rows.Scan(
			&meta.RunID,
			&meta.SeedURL,
			&meta.FinalURL,
			&meta.State,
			&meta.PagesVisited,
			&meta.PagesFailed,
			&startedAt,
			&elapsedMS,
			&meta.FindingCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		meta.StartedAt = parseTimestamp(startedAt)
		meta.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, meta)
	}

	return results, rows.Err()
}

// GetRun retrieves a stored run with its findings by run ID.
// Returns nil without error when the run does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) (*model.CrawlResult, error) {
	var result model.CrawlResult
	var startedAt string
	var elapsedMS int64

	err := cdb.db.QueryRowContext(ctx, `
	SELECT id, seed_url, final_url, state, pages_visited, pages_failed, started_at, elapsed_ms
	FROM runs WHERE id = ?
	`, runID).Scan(
		&result.RunID,
		&result.SeedURL,
		&result.FinalURL,
		&result.StateText,
		&result.PagesVisited,
		&result.PagesFailed,
		&startedAt,
		&elapsedMS,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	result.State = stateFromText(result.StateText)
	result.StartedAt = parseTimestamp(startedAt)
	result.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	rows, err := cdb.db.QueryContext(ctx, `
	SELECT type, value, source_url FROM findings
	WHERE run_id = ?
	ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get findings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var typ string
		var f model.Finding
		if err := rows.Scan(&typ, &f.Value, &f.SourceURL); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		f.Type = model.FindingType(typ)
		result.Findings = append(result.Findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

// ListSeeds returns the distinct seed URLs that have stored runs.
func (cdb *CrawlDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := cdb.db.QueryContext(ctx, `
	SELECT DISTINCT seed_url FROM runs ORDER BY seed_url
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// stateFromText maps a stored state string back to a CrawlState.
func stateFromText(s string) model.CrawlState {
	for _, state := range []model.CrawlState{
		model.StateIdle, model.StateRunning, model.StateCompleted, model.StateAborted,
	} {
		if state.String() == s {
			return state
		}
	}
	return model.StateIdle
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
