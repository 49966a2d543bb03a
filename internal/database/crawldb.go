package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wordcrawl/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wordcrawl.db"

// CrawlDB provides SQLite-based storage for crawl runs and their pages.
//
// Design decision: We keep every run in a single database file rather
// than one file per run. This keeps "history" a single query and makes
// comparing a page's hash across runs a simple lookup.
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

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error
// wrapping os.ErrNotExist is returned and nothing is created.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw&_pragma=foreign_keys(1)"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc&_pragma=foreign_keys(1)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
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

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
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
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		start_pages TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		parallelism INTEGER NOT NULL,
		timeout_ms INTEGER NOT NULL,
		urls_visited INTEGER NOT NULL,
		pages_failed INTEGER NOT NULL,
		word_counts TEXT NOT NULL,
		error TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store a summary of every page fetched during a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		depth INTEGER NOT NULL,
		title TEXT,
		hash TEXT,
		word_total INTEGER NOT NULL,
		link_count INTEGER NOT NULL,
		crawled_at TEXT NOT NULL,
		UNIQUE(run_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun inserts a run and sets run.ID to the new row ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, run *model.RunRecord) (int64, error) {
	startPages, err := json.Marshal(run.StartPages)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize start pages: %w", err)
	}
	words := run.WordCounts
	if words == nil {
		words = model.WordCounts{}
	}
	wordsJSON, err := json.Marshal(words)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize word counts: %w", err)
	}

	query := `
	INSERT INTO runs (started_at, finished_at, start_pages, max_depth, parallelism,
		timeout_ms, urls_visited, pages_failed, word_counts, error)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		formatTimestamp(run.StartedAt),
		formatTimestamp(run.FinishedAt),
		string(startPages),
		run.MaxDepth,
		run.Parallelism,
		run.Timeout.Milliseconds(),
		run.URLsVisited,
		run.PagesFailed,
		string(wordsJSON),
		run.Error,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run ID: %w", err)
	}
	run.ID = id
	return id, nil
}

// SavePages stores the pages of a run in a single transaction.
// A page whose URL is already stored for the run replaces the old row.
func (cdb *CrawlDB) SavePages(ctx context.Context, runID int64, pages []model.PageRecord) (err error) {
	if len(pages) == 0 {
		return nil
	}

	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO pages (run_id, url, depth, title, hash, word_total, link_count, crawled_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(run_id, url) DO UPDATE SET
		depth = excluded.depth,
		title = excluded.title,
		hash = excluded.hash,
		word_total = excluded.word_total,
		link_count = excluded.link_count,
		crawled_at = excluded.crawled_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pages {
		if _, err = stmt.ExecContext(ctx,
			runID,
			p.URL,
			p.Depth,
			p.Title,
			p.Hash,
			p.WordTotal,
			p.LinkCount,
			formatTimestamp(p.CrawledAt),
		); err != nil {
			return fmt.Errorf("failed to insert page %s: %w", p.URL, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pages: %w", err)
	}
	return nil
}

// runColumns is the column list shared by run queries.
const runColumns = `id, started_at, finished_at, start_pages, max_depth, parallelism,
	timeout_ms, urls_visited, pages_failed, word_counts, error`

// GetRun retrieves a run by ID. It returns nil without error when the run
// does not exist.
func (cdb *CrawlDB) GetRun(ctx context.Context, id int64) (*model.RunRecord, error) {
	row := cdb.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id DESC"
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// DeleteRun removes a run and its pages. Deleting a missing run is not an
// error.
func (cdb *CrawlDB) DeleteRun(ctx context.Context, id int64) error {
	if _, err := cdb.db.ExecContext(ctx, "DELETE FROM runs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// GetPages returns the pages of a run ordered by depth and URL.
func (cdb *CrawlDB) GetPages(ctx context.Context, runID int64) ([]model.PageRecord, error) {
	return cdb.queryPages(ctx, `
	SELECT id, run_id, url, depth, title, hash, word_total, link_count, crawled_at
	FROM pages
	WHERE run_id = ?
	ORDER BY depth, url
	`, runID)
}

// PageHistory returns every stored fetch of url, newest first.
// Comparing the hashes tells whether the page changed between runs.
func (cdb *CrawlDB) PageHistory(ctx context.Context, url string) ([]model.PageRecord, error) {
	return cdb.queryPages(ctx, `
	SELECT id, run_id, url, depth, title, hash, word_total, link_count, crawled_at
	FROM pages
	WHERE url = ?
	ORDER BY crawled_at DESC, id DESC
	`, url)
}

// queryPages runs a page query and scans the rows.
func (cdb *CrawlDB) queryPages(ctx context.Context, query string, args ...any) ([]model.PageRecord, error) {
	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.PageRecord
	for rows.Next() {
		var p model.PageRecord
		var title, hash sql.NullString
		var crawledAt string

		if err := rows.Scan(
			&p.ID,
			&p.RunID,
			&p.URL,
			&p.Depth,
			&title,
			&hash,
			&p.WordTotal,
			&p.LinkCount,
			&crawledAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		p.Title = title.String
		p.Hash = hash.String
		p.CrawledAt = parseTimestamp(crawledAt)
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one run row in runColumns order.
func scanRun(row rowScanner) (*model.RunRecord, error) {
	var run model.RunRecord
	var startedAt string
	var finishedAt, runErr sql.NullString
	var startPages, words string
	var timeoutMS int64

	if err := row.Scan(
		&run.ID,
		&startedAt,
		&finishedAt,
		&startPages,
		&run.MaxDepth,
		&run.Parallelism,
		&timeoutMS,
		&run.URLsVisited,
		&run.PagesFailed,
		&words,
		&runErr,
	); err != nil {
		return nil, err
	}

	run.StartedAt = parseTimestamp(startedAt)
	run.FinishedAt = parseTimestamp(finishedAt.String)
	run.Timeout = time.Duration(timeoutMS) * time.Millisecond
	run.Error = runErr.String

	if err := json.Unmarshal([]byte(startPages), &run.StartPages); err != nil {
		return nil, fmt.Errorf("failed to parse start pages: %w", err)
	}
	if err := json.Unmarshal([]byte(words), &run.WordCounts); err != nil {
		return nil, fmt.Errorf("failed to parse word counts: %w", err)
	}
	if run.WordCounts == nil {
		run.WordCounts = model.WordCounts{}
	}

	return &run, nil
}

// storedTimeFormat has a fixed width so that lexical order matches time order.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// formatTimestamp stores times in UTC. The zero time is stored as an empty
// string.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(storedTimeFormat)
}

// timestampFormats contains the timestamp formats the database may hold.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a stored timestamp. It returns the zero time for
// an empty or unrecognized value.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
