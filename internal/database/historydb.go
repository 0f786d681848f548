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

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/bluehealth/cooccur/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "cooccur.db"

// Run kinds stored in the history.
const (
	KindCollection = "collection"
	KindAnalysis   = "analysis"
)

// ErrNilCounts is returned when a collection run without counts is recorded.
var ErrNilCounts = errors.New("run has no counts matrix")

// HistoryDB provides SQLite-based storage for run history.
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

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

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

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
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
	-- One row per counts collection
	CREATE TABLE IF NOT EXISTS collection_runs (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		artifact TEXT NOT NULL,
		artifact_path TEXT,
		source TEXT,
		mode TEXT NOT NULL,
		n_rows INTEGER NOT NULL,
		n_cols INTEGER NOT NULL,
		metadata TEXT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_collection_category ON collection_runs(category);
	CREATE INDEX IF NOT EXISTS idx_collection_timestamp ON collection_runs(timestamp);

	-- One row per analysis, with the full run record as JSON
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		artifact_path TEXT,
		mode TEXT,
		dropped INTEGER DEFAULT 0,
		n_rows INTEGER DEFAULT 0,
		n_cols INTEGER DEFAULT 0,
		method TEXT,
		top_k INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		run_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_analysis_category ON analysis_runs(category);
	CREATE INDEX IF NOT EXISTS idx_analysis_timestamp ON analysis_runs(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordCollection stores a collection run and returns its id.
func (hdb *HistoryDB) RecordCollection(ctx context.Context, run *model.CategoryRun) (string, error) {
	if run.Counts == nil {
		return "", ErrNilCounts
	}

	metaJSON, err := json.Marshal(run.Counts.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to serialize metadata: %w", err)
	}

	id := uuid.NewString()
	rows, cols := run.Counts.Shape()

	query := `
	INSERT INTO collection_runs (id, category, artifact, artifact_path, source, mode, n_rows, n_cols, metadata, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		id,
		run.Category.DisplayName(),
		run.Category.ArtifactName(),
		run.ArtifactPath,
		run.Counts.Source,
		run.Counts.Mode().String(),
		rows,
		cols,
		string(metaJSON),
		formatTimestamp(run.StartedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record collection: %w", err)
	}

	return id, nil
}

// RecordAnalysis stores an analysis run and returns its id.
// Failed runs are recorded too, with their error message.
func (hdb *HistoryDB) RecordAnalysis(ctx context.Context, run *model.CategoryRun) (string, error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return "", fmt.Errorf("failed to serialize run: %w", err)
	}

	var mode, method string
	var rows, cols, topK int
	if run.Counts != nil {
		mode = run.Counts.Mode().String()
		rows, cols = run.Counts.Shape()
	}
	if run.Scores != nil {
		method = run.Scores.Method
		rows, cols = run.Scores.Shape()
	}
	if run.Rankings != nil {
		topK = run.Rankings.K
	}

	status := "ok"
	if run.Failed() {
		status = "failed"
	}

	id := uuid.NewString()

	query := `
	INSERT INTO analysis_runs (id, category, artifact_path, mode, dropped, n_rows, n_cols, method, top_k, status, error, run_json, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		id,
		run.Category.DisplayName(),
		run.ArtifactPath,
		mode,
		run.Dropped,
		rows,
		cols,
		method,
		topK,
		status,
		run.ErrorMessage,
		string(runJSON),
		formatTimestamp(run.StartedAt),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record analysis: %w", err)
	}

	return id, nil
}

// RunRecord is one line of run history.
type RunRecord struct {
	// ID is the run's unique identifier.
	ID string `json:"id"`

	// Kind is KindCollection or KindAnalysis.
	Kind string `json:"kind"`

	// Category is the category display name.
	Category string `json:"category"`

	// Mode is the collection mode of the counts ("normal" or "offline").
	Mode string `json:"mode,omitempty"`

	// Rows and Cols are the matrix shape.
	Rows int `json:"rows"`
	Cols int `json:"cols"`

	// Dropped is the number of rows and columns removed (analysis only).
	Dropped int `json:"dropped,omitempty"`

	// Method is the score method (analysis only).
	Method string `json:"method,omitempty"`

	// TopK is K (analysis only).
	TopK int `json:"top_k,omitempty"`

	// Status is "ok" or "failed" for analyses, and the mode for collections.
	Status string `json:"status"`

	// Error is the failure message of a failed analysis.
	Error string `json:"error,omitempty"`

	// Metadata is the collection metadata (collection only).
	Metadata model.CollectionMetadata `json:"metadata,omitempty"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`
}

// ListRuns returns the run history, newest first. An empty category lists
// every category; limit <= 0 means no limit.
func (hdb *HistoryDB) ListRuns(ctx context.Context, category string, limit int) ([]RunRecord, error) {
	query := `
	SELECT id, kind, category, mode, n_rows, n_cols, dropped, method, top_k, status, error, metadata, timestamp FROM (
		SELECT id, 'collection' AS kind, category, mode, n_rows, n_cols, 0 AS dropped, '' AS method, 0 AS top_k,
			mode AS status, '' AS error, metadata, timestamp, rowid AS seq
		FROM collection_runs
		UNION ALL
		SELECT id, 'analysis' AS kind, category, mode, n_rows, n_cols, dropped, method, top_k,
			status, error, NULL AS metadata, timestamp, rowid AS seq
		FROM analysis_runs
	)
	WHERE (? = '' OR category = ?)
	ORDER BY timestamp DESC, kind DESC, seq DESC
	`
	args := []any{category, category}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var rec RunRecord
		var mode, method, errMsg, metaJSON sql.NullString
		var timestamp string

		if err := rows.Scan(&rec.ID, &rec.Kind, &rec.Category, &mode, &rec.Rows, &rec.Cols,
			&rec.Dropped, &method, &rec.TopK, &rec.Status, &errMsg, &metaJSON, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.Mode = mode.String
		rec.Method = method.String
		rec.Error = errMsg.String
		rec.Timestamp = parseTimestamp(timestamp)
		if metaJSON.Valid && metaJSON.String != "" {
			if err := json.Unmarshal([]byte(metaJSON.String), &rec.Metadata); err != nil {
				rec.Metadata = nil
			}
		}

		results = append(results, rec)
	}

	return results, rows.Err()
}

// ListCategories returns every category that appears in the history.
func (hdb *HistoryDB) ListCategories(ctx context.Context) ([]string, error) {
	query := `
	SELECT category FROM collection_runs
	UNION
	SELECT category FROM analysis_runs
	ORDER BY category
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// GetAnalysis returns the stored run record of an analysis, or nil if the
// id is unknown.
func (hdb *HistoryDB) GetAnalysis(ctx context.Context, id string) (*model.CategoryRun, error) {
	query := `
	SELECT run_json FROM analysis_runs
	WHERE id = ?
	`

	var runJSON string
	err := hdb.db.QueryRowContext(ctx, query, id).Scan(&runJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var run model.CategoryRun
	if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
		return nil, fmt.Errorf("failed to parse run: %w", err)
	}

	return &run, nil
}

// timestampLayout is how run timestamps are stored.
const timestampLayout = "2006-01-02 15:04:05.000"

// formatTimestamp renders t in UTC for storage. A zero time becomes now.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(timestampLayout)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
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
