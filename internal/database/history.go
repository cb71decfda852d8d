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

	"github.com/nao1215/uidiff/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "uidiff.db"

// ErrNoReport is returned when saving a comparison that has not run.
var ErrNoReport = errors.New("comparison has no report")

// HistoryDB provides SQLite-based storage for comparison results.
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

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in the given directory.
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

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
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
	-- Comparisons store one diff run between two captures of a screen
	CREATE TABLE IF NOT EXISTS comparisons (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		base_source TEXT NOT NULL,
		candidate_source TEXT NOT NULL,
		base_fingerprint TEXT,
		candidate_fingerprint TEXT,
		base_screenshot_fingerprint TEXT,
		candidate_screenshot_fingerprint TEXT,
		-- full precision; report_json holds the rounded wire score
		score REAL NOT NULL,
		counts TEXT NOT NULL,
		gate_expression TEXT,
		gate_failed INTEGER DEFAULT 0,
		report_json TEXT NOT NULL,
		duration_ns INTEGER DEFAULT 0,
		timestamp TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_comparisons_label ON comparisons(label);
	CREATE INDEX IF NOT EXISTS idx_comparisons_timestamp ON comparisons(timestamp);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveComparison stores a comparison and assigns its ID when empty.
func (hdb *HistoryDB) SaveComparison(ctx context.Context, c *model.Comparison) error {
	if c.Report == nil {
		return ErrNoReport
	}

	reportJSON, err := json.Marshal(c.Report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	countsJSON, err := json.Marshal(c.Summary())
	if err != nil {
		return fmt.Errorf("failed to serialize counts: %w", err)
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ComparedAt.IsZero() {
		c.ComparedAt = time.Now()
	}

	var gateExpr sql.NullString
	gateFailed := 0
	if c.Gate != nil {
		gateExpr = sql.NullString{String: c.Gate.Expression, Valid: true}
		if c.Gate.Failed {
			gateFailed = 1
		}
	}

	query := `
	INSERT INTO comparisons (
		id, label, base_source, candidate_source, base_fingerprint, candidate_fingerprint,
		base_screenshot_fingerprint, candidate_screenshot_fingerprint,
		score, counts, gate_expression, gate_failed, report_json, duration_ns, timestamp
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = hdb.db.ExecContext(ctx, query,
		c.ID,
		c.Label,
		c.BaseSource,
		c.CandidateSource,
		c.BaseFingerprint,
		c.CandidateFingerprint,
		nullString(c.BaseScreenshotFingerprint),
		nullString(c.CandidateScreenshotFingerprint),
		c.Report.Score,
		string(countsJSON),
		gateExpr,
		gateFailed,
		string(reportJSON),
		int64(c.Duration),
		c.ComparedAt.UTC().Format(storedTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save comparison: %w", err)
	}

	return nil
}

// GetComparison retrieves a comparison by its ID.
// Returns nil without error when no comparison has that ID.
func (hdb *HistoryDB) GetComparison(ctx context.Context, id string) (*model.Comparison, error) {
	query := `
	SELECT id, label, base_source, candidate_source, base_fingerprint, candidate_fingerprint,
		base_screenshot_fingerprint, candidate_screenshot_fingerprint,
		score, gate_expression, gate_failed, report_json, duration_ns, timestamp
	FROM comparisons
	WHERE id = ?
	`
	return hdb.queryComparison(ctx, query, id)
}

// LatestComparison retrieves the most recent comparison of a screen.
// Returns nil without error when the screen has no history.
func (hdb *HistoryDB) LatestComparison(ctx context.Context, label string) (*model.Comparison, error) {
	query := `
	SELECT id, label, base_source, candidate_source, base_fingerprint, candidate_fingerprint,
		base_screenshot_fingerprint, candidate_screenshot_fingerprint,
		score, gate_expression, gate_failed, report_json, duration_ns, timestamp
	FROM comparisons
	WHERE label = ?
	ORDER BY timestamp DESC
	LIMIT 1
	`
	return hdb.queryComparison(ctx, query, label)
}

func (hdb *HistoryDB) queryComparison(ctx context.Context, query string, arg any) (*model.Comparison, error) {
	var (
		c          model.Comparison
		baseFP     sql.NullString
		candFP     sql.NullString
		baseShot   sql.NullString
		candShot   sql.NullString
		score      float64
		gateExpr   sql.NullString
		gateFailed int
		reportJSON string
		duration   int64
		timestamp  string
	)

	err := hdb.db.QueryRowContext(ctx, query, arg).Scan(
		&c.ID,
		&c.Label,
		&c.BaseSource,
		&c.CandidateSource,
		&baseFP,
		&candFP,
		&baseShot,
		&candShot,
		&score,
		&gateExpr,
		&gateFailed,
		&reportJSON,
		&duration,
		&timestamp,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comparison: %w", err)
	}

	var report model.DiffReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	report.Score = score
	c.Report = &report
	c.BaseFingerprint = baseFP.String
	c.CandidateFingerprint = candFP.String
	c.BaseScreenshotFingerprint = baseShot.String
	c.CandidateScreenshotFingerprint = candShot.String
	c.Duration = time.Duration(duration)
	c.ComparedAt = parseTimestamp(timestamp)
	if gateExpr.Valid {
		c.Gate = &model.GateResult{Expression: gateExpr.String, Failed: gateFailed != 0}
	}

	return &c, nil
}

// ComparisonMetadata contains summary information about a stored comparison.
// This is used for displaying history without loading the full report.
type ComparisonMetadata struct {
	// ID is the unique identifier of the comparison.
	ID string `json:"id"`

	// Label names the compared screen.
	Label string `json:"label"`

	// Timestamp is when the comparison was performed.
	Timestamp time.Time `json:"timestamp"`

	// Score is the rounded difference score.
	Score float64 `json:"score"`

	// Counts holds the number of change records per type.
	Counts model.ChangeSummary `json:"counts"`

	// GateFailed is true when a gate was evaluated and failed.
	GateFailed bool `json:"gate_failed"`
}

// ListComparisons returns metadata of stored comparisons, newest first.
// An empty label lists all screens.
func (hdb *HistoryDB) ListComparisons(ctx context.Context, label string) ([]ComparisonMetadata, error) {
	query := `
	SELECT id, label, timestamp, score, counts, gate_failed
	FROM comparisons
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if label != "" {
		query += " AND label = ?"
		args = append(args, label)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparisons: %w", err)
	}
	defer rows.Close()

	var results []ComparisonMetadata
	for rows.Next() {
		var (
			meta       ComparisonMetadata
			timestamp  string
			countsJSON string
			gateFailed int
		)
		if err := rows.Scan(&meta.ID, &meta.Label, &timestamp, &meta.Score, &countsJSON, &gateFailed); err != nil {
			return nil, fmt.Errorf("failed to scan comparison: %w", err)
		}

		meta.Score = model.RoundScore(meta.Score)
		meta.Timestamp = parseTimestamp(timestamp)
		meta.GateFailed = gateFailed != 0
		if err := json.Unmarshal([]byte(countsJSON), &meta.Counts); err != nil {
			meta.Counts = model.ChangeSummary{}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// ListLabels returns the labels of all screens with stored comparisons.
func (hdb *HistoryDB) ListLabels(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT label FROM comparisons
	ORDER BY label
	`

	rows, err := hdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("failed to scan label: %w", err)
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// storedTimeFormat is fixed width so that timestamps sort as text.
const storedTimeFormat = "2006-01-02 15:04:05.000000000"

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
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
