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

	"github.com/geoinnova/projectreport/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "projectreport.db"

// storedTimeFormat has a fixed width so generated_at sorts as text.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryDB stores generated reports for later listing and comparison.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	// Read-only commands set it to false so they never create an empty
	// database.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so concurrent batch runs do
	// not block readers.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	mode := "rw"
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		mode = "rwc"
	} else if _, err := os.Stat(dbPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to check database path: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?mode="+mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

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

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL,
		source_path TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		generated_at TEXT NOT NULL,
		layer_count INTEGER NOT NULL DEFAULT 0,
		field_count INTEGER NOT NULL DEFAULT 0,
		layout_count INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_project ON reports(project_name);
	CREATE INDEX IF NOT EXISTS idx_reports_generated ON reports(generated_at);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Entry summarizes one stored report without its contents.
type Entry struct {
	ID          int64
	ProjectName string
	SourcePath  string
	Fingerprint string
	GeneratedAt time.Time
	LayerCount  int
	FieldCount  int
	LayoutCount int
}

// SaveReport stores a report and returns its id. A zero GeneratedAt is
// replaced by the current time.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	res, err := h.db.ExecContext(ctx, `
	INSERT INTO reports (project_name, source_path, fingerprint, generated_at,
		layer_count, field_count, layout_count, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.ProjectName,
		report.SourcePath,
		report.Fingerprint,
		generatedAt.UTC().Format(storedTimeFormat),
		len(report.Layers),
		len(report.Fields),
		len(report.Layouts),
		string(reportJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save report: %w", err)
	}
	return res.LastInsertId()
}

// ListProjects returns the names of all projects with stored reports.
func (h *HistoryDB) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT project_name FROM reports ORDER BY project_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, name)
	}
	return projects, rows.Err()
}

// GetHistory lists the stored reports of a project, newest first.
func (h *HistoryDB) GetHistory(ctx context.Context, projectName string) ([]Entry, error) {
	rows, err := h.db.QueryContext(ctx, `
	SELECT id, project_name, source_path, fingerprint, generated_at,
		layer_count, field_count, layout_count
	FROM reports
	WHERE project_name = ?
	ORDER BY generated_at DESC, id DESC
	`, projectName)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var (
			e           Entry
			generatedAt string
		)
		if err := rows.Scan(&e.ID, &e.ProjectName, &e.SourcePath, &e.Fingerprint, &generatedAt,
			&e.LayerCount, &e.FieldCount, &e.LayoutCount); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.GeneratedAt = parseTimestamp(generatedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// GetLatest returns the newest report of a project, or nil if there is none.
func (h *HistoryDB) GetLatest(ctx context.Context, projectName string) (*model.Report, error) {
	return h.getReport(ctx, `
	SELECT report_json FROM reports
	WHERE project_name = ?
	ORDER BY generated_at DESC, id DESC
	LIMIT 1
	`, projectName)
}

// GetByID returns the report with the given id, or nil if there is none.
func (h *HistoryDB) GetByID(ctx context.Context, id int64) (*model.Report, error) {
	return h.getReport(ctx, `SELECT report_json FROM reports WHERE id = ?`, id)
}

func (h *HistoryDB) getReport(ctx context.Context, query string, arg any) (*model.Report, error) {
	var reportJSON string
	err := h.db.QueryRowContext(ctx, query, arg).Scan(&reportJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}

// timestampFormats contains the timestamp formats found in the database,
// most specific first.
var timestampFormats = []string{
	storedTimeFormat,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp returns the zero time when no format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
