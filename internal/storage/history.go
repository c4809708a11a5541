package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-sql-driver/mysql"

	"drivermatrix/internal/domain"
)

// DefaultHistoryTable is the table holding one row per tested version
const DefaultHistoryTable = "drivermatrix_runs"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// HistoryRun is one version of a recorded matrix run
type HistoryRun struct {
	RunID      string
	DriverType string
	Version    string
	Outcome    domain.TestOutcome
	Succeeded  bool
	StartedAt  time.Time
}

// HistoryStore keeps the outcome of every matrix run in MySQL
type HistoryStore struct {
	db    *sql.DB
	table string
}

// NormalizeDSN makes sure DATETIME columns scan into time.Time
func NormalizeDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid history DSN: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// OpenHistoryStore connects to the MySQL server behind dsn
func OpenHistoryStore(ctx context.Context, dsn string) (*HistoryStore, error) {
	dsn, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	return NewHistoryStore(db, DefaultHistoryTable)
}

// NewHistoryStore wraps an open database
func NewHistoryStore(db *sql.DB, table string) (*HistoryStore, error) {
	if !isValidIdentifier(table) {
		return nil, fmt.Errorf("invalid table name: %s", table)
	}
	return &HistoryStore{db: db, table: table}, nil
}

// Close closes the database
func (h *HistoryStore) Close() error {
	return h.db.Close()
}

// EnsureSchema creates the history table if it does not exist
func (h *HistoryStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS `%s` ("+
		"id BIGINT AUTO_INCREMENT PRIMARY KEY, "+
		"run_id VARCHAR(64) NOT NULL, "+
		"driver_type VARCHAR(32) NOT NULL, "+
		"version VARCHAR(255) NOT NULL, "+
		"succeeded BOOLEAN NOT NULL, "+
		"outcome JSON NOT NULL, "+
		"started_at DATETIME NOT NULL, "+
		"INDEX idx_started_at (started_at))", h.table)
	if _, err := h.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", h.table, err)
	}
	return nil
}

// Record inserts one row per version of the report in a single transaction
func (h *HistoryStore) Record(ctx context.Context, runID string, startedAt time.Time, report *domain.MatrixReport) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf("INSERT INTO `%s` (run_id, driver_type, version, succeeded, outcome, started_at) VALUES (?, ?, ?, ?, ?, ?)", h.table)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range report.Entries {
		outcome, err := json.Marshal(e.Outcome)
		if err != nil {
			return fmt.Errorf("marshal outcome of %s: %w", e.Version, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, report.DriverType, e.Version, e.Outcome.Succeeded(), outcome, startedAt.UTC()); err != nil {
			return fmt.Errorf("insert %s: %w", e.Version, err)
		}
	}
	return tx.Commit()
}

// Recent returns the versions of the last runs, newest first
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]HistoryRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := fmt.Sprintf("SELECT run_id, driver_type, version, succeeded, outcome, started_at FROM `%s` ORDER BY started_at DESC, id ASC LIMIT ?", h.table)
	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var runs []HistoryRun
	for rows.Next() {
		var run HistoryRun
		var outcome []byte
		if err := rows.Scan(&run.RunID, &run.DriverType, &run.Version, &run.Succeeded, &outcome, &run.StartedAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		if err := json.Unmarshal(outcome, &run.Outcome); err != nil {
			return nil, fmt.Errorf("parse outcome of %s: %w", run.Version, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// isValidIdentifier accepts plain table names only
func isValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}
