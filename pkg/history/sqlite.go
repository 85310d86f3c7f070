package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)

	"mercator-hq/copycheck/pkg/config"
	"mercator-hq/copycheck/pkg/verdict"
)

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Driver is "sqlite3" (mattn/go-sqlite3) or "sqlite" (modernc.org/sqlite).
	Driver string

	// Path is the database file path. ":memory:" keeps the database in memory.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Driver:       config.DefaultHistoryDriver,
		Path:         config.DefaultHistoryPath,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  config.DefaultHistoryBusyTimeout,
	}
}

// SQLiteStore implements Store on SQLite through database/sql.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the database, creating the file, its directory and
// the schema when missing.
func NewSQLiteStore(cfg *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if cfg == nil {
		cfg = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "history.sqlite")

	inMemory := cfg.Path == ":memory:"
	if !inMemory {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, newStorageError("sqlite", "mkdir", err)
			}
		}
	}

	db, err := sql.Open(cfg.Driver, cfg.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 || inMemory {
		// every connection to ":memory:" is a separate database
		maxOpen = 1
	}
	db.SetMaxOpenConns(maxOpen)

	s := &SQLiteStore{db: db, config: cfg, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("history store initialized",
		"driver", cfg.Driver,
		"path", cfg.Path,
		"wal_mode", cfg.WALMode && !inMemory,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode && s.config.Path != ":memory:" {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("sqlite", "enable_wal", err)
		}
	}

	busy := s.config.BusyTimeout
	if busy <= 0 {
		busy = config.DefaultHistoryBusyTimeout
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busy.Milliseconds())); err != nil {
		return newStorageError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	var version sql.NullInt64
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil {
		return newStorageError("sqlite", "get_schema_version", err)
	}
	if version.Int64 != SchemaVersion {
		return newStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version.Int64))
	}
	return nil
}

// SaveRun implements Store. The run and its rows are written in one
// transaction; saving an existing id replaces it.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_rows WHERE run_id = ?`, run.ID); err != nil {
		return newStorageError("sqlite", "save", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (
			id, rule, source, trigger, mode, started_at, finished_at, total,
			ok_count, ng_count, unknown_count, skipped_count, no_data_count, error_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Rule, run.Source, run.Trigger, run.Mode,
		run.StartedAt.UnixMilli(), run.FinishedAt.UnixMilli(), run.Total,
		run.Counts[verdict.OK], run.Counts[verdict.NG], run.Counts[verdict.Unknown],
		run.Counts[verdict.Skipped], run.Counts[verdict.NoData], run.Counts[verdict.Error],
	)
	if err != nil {
		return newStorageError("sqlite", "save", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_rows (
			run_id, idx, conclusion, result, keywords, input_tokens, output_tokens, latency_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return newStorageError("sqlite", "prepare", err)
	}
	defer stmt.Close()

	for _, row := range run.Rows {
		keywords, _ := json.Marshal(row.Keywords)
		_, err := stmt.ExecContext(ctx,
			run.ID, row.Index, string(row.Conclusion), row.Result, string(keywords),
			row.InputTokens, row.OutputTokens, row.Latency.Milliseconds(),
		)
		if err != nil {
			return newStorageError("sqlite", "save_row", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return newStorageError("sqlite", "commit", err)
	}
	return nil
}

const runColumns = `id, rule, source, trigger, mode, started_at, finished_at, total,
	ok_count, ng_count, unknown_count, skipped_count, no_data_count, error_count`

// GetRun implements Store.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, newStorageError("sqlite", "get", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, newStorageError("sqlite", "get", err)
	}
	if len(runs) == 0 {
		return nil, ErrNotFound
	}
	run := runs[0]

	rowRows, err := s.db.QueryContext(ctx, `
		SELECT idx, conclusion, result, keywords, input_tokens, output_tokens, latency_ms
		FROM run_rows WHERE run_id = ? ORDER BY idx`, id)
	if err != nil {
		return nil, newStorageError("sqlite", "get_rows", err)
	}
	defer rowRows.Close()

	for rowRows.Next() {
		var (
			row        Row
			conclusion string
			keywords   sql.NullString
			latencyMS  int64
		)
		if err := rowRows.Scan(&row.Index, &conclusion, &row.Result, &keywords,
			&row.InputTokens, &row.OutputTokens, &latencyMS); err != nil {
			return nil, newStorageError("sqlite", "scan_row", err)
		}
		row.Conclusion = verdict.Conclusion(conclusion)
		row.Latency = time.Duration(latencyMS) * time.Millisecond
		if keywords.Valid && keywords.String != "" && keywords.String != "null" {
			_ = json.Unmarshal([]byte(keywords.String), &row.Keywords)
		}
		run.Rows = append(run.Rows, row)
	}
	if err := rowRows.Err(); err != nil {
		return nil, newStorageError("sqlite", "get_rows", err)
	}
	return run, nil
}

// ListRuns implements Store.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter Filter) ([]*Run, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Rule != "" {
		conditions = append(conditions, "rule = ?")
		args = append(args, filter.Rule)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "started_at >= ?")
		args = append(args, filter.Since.UnixMilli())
	}

	query := `SELECT ` + runColumns + ` FROM runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY started_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, newStorageError("sqlite", "list", err)
	}
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, newStorageError("sqlite", "list", err)
	}
	return runs, nil
}

// DeleteBefore implements Store.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, newStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	cutoff := t.UnixMilli()
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM run_rows WHERE run_id IN (SELECT id FROM runs WHERE started_at < ?)`, cutoff); err != nil {
		return 0, newStorageError("sqlite", "delete_rows", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, newStorageError("sqlite", "delete", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, newStorageError("sqlite", "commit", err)
	}
	return n, nil
}

// Ping checks the database connection. It is used as a health check.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return newStorageError("sqlite", "close", err)
	}
	s.logger.Debug("history store closed")
	return nil
}

func scanRuns(rows *sql.Rows) ([]*Run, error) {
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var (
			run                                     Run
			started, finished                       int64
			ok, ng, unknown, skipped, noData, errCt int
		)
		if err := rows.Scan(&run.ID, &run.Rule, &run.Source, &run.Trigger, &run.Mode,
			&started, &finished, &run.Total,
			&ok, &ng, &unknown, &skipped, &noData, &errCt); err != nil {
			return nil, err
		}
		run.StartedAt = time.UnixMilli(started).UTC()
		run.FinishedAt = time.UnixMilli(finished).UTC()
		run.Counts = Counts{
			verdict.OK:      ok,
			verdict.NG:      ng,
			verdict.Unknown: unknown,
			verdict.Skipped: skipped,
			verdict.NoData:  noData,
			verdict.Error:   errCt,
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}
