// Package history records readiness runs in a local SQLite database so
// past outcomes can be listed and compared.
package history

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	rcerrors "github.com/Aman-CERP/readyctl/internal/errors"
	"github.com/Aman-CERP/readyctl/internal/preflight"
)

// Run is one recorded readiness run. Summary, Ready and ExitCode are
// derived from the stored results on every read.
type Run struct {
	ID          int64                  `json:"id"`
	StartedAt   time.Time              `json:"started_at"`
	Duration    time.Duration          `json:"duration_ns"`
	Ready       bool                   `json:"ready"`
	ExitCode    int                    `json:"exit_code"`
	Summary     preflight.Summary      `json:"summary"`
	AbortedBy   preflight.CategoryID   `json:"aborted_by,omitempty"`
	Skipped     []preflight.CategoryID `json:"skipped,omitempty"`
	Interrupted bool                   `json:"interrupted,omitempty"`
	Host        string                 `json:"host,omitempty"`
	Version     string                 `json:"version,omitempty"`
}

// Meta describes where a run happened.
type Meta struct {
	Host    string
	Version string
}

// Store is the run history database.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	closed bool
}

// Open opens or creates the history database at path.
// An empty path opens an in-memory database for testing.
func Open(path string) (*Store, error) {
	dsn := ":memory:"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, unavailable(path, err)
		}
		dsn = path
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable(path, err)
	}

	// Single connection: one writer, and an in-memory database lives
	// only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, unavailable(path, fmt.Errorf("set pragma: %w", err))
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, unavailable(path, fmt.Errorf("initialize schema: %w", err))
	}
	return s, nil
}

func unavailable(path string, err error) error {
	return rcerrors.New(rcerrors.ErrCodeHistoryUnavailable, "cannot open history database", err).
		WithDetail("path", path).
		WithSuggestion("check the directory permissions or run with --no-history")
}

const schemaVersion = 2

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS runs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at  INTEGER NOT NULL,
		duration_ns INTEGER NOT NULL,
		aborted_by  TEXT NOT NULL DEFAULT '',
		skipped     TEXT NOT NULL DEFAULT '',
		interrupted INTEGER NOT NULL DEFAULT 0,
		host        TEXT NOT NULL DEFAULT '',
		version     TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS results (
		run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq         INTEGER NOT NULL,
		probe       TEXT NOT NULL,
		category    TEXT NOT NULL,
		severity    TEXT NOT NULL,
		message     TEXT NOT NULL,
		detail      TEXT NOT NULL DEFAULT '',
		hint        TEXT NOT NULL DEFAULT '',
		duration_ns INTEGER NOT NULL,
		PRIMARY KEY (run_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	var version int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version == 1 {
		// Version 1 kept tallies next to the results they summarize.
		for _, col := range []string{"ready", "exit_code", "total", "passed", "warned", "failed"} {
			if _, err := s.db.Exec(`ALTER TABLE runs DROP COLUMN ` + col); err != nil {
				return fmt.Errorf("migrate runs.%s: %w", col, err)
			}
		}
	}
	_, err := s.db.Exec(`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, schemaVersion)
	return err
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Save records an outcome and its results in one transaction and returns
// the new run ID.
func (s *Store) Save(ctx context.Context, out preflight.Outcome, meta Meta) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, fmt.Errorf("history store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (started_at, duration_ns, aborted_by, skipped, interrupted, host, version)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		out.StartedAt.UnixNano(), int64(out.Duration),
		string(out.AbortedBy), joinIDs(out.Skipped), out.Interrupted, meta.Host, meta.Version)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (run_id, seq, probe, category, severity, message, detail, hint, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range out.Results {
		if _, err := stmt.ExecContext(ctx, id, i, r.Probe, string(r.Category),
			severityName(r.Severity), r.Message, r.Detail, r.Hint, int64(r.Duration)); err != nil {
			return 0, fmt.Errorf("failed to insert result %s: %w", r.Probe, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// selectRuns reads runs with their tallies folded from results.
// Callers append WHERE/HAVING/ORDER clauses around the GROUP BY.
const (
	selectRuns = `
	SELECT r.id, r.started_at, r.duration_ns,
		COUNT(x.seq),
		COALESCE(SUM(CASE WHEN x.severity = 'pass' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN x.severity = 'warn' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN x.severity = 'fail' THEN 1 ELSE 0 END), 0),
		r.aborted_by, r.skipped, r.interrupted, r.host, r.version
	FROM runs r LEFT JOIN results x ON x.run_id = r.id`
	groupRuns = ` GROUP BY r.id`
	readyRuns = ` HAVING COALESCE(SUM(CASE WHEN x.severity = 'fail' THEN 1 ELSE 0 END), 0) = 0
		AND r.aborted_by = '' AND r.interrupted = 0`
)

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		selectRuns+groupRuns+` ORDER BY r.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns one run and its results in recorded order.
func (s *Store) Get(ctx context.Context, id int64) (Run, []preflight.CheckResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := scanRun(s.db.QueryRowContext(ctx,
		selectRuns+` WHERE r.id = ?`+groupRuns, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, nil, rcerrors.New(rcerrors.ErrCodeRunNotFound, fmt.Sprintf("run %d not found", id), nil).
			WithSuggestion("list recorded runs with 'readyctl history'")
	}
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT probe, category, severity, message, detail, hint, duration_ns
		FROM results WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []preflight.CheckResult
	for rows.Next() {
		var (
			r        preflight.CheckResult
			category string
			severity string
			duration int64
		)
		if err := rows.Scan(&r.Probe, &category, &severity, &r.Message, &r.Detail, &r.Hint, &duration); err != nil {
			return Run{}, nil, fmt.Errorf("failed to scan result: %w", err)
		}
		sev, err := preflight.ParseSeverity(severity)
		if err != nil {
			return Run{}, nil, fmt.Errorf("result %s: %w", r.Probe, err)
		}
		r.Category = preflight.CategoryID(category)
		r.Severity = sev
		r.Duration = time.Duration(duration)
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, err
	}
	run.Summary = preflight.Summarize(results)
	run.setDecision()
	return run, results, nil
}

// LastReady returns the most recent ready run. ok is false when no run
// has ever been ready.
func (s *Store) LastReady(ctx context.Context) (run Run, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err = scanRun(s.db.QueryRowContext(ctx,
		selectRuns+groupRuns+readyRuns+` ORDER BY r.id DESC LIMIT 1`))
	if stderrors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, err
	}
	return run, true, nil
}

// Prune deletes all but the newest retain runs and returns how many
// runs were removed. retain <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, retain int) (int64, error) {
	if retain <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cutoff := `SELECT id FROM runs ORDER BY id DESC LIMIT -1 OFFSET ?`
	if _, err := tx.ExecContext(ctx, `DELETE FROM results WHERE run_id IN (`+cutoff+`)`, retain); err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id IN (`+cutoff+`)`, retain)
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                 Run
		startedAt, duration int64
		abortedBy, skipped  string
	)
	err := row.Scan(&run.ID, &startedAt, &duration,
		&run.Summary.Total, &run.Summary.Passed, &run.Summary.Warned, &run.Summary.Failed,
		&abortedBy, &skipped, &run.Interrupted, &run.Host, &run.Version)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(duration)
	run.AbortedBy = preflight.CategoryID(abortedBy)
	run.Skipped = splitIDs(skipped)
	run.setDecision()
	return run, nil
}

// setDecision derives Ready and ExitCode the way a live run does.
func (r *Run) setDecision() {
	out := preflight.Outcome{Summary: r.Summary, AbortedBy: r.AbortedBy, Interrupted: r.Interrupted}
	r.Ready = out.Ready()
	r.ExitCode = out.ExitCode()
}

func severityName(s preflight.Severity) string {
	return strings.ToLower(s.String())
}

func joinIDs(ids []preflight.CategoryID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

func splitIDs(s string) []preflight.CategoryID {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	ids := make([]preflight.CategoryID, len(parts))
	for i, p := range parts {
		ids[i] = preflight.CategoryID(p)
	}
	return ids
}
