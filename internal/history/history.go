package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	_ "github.com/mattn/go-sqlite3"
)

// DB manages the SQLite database recording task runs and removals.
type DB struct {
	db *sql.DB
}

// TaskRun is a single recorded task execution.
type TaskRun struct {
	ID         int64
	RunID      string
	Task       string
	Status     string // OK, FAIL, ERROR, or DRY_RUN
	ExitCode   int
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
	CreatedAt  time.Time
}

// Removal is a single recorded removal attempt within a clean task.
type Removal struct {
	ID        int64
	RunID     string
	Task      string
	Path      string
	Outcome   string // REMOVED, SKIP, or DRY_RUN
	Reason    string
	Timestamp time.Time
}

// Task run status values.
const (
	StatusOK     = "OK"
	StatusFail   = "FAIL"  // external tool exited non-zero
	StatusError  = "ERROR" // tool could not be started
	StatusDryRun = "DRY_RUN"
)

// Removal outcome values.
const (
	OutcomeRemoved = "REMOVED"
	OutcomeSkip    = "SKIP"
	OutcomeDryRun  = "DRY_RUN"
)

// NewRunID generates a unique identifier shared by all records of one
// devtask invocation.
func NewRunID() string {
	id, err := nanoid.New()
	if err != nil {
		// nanoid only fails when the OS entropy source does; fall back
		// to a timestamp id rather than refusing to record history.
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return id
}

// New opens (creating if necessary) the history database and initializes
// the schema.
func New(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Exercise the connection so the file is created now, with a clear
	// error if permissions block it.
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode: the query tool may read while a run is writing
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("set synchronous mode: %w", err)
	}

	h := &DB{db: db}
	if err = h.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return h, nil
}

func (d *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS task_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		task TEXT NOT NULL,
		status TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_task_runs_run_id ON task_runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_task_runs_task ON task_runs(task);
	CREATE INDEX IF NOT EXISTS idx_task_runs_status ON task_runs(status);
	CREATE INDEX IF NOT EXISTS idx_task_runs_started_at ON task_runs(started_at);

	CREATE TABLE IF NOT EXISTS removals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		task TEXT NOT NULL,
		path TEXT NOT NULL,
		outcome TEXT NOT NULL,
		reason TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_removals_run_id ON removals(run_id);
	CREATE INDEX IF NOT EXISTS idx_removals_path ON removals(path);
	CREATE INDEX IF NOT EXISTS idx_removals_outcome ON removals(outcome);
	CREATE INDEX IF NOT EXISTS idx_removals_timestamp ON removals(timestamp);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordTaskRun inserts one task execution record.
func (d *DB) RecordTaskRun(run TaskRun) error {
	_, err := d.db.Exec(`
		INSERT INTO task_runs (run_id, task, status, exit_code, started_at, finished_at, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.Task, run.Status, run.ExitCode, run.StartedAt, run.FinishedAt, run.Error)
	return err
}

// RecordRemoval inserts one removal attempt record.
func (d *DB) RecordRemoval(rem Removal) error {
	ts := rem.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := d.db.Exec(`
		INSERT INTO removals (run_id, task, path, outcome, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rem.RunID, rem.Task, rem.Path, rem.Outcome, rem.Reason, ts)
	return err
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically).
func (d *DB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}

// DeleteOldRecords removes run and removal records older than the given
// number of days. Returns the number of rows deleted.
func (d *DB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	runs, err := d.db.Exec(`DELETE FROM task_runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, _ := runs.RowsAffected()

	rems, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return removed, err
	}
	n, _ := rems.RowsAffected()
	return removed + n, nil
}
