package history

import (
	"database/sql"
	"time"
)

// GetRecentRuns returns the N most recent task runs.
func (d *DB) GetRecentRuns(limit int) ([]TaskRun, error) {
	query := `
	SELECT id, run_id, task, status, exit_code, started_at, finished_at, error_message
	FROM task_runs
	ORDER BY started_at DESC
	LIMIT ?
	`
	return d.queryRuns(query, limit)
}

// GetRunsByTask returns runs of a single task, newest first.
func (d *DB) GetRunsByTask(task string) ([]TaskRun, error) {
	query := `
	SELECT id, run_id, task, status, exit_code, started_at, finished_at, error_message
	FROM task_runs
	WHERE task = ?
	ORDER BY started_at DESC
	`
	return d.queryRuns(query, task)
}

// GetRunsByStatus returns runs filtered by status, newest first.
func (d *DB) GetRunsByStatus(status string) ([]TaskRun, error) {
	query := `
	SELECT id, run_id, task, status, exit_code, started_at, finished_at, error_message
	FROM task_runs
	WHERE status = ?
	ORDER BY started_at DESC
	`
	return d.queryRuns(query, status)
}

// GetRecentRemovals returns the N most recent removal attempts.
func (d *DB) GetRecentRemovals(limit int) ([]Removal, error) {
	query := `
	SELECT id, run_id, task, path, outcome, reason, timestamp
	FROM removals
	ORDER BY timestamp DESC
	LIMIT ?
	`
	return d.queryRemovals(query, limit)
}

// GetRemovalsByRun returns every removal attempt of one invocation.
func (d *DB) GetRemovalsByRun(runID string) ([]Removal, error) {
	query := `
	SELECT id, run_id, task, path, outcome, reason, timestamp
	FROM removals
	WHERE run_id = ?
	ORDER BY id ASC
	`
	return d.queryRemovals(query, runID)
}

// GetRemovalsByPath returns removals matching a path pattern (SQL LIKE).
func (d *DB) GetRemovalsByPath(pathPattern string) ([]Removal, error) {
	query := `
	SELECT id, run_id, task, path, outcome, reason, timestamp
	FROM removals
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`
	return d.queryRemovals(query, pathPattern)
}

// Stats holds aggregated history statistics.
type Stats struct {
	TotalRuns     int
	RunsOK        int
	RunsFailed    int
	RunsErrored   int
	TotalRemovals int
	ByTask        map[string]int
	ByStatus      map[string]int
	StartDate     time.Time
	EndDate       time.Time
}

// GetStats returns aggregate statistics for the last N days.
func (d *DB) GetStats(days int) (*Stats, error) {
	since := time.Now().AddDate(0, 0, -days)
	now := time.Now()

	stats := &Stats{
		StartDate: since,
		EndDate:   now,
	}

	err := d.db.QueryRow(`
		SELECT
			COUNT(*),
			COUNT(CASE WHEN status = 'OK' THEN 1 END),
			COUNT(CASE WHEN status = 'FAIL' THEN 1 END),
			COUNT(CASE WHEN status = 'ERROR' THEN 1 END)
		FROM task_runs
		WHERE started_at >= ?
	`, since).Scan(&stats.TotalRuns, &stats.RunsOK, &stats.RunsFailed, &stats.RunsErrored)
	if err != nil {
		return nil, err
	}

	err = d.db.QueryRow(`
		SELECT COUNT(*) FROM removals WHERE timestamp >= ?
	`, since).Scan(&stats.TotalRemovals)
	if err != nil {
		return nil, err
	}

	stats.ByTask, err = d.countGrouped(`
		SELECT task, COUNT(*) FROM task_runs WHERE started_at >= ? GROUP BY task
	`, since)
	if err != nil {
		return nil, err
	}

	stats.ByStatus, err = d.countGrouped(`
		SELECT status, COUNT(*) FROM task_runs WHERE started_at >= ? GROUP BY status
	`, since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (d *DB) countGrouped(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

func (d *DB) queryRuns(query string, args ...interface{}) ([]TaskRun, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []TaskRun
	for rows.Next() {
		var r TaskRun
		var errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Task, &r.Status, &r.ExitCode,
			&r.StartedAt, &r.FinishedAt, &errMsg,
		)
		if err != nil {
			return nil, err
		}
		if errMsg.Valid {
			r.Error = errMsg.String
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (d *DB) queryRemovals(query string, args ...interface{}) ([]Removal, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var removals []Removal
	for rows.Next() {
		var r Removal
		var reason sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Task, &r.Path, &r.Outcome, &reason, &r.Timestamp,
		)
		if err != nil {
			return nil, err
		}
		if reason.Valid {
			r.Reason = reason.String
		}
		removals = append(removals, r)
	}
	return removals, rows.Err()
}
