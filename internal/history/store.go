package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flemzord/oddjob/internal/job"
)

// Run is one finished job run.
type Run struct {
	ID         int64         `json:"id"`
	Job        string        `json:"job"`
	Firing     bool          `json:"firing"`
	Outcome    job.Outcome   `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
}

// Store reads and writes runs.
type Store struct {
	db *sql.DB
}

// Record inserts a run built from a finished event and returns its ID.
func (s *Store) Record(ctx context.Context, e job.Event) (int64, error) {
	var msg string
	if e.Err != nil {
		msg = e.Err.Error()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (job, firing, outcome, error, started_at, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Job, e.Firing, string(e.Outcome), msg, e.StartedAt.UnixNano(), e.FinishedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("history: record run of %s: %w", e.Job, err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first. An empty jobName matches
// every job.
func (s *Store) Recent(ctx context.Context, jobName string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, job, firing, outcome, error, started_at, finished_at
		FROM runs
		WHERE ? = '' OR job = ?
		ORDER BY finished_at DESC, id DESC
		LIMIT ?`, jobName, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			outcome           string
			started, finished int64
		)
		if err := rows.Scan(&r.ID, &r.Job, &r.Firing, &outcome, &r.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		r.Outcome = job.Outcome(outcome)
		r.StartedAt = time.Unix(0, started).UTC()
		r.FinishedAt = time.Unix(0, finished).UTC()
		r.Duration = r.FinishedAt.Sub(r.StartedAt)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Prune deletes runs that finished before cutoff and reports how many were
// removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE finished_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("history: prune: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
