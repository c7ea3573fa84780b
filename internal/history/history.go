// Package history records batch fitting runs and their per-file outcomes.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/pathfit/internal/db"
	"github.com/ziadkadry99/pathfit/internal/pathdata"
)

// ErrNotFound is returned when a run id does not exist.
var ErrNotFound = errors.New("history: run not found")

// Status is the lifecycle state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// FileStatus is the outcome for one file of a run.
type FileStatus string

const (
	FileFitted FileStatus = "fitted"
	FileCached FileStatus = "cached"
	FileFailed FileStatus = "failed"
)

// Run is one batch invocation.
type Run struct {
	ID         string         `json:"id"`
	Root       string         `json:"root"`
	Frame      pathdata.Frame `json:"frame"`
	Strict     bool           `json:"strict"`
	Status     Status         `json:"status"`
	Total      int            `json:"total"`
	Fitted     int            `json:"fitted"`
	Cached     int            `json:"cached"`
	Failed     int            `json:"failed"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at,omitempty"`
	Files      []FileResult   `json:"files,omitempty"`
}

// FileResult is the outcome for one file.
type FileResult struct {
	RelPath string     `json:"rel_path"`
	Status  FileStatus `json:"status"`
	Paths   int        `json:"paths"`
	Error   string     `json:"error,omitempty"`
}

// Tally counts files by outcome.
func Tally(files []FileResult) (fitted, cached, failed int) {
	for _, f := range files {
		switch f.Status {
		case FileFitted:
			fitted++
		case FileCached:
			cached++
		case FileFailed:
			failed++
		}
	}
	return fitted, cached, failed
}

// Complete fills in the outcome of r from files without touching the store,
// for runs that are not recorded.
func (r *Run) Complete(files []FileResult, at time.Time) {
	r.Fitted, r.Cached, r.Failed = Tally(files)
	r.Status = statusFor(r.Failed)
	r.Files = files
	r.FinishedAt = &at
}

func statusFor(failed int) Status {
	if failed > 0 {
		return StatusFailed
	}
	return StatusCompleted
}

// Store provides access to the run log.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Start records a new running run and returns it.
func (s *Store) Start(ctx context.Context, root string, f pathdata.Frame, strict bool, total int) (*Run, error) {
	frame, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshalling frame: %w", err)
	}

	run := &Run{
		ID:        uuid.New().String(),
		Root:      root,
		Frame:     f,
		Strict:    strict,
		Status:    StatusRunning,
		Total:     total,
		StartedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, root, frame, strict, status, total, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, root, string(frame), strict, string(StatusRunning), total,
		run.StartedAt.Format(time.DateTime))
	if err != nil {
		return nil, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Finish stores the per-file results of a run and marks it completed, or
// failed when any file failed.
func (s *Store) Finish(ctx context.Context, id string, files []FileResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	fitted, cached, failed := Tally(files)
	for _, f := range files {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR REPLACE INTO run_files (run_id, rel_path, status, paths, error)
			VALUES (?, ?, ?, ?, ?)`,
			id, f.RelPath, string(f.Status), f.Paths, f.Error); err != nil {
			return fmt.Errorf("inserting result for %s: %w", f.RelPath, err)
		}
	}

	status := statusFor(failed)
	res, err := tx.ExecContext(ctx, `
		UPDATE runs SET status = ?, fitted = ?, cached = ?, failed = ?, finished_at = datetime('now')
		WHERE id = ?`,
		string(status), fitted, cached, failed, id)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// List returns the most recent runs first, without their files. A
// non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, root, frame, strict, status, total, fitted, cached, failed, started_at, finished_at
		FROM runs ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// Get returns one run with its file results.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, frame, strict, status, total, fitted, cached, failed, started_at, finished_at
		FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rel_path, status, paths, error FROM run_files
		WHERE run_id = ? ORDER BY rel_path`, id)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			f      FileResult
			status string
		)
		if err := rows.Scan(&f.RelPath, &status, &f.Paths, &f.Error); err != nil {
			return nil, fmt.Errorf("scanning run file: %w", err)
		}
		f.Status = FileStatus(status)
		r.Files = append(r.Files, f)
	}
	return r, rows.Err()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		r             Run
		frame, status string
		started       string
		finished      sql.NullString
	)
	err := sc.Scan(&r.ID, &r.Root, &frame, &r.Strict, &status,
		&r.Total, &r.Fitted, &r.Cached, &r.Failed, &started, &finished)
	if err != nil {
		return nil, err
	}

	r.Status = Status(status)
	if err := json.Unmarshal([]byte(frame), &r.Frame); err != nil {
		return nil, fmt.Errorf("decoding frame of run %s: %w", r.ID, err)
	}
	r.StartedAt = parseTime(started)
	if finished.Valid {
		t := parseTime(finished.String)
		r.FinishedAt = &t
	}
	return &r, nil
}

// parseTime accepts both SQLite's datetime() format and RFC 3339.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
