package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned when no run matches the lookup
var ErrRunNotFound = errors.New("run not found")

// BeginRun records the start of a run and fills in its ID and StartedAt
func (s *Store) BeginRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, started_at, mode, provider, steam_path)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt, run.Mode, run.Provider, run.SteamPath)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// CompleteRun stores the final counters of a run
func (s *Store) CompleteRun(run *Run) error {
	if run.CompletedAt.IsZero() {
		run.CompletedAt = time.Now()
	}

	res, err := s.db.Exec(`
		UPDATE runs
		SET completed_at = ?, total = ?, succeeded = ?, failed = ?,
		    shortcuts_changed = ?, cache_flushed = ?
		WHERE id = ?
	`, run.CompletedAt, run.Total, run.Succeeded, run.Failed,
		run.ShortcutsChanged, boolToInt(run.CacheFlushed), run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", run.ID, ErrRunNotFound)
	}
	return nil
}

// GetRun returns the run with the given ID
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(runSelect+" WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	return run, err
}

// LatestRun returns the most recently started run
func (s *Store) LatestRun() (*Run, error) {
	row := s.db.QueryRow(runSelect + " ORDER BY started_at DESC LIMIT 1")
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	return run, err
}

// ListRuns returns up to limit runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(runSelect+" ORDER BY started_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

const runSelect = `
	SELECT id, started_at, completed_at, mode, COALESCE(provider, ''), COALESCE(steam_path, ''),
	       total, succeeded, failed, shortcuts_changed, cache_flushed
	FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var completed sql.NullTime
	var flushed int

	err := row.Scan(&run.ID, &run.StartedAt, &completed, &run.Mode, &run.Provider, &run.SteamPath,
		&run.Total, &run.Succeeded, &run.Failed, &run.ShortcutsChanged, &flushed)
	if err != nil {
		return nil, err
	}

	if completed.Valid {
		run.CompletedAt = completed.Time
	}
	run.CacheFlushed = flushed == 1
	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
