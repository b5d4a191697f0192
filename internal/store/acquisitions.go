package store

import (
	"database/sql"
	"fmt"
)

// InsertAcquisitions records the icon outcomes of a run in one transaction
func (s *Store) InsertAcquisitions(acqs []*Acquisition) error {
	return s.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT OR REPLACE INTO acquisitions
			(run_id, app_id, name, status, success, icon_path, source_url, bytes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, a := range acqs {
			if _, err := stmt.Exec(a.RunID, a.AppID, a.Name, a.Status, boolToInt(a.Success),
				a.IconPath, a.SourceURL, a.Bytes); err != nil {
				return fmt.Errorf("failed to insert acquisition %s: %w", a.AppID, err)
			}
		}
		return nil
	})
}

// GetAcquisitions returns all outcomes of a run ordered by app ID
func (s *Store) GetAcquisitions(runID string) ([]*Acquisition, error) {
	rows, err := s.db.Query(`
		SELECT run_id, app_id, COALESCE(name, ''), status, success,
		       COALESCE(icon_path, ''), COALESCE(source_url, ''), bytes, created_at
		FROM acquisitions
		WHERE run_id = ?
		ORDER BY app_id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acqs []*Acquisition
	for rows.Next() {
		var a Acquisition
		var success int
		if err := rows.Scan(&a.RunID, &a.AppID, &a.Name, &a.Status, &success,
			&a.IconPath, &a.SourceURL, &a.Bytes, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Success = success == 1
		acqs = append(acqs, &a)
	}
	return acqs, rows.Err()
}

// StatusCount pairs an acquisition status with its occurrence count
type StatusCount struct {
	Status string
	Count  int
}

// CountByStatus groups a run's outcomes by status, most frequent first
func (s *Store) CountByStatus(runID string) ([]StatusCount, error) {
	rows, err := s.db.Query(`
		SELECT status, COUNT(*) AS n
		FROM acquisitions
		WHERE run_id = ?
		GROUP BY status
		ORDER BY n DESC, status
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var c StatusCount
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetTotalBytesDownloaded returns bytes written by successful acquisitions of a run
func (s *Store) GetTotalBytesDownloaded(runID string) (int64, error) {
	var total int64
	err := s.db.QueryRow(`
		SELECT COALESCE(SUM(bytes), 0) FROM acquisitions WHERE run_id = ? AND success = 1
	`, runID).Scan(&total)
	return total, err
}
