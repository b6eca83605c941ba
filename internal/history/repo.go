package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewRun starts a run record with a fresh id.
func NewRun(startedAt time.Time) Run {
	return Run{ID: uuid.NewString(), StartedAt: startedAt}
}

// Record stores a finished run and its rewrites within a transaction.
// Files and Thin are derived from Rewrites.
func (db *DB) Record(run Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	} else if _, err := uuid.Parse(run.ID); err != nil {
		return fmt.Errorf("history: run id: %w", err)
	}

	run.Files = len(run.Rewrites)
	run.Thin = 0
	for _, rw := range run.Rewrites {
		if rw.Flagged {
			run.Thin++
		}
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("history: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO runs (id, started_at, finished_at, files, thin)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.FinishedAt.UTC(), run.Files, run.Thin)
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	if len(run.Rewrites) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO rewrites (run_id, position, file, word_count, flagged, checksum_before, checksum_after)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("history: prepare rewrite insert: %w", err)
		}
		defer stmt.Close()
		for i, rw := range run.Rewrites {
			if _, err := stmt.Exec(run.ID, i, rw.File, rw.WordCount, rw.Flagged, rw.ChecksumBefore, rw.ChecksumAfter); err != nil {
				return fmt.Errorf("history: insert rewrite: %w", err)
			}
		}
	}

	return tx.Commit()
}

// Recent returns up to limit runs, newest first, with their rewrites.
func (db *DB) Recent(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`
		SELECT id, started_at, finished_at, files, thin
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Files, &r.Thin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		rws, err := db.Rewrites(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Rewrites = rws
	}
	return out, nil
}

// Rewrites returns the files of a run in processing order.
func (db *DB) Rewrites(runID string) ([]Rewrite, error) {
	rows, err := db.conn.Query(`
		SELECT file, word_count, flagged, checksum_before, checksum_after
		FROM rewrites
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: rewrites: %w", err)
	}
	defer rows.Close()

	var out []Rewrite
	for rows.Next() {
		var rw Rewrite
		if err := rows.Scan(&rw.File, &rw.WordCount, &rw.Flagged, &rw.ChecksumBefore, &rw.ChecksumAfter); err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}
