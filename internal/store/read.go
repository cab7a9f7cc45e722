package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// GetBlock retrieves a cached rewrite by content hash.
// Returns ErrNotFound if no entry exists for the hash.
func (s *Store) GetBlock(ctx context.Context, hash string) (BlockRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT hash, run_id, emitted, asm_blocks, created_at
		FROM blocks
		WHERE hash = ?
	`, hash)

	var rec BlockRecord
	var createdAt string
	err := row.Scan(&rec.Hash, &rec.RunID, &rec.Emitted, &rec.AsmBlocks, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return BlockRecord{}, ErrNotFound
	}
	if err != nil {
		return BlockRecord{}, fmt.Errorf("get block: %w", err)
	}

	rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return BlockRecord{}, fmt.Errorf("get block: parse created_at: %w", err)
	}

	return rec, nil
}

// GetRun retrieves a single run by id.
// Returns ErrNotFound if no run exists with the id.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, source, dialect, status, error, asm_blocks, warnings
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit <= 0 returns all runs. Ordering is deterministic: started_at
// descending with id as tiebreaker (UUIDv7 ids sort by creation time).
//
// Returns an empty slice (not nil) if no runs exist.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, source, dialect, status, error, asm_blocks, warnings
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: iterate: %w", err)
	}

	if runs == nil {
		runs = []Run{}
	}

	return runs, nil
}

// scanRun scans one runs row via the given Scan function.
func scanRun(scan func(...any) error) (Run, error) {
	var run Run
	var startedAt string

	if err := scan(
		&run.ID, &startedAt, &run.Source, &run.Dialect,
		&run.Status, &run.Error, &run.AsmBlocks, &run.Warnings,
	); err != nil {
		return Run{}, err
	}

	t, err := time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at: %w", err)
	}
	run.StartedAt = t

	return run, nil
}
