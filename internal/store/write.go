package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run is one recorded CLI invocation.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Source    string    `json:"source"`
	Dialect   string    `json:"dialect"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	AsmBlocks int       `json:"asm_blocks"`
	Warnings  int       `json:"warnings"`
}

// Run status values.
const (
	RunStatusOK    = "ok"
	RunStatusError = "error"
)

// BlockRecord is one cached rewrite, keyed by the content hash of its
// source and dialect.
type BlockRecord struct {
	Hash      string    `json:"hash"`
	RunID     string    `json:"run_id"`
	Emitted   string    `json:"emitted"`
	AsmBlocks int       `json:"asm_blocks"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordRun inserts a run record with a fresh UUIDv7 id and returns the
// id. The run starts in "ok" status with zero counts; FinishRun updates
// it when the invocation completes.
//
// UUIDv7 ids are time-sortable, so id order matches insertion order.
func (s *Store) RecordRun(ctx context.Context, source, dialect string) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("record run: generate id: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, source, dialect, status)
		VALUES (?, ?, ?, ?, ?)
	`,
		id.String(),
		time.Now().UTC().Format(time.RFC3339Nano),
		source,
		dialect,
		RunStatusOK,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	return id.String(), nil
}

// FinishRun updates a run's final status and counts. Pass errMsg == ""
// for a successful run.
func (s *Store) FinishRun(ctx context.Context, id string, errMsg string, asmBlocks, warnings int) error {
	status := RunStatusOK
	if errMsg != "" {
		status = RunStatusError
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, error = ?, asm_blocks = ?, warnings = ?
		WHERE id = ?
	`, status, errMsg, asmBlocks, warnings, id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish run: rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: no run with id %s", id)
	}

	return nil
}

// PutBlock inserts a cache entry for a rewritten block.
// Uses ON CONFLICT(hash) DO NOTHING for idempotency - the hash is
// content-addressed, so an existing row already holds identical output.
//
// Returns true if a new row was inserted, false on a cache hit.
func (s *Store) PutBlock(ctx context.Context, hash, runID, emitted string, asmBlocks int) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO blocks
		(hash, run_id, emitted, asm_blocks, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(hash) DO NOTHING
	`,
		hash,
		runID,
		emitted,
		asmBlocks,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("put block: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("put block: rows affected: %w", err)
	}

	return affected > 0, nil
}
