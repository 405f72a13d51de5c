package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

// preparer is the part of *sql.Tx used while importing.
type preparer interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// LogInfo describes a stored log.
type LogInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Traces int    `json:"traces"`
	Events int    `json:"events"`
	Seq    int64  `json:"seq"`
	// Existing is set by ImportLog when the log was already stored.
	Existing bool `json:"existing,omitempty"`
}

// ImportLog stores a log in one transaction and returns its info.
// Uses ON CONFLICT(id) DO NOTHING for idempotency: a log with the same
// digest is stored once, and a repeated import reports the existing row
// (including its original name).
func (s *Store) ImportLog(ctx context.Context, log eventlog.Log) (LogInfo, error) {
	id, err := log.Digest()
	if err != nil {
		return LogInfo{}, fmt.Errorf("import log: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return LogInfo{}, fmt.Errorf("import log: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO logs (id, name, traces, events, seq)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM logs))
		ON CONFLICT(id) DO NOTHING
	`, id, log.Name, len(log.Traces), log.Events())
	if err != nil {
		return LogInfo{}, fmt.Errorf("import log: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return LogInfo{}, fmt.Errorf("import log: %w", err)
	}

	if inserted > 0 {
		if err := insertTraces(ctx, tx, id, log.Traces); err != nil {
			return LogInfo{}, err
		}
	}

	info, err := scanLogInfo(tx.QueryRowContext(ctx, `
		SELECT id, name, traces, events, seq FROM logs WHERE id = ?
	`, id))
	if err != nil {
		return LogInfo{}, fmt.Errorf("import log: %w", err)
	}
	info.Existing = inserted == 0

	if err := tx.Commit(); err != nil {
		return LogInfo{}, fmt.Errorf("import log: commit: %w", err)
	}
	return info, nil
}

func insertTraces(ctx context.Context, tx preparer, id string, traces []eventlog.Trace) error {
	caseStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cases (log_id, ordinal, case_id) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("import log: prepare cases: %w", err)
	}
	defer caseStmt.Close()

	eventStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO events (log_id, case_ordinal, position, activity) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("import log: prepare events: %w", err)
	}
	defer eventStmt.Close()

	for ordinal, t := range traces {
		if _, err := caseStmt.ExecContext(ctx, id, ordinal, t.Case); err != nil {
			return fmt.Errorf("import log: case %q: %w", t.Case, err)
		}
		for pos, activity := range t.Activities {
			if _, err := eventStmt.ExecContext(ctx, id, ordinal, pos, activity); err != nil {
				return fmt.Errorf("import log: case %q event %d: %w", t.Case, pos, err)
			}
		}
	}
	return nil
}

// DeleteLog removes a log with its cases and events. Deleting an unknown
// id is not an error.
func (s *Store) DeleteLog(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM logs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete log %s: %w", id, err)
	}
	return nil
}
