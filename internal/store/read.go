package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tokenreplay/internal/eventlog"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLogInfo(row rowScanner) (LogInfo, error) {
	var info LogInfo
	if err := row.Scan(&info.ID, &info.Name, &info.Traces, &info.Events, &info.Seq); err != nil {
		return LogInfo{}, err
	}
	return info, nil
}

// ListLogs returns every stored log in import order.
//
// Returns an empty slice (not nil) if nothing is stored.
func (s *Store) ListLogs(ctx context.Context) ([]LogInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, traces, events, seq
		FROM logs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	logs := []LogInfo{}
	for rows.Next() {
		info, err := scanLogInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		logs = append(logs, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return logs, nil
}

// ErrEmptyID is returned by FindLog for an empty id, which would otherwise
// match every log.
var ErrEmptyID = errors.New("empty log id")

// FindLog resolves a full id or a unique id prefix.
// Returns an error wrapping sql.ErrNoRows if nothing matches.
func (s *Store) FindLog(ctx context.Context, prefix string) (LogInfo, error) {
	if prefix == "" {
		return LogInfo{}, fmt.Errorf("find log: %w", ErrEmptyID)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, traces, events, seq
		FROM logs
		WHERE substr(id, 1, length(?)) = ?
		ORDER BY id COLLATE BINARY ASC
		LIMIT 2
	`, prefix, prefix)
	if err != nil {
		return LogInfo{}, fmt.Errorf("find log %s: %w", prefix, err)
	}
	defer rows.Close()

	var found []LogInfo
	for rows.Next() {
		info, err := scanLogInfo(rows)
		if err != nil {
			return LogInfo{}, fmt.Errorf("find log %s: %w", prefix, err)
		}
		found = append(found, info)
	}
	if err := rows.Err(); err != nil {
		return LogInfo{}, fmt.Errorf("find log %s: %w", prefix, err)
	}

	switch len(found) {
	case 0:
		return LogInfo{}, fmt.Errorf("find log %s: %w", prefix, sql.ErrNoRows)
	case 1:
		return found[0], nil
	default:
		return LogInfo{}, fmt.Errorf("find log %s: prefix matches more than one log", prefix)
	}
}

// ReadLog loads a stored log. Traces come back in import order with their
// events ordered by position.
// Returns an error wrapping sql.ErrNoRows if the id is unknown.
func (s *Store) ReadLog(ctx context.Context, id string) (eventlog.Log, error) {
	info, err := scanLogInfo(s.db.QueryRowContext(ctx, `
		SELECT id, name, traces, events, seq FROM logs WHERE id = ?
	`, id))
	if err != nil {
		return eventlog.Log{}, fmt.Errorf("read log %s: %w", id, err)
	}

	log := eventlog.Log{Name: info.Name, Traces: make([]eventlog.Trace, 0, info.Traces)}

	cases, err := s.db.QueryContext(ctx, `
		SELECT case_id FROM cases WHERE log_id = ? ORDER BY ordinal ASC
	`, id)
	if err != nil {
		return eventlog.Log{}, fmt.Errorf("query cases: %w", err)
	}
	defer cases.Close()
	for cases.Next() {
		var c string
		if err := cases.Scan(&c); err != nil {
			return eventlog.Log{}, fmt.Errorf("scan case: %w", err)
		}
		log.Traces = append(log.Traces, eventlog.Trace{Case: c, Activities: []string{}})
	}
	if err := cases.Err(); err != nil {
		return eventlog.Log{}, fmt.Errorf("iterate cases: %w", err)
	}

	events, err := s.db.QueryContext(ctx, `
		SELECT case_ordinal, activity
		FROM events
		WHERE log_id = ?
		ORDER BY case_ordinal ASC, position ASC
	`, id)
	if err != nil {
		return eventlog.Log{}, fmt.Errorf("query events: %w", err)
	}
	defer events.Close()
	for events.Next() {
		var ordinal int
		var activity string
		if err := events.Scan(&ordinal, &activity); err != nil {
			return eventlog.Log{}, fmt.Errorf("scan event: %w", err)
		}
		if ordinal < 0 || ordinal >= len(log.Traces) {
			return eventlog.Log{}, fmt.Errorf("read log %s: event for unknown case ordinal %d", id, ordinal)
		}
		log.Traces[ordinal].Activities = append(log.Traces[ordinal].Activities, activity)
	}
	if err := events.Err(); err != nil {
		return eventlog.Log{}, fmt.Errorf("iterate events: %w", err)
	}

	return log, nil
}

// ActivityCount is the number of events carrying one activity.
type ActivityCount struct {
	Activity string `json:"activity"`
	Count    int    `json:"count"`
}

// ActivityCounts returns per-activity event counts for a stored log, most
// frequent first, ties broken by activity.
func (s *Store) ActivityCounts(ctx context.Context, id string) ([]ActivityCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT activity, COUNT(*) AS n
		FROM events
		WHERE log_id = ?
		GROUP BY activity
		ORDER BY n DESC, activity COLLATE BINARY ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query activity counts: %w", err)
	}
	defer rows.Close()

	counts := []ActivityCount{}
	for rows.Next() {
		var c ActivityCount
		if err := rows.Scan(&c.Activity, &c.Count); err != nil {
			return nil, fmt.Errorf("scan activity count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activity counts: %w", err)
	}
	return counts, nil
}
