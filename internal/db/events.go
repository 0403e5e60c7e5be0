package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ---------------------------------------------------------------------------
// Audit events
// ---------------------------------------------------------------------------

// RecordEvent appends an event to the audit trail. Events are never
// updated or deleted, including when their project is deleted.
func (d *DB) RecordEvent(ctx context.Context, level, eventType, projectID, message string) error {
	if !ValidLevel(level) {
		return fmt.Errorf("record event: invalid level %q", level)
	}
	if !ValidEventType(eventType) {
		return fmt.Errorf("record event: invalid event type %q", eventType)
	}
	_, err := d.conn.ExecContext(ctx,
		`INSERT INTO events (ts, level, event_type, project_id, message)
		 VALUES (?, ?, ?, ?, ?)`,
		formatTime(time.Now()), level, eventType, nullString(projectID), message,
	)
	if err != nil {
		return &PersistenceError{Op: "record event", ID: projectID, Err: err}
	}
	return nil
}

// ListEvents returns the newest events first. An empty projectID lists
// events for every project. A limit of zero or less means no limit.
func (d *DB) ListEvents(ctx context.Context, projectID string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.conn.QueryContext(ctx,
		`SELECT id, ts, level, event_type, project_id, message
		 FROM events
		 WHERE (? = '' OR project_id = ?)
		 ORDER BY ts DESC, id DESC
		 LIMIT ?`,
		projectID, projectID, limit,
	)
	if err != nil {
		return nil, &PersistenceError{Op: "list events", Err: err}
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev  Event
			ts  string
			pid sql.NullString
		)
		if err := rows.Scan(&ev.ID, &ts, &ev.Level, &ev.EventType, &pid, &ev.Message); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		if ev.Ts, err = parseTime(ts); err != nil {
			return nil, err
		}
		ev.ProjectID = pid.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// nullString converts a Go string to sql.NullString (empty string -> NULL).
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
