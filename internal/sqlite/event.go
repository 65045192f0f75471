package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rpggio/roundup/internal/domain/feed"
)

// EventRepository implements feed.Repository for SQLite
type EventRepository struct {
	db *DB
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db}
}

// Insert stores a feed event; the payload is kept as a JSON object
func (r *EventRepository) Insert(ctx context.Context, evt *feed.Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode event payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO social_events (id, group_id, user_id, type, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, evt.ID, evt.GroupID, evt.UserID, string(evt.Type), string(payload), formatTime(evt.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// List returns a group's most recent events, newest first
func (r *EventRepository) List(ctx context.Context, groupID string, limit int) ([]feed.Event, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, group_id, user_id, type, payload, created_at
		FROM social_events
		WHERE group_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, groupID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := []feed.Event{}
	for rows.Next() {
		var (
			evt       feed.Event
			typ       string
			payload   string
			createdAt string
		)
		if err := rows.Scan(&evt.ID, &evt.GroupID, &evt.UserID, &typ, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		evt.Type = feed.EventType(typ)
		if err := json.Unmarshal([]byte(payload), &evt.Payload); err != nil {
			return nil, fmt.Errorf("failed to decode event payload: %w", err)
		}
		if evt.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}
