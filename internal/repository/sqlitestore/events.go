package sqlitestore

import (
	"context"
	"database/sql"

	"github.com/isdelr/storefront-be/internal/models"
)

// EventRepository stores the activity log in the events table.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates an EventRepository.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// Create logs a new event to the database.
func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO events (id, type, level, message, subject_id, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.SubjectID, event.CreatedAt.UTC(),
	)
	return err
}

// Recent retrieves the most recent events from the database.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, type, level, message, subject_id, created_at FROM events ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var subject sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &subject, &event.CreatedAt); err != nil {
			return nil, err
		}
		if subject.Valid {
			event.SubjectID = &subject.String
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
