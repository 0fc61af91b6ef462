package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/storefront-be/internal/auth"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/isdelr/storefront-be/internal/websocket"
	"github.com/rs/zerolog/log"
)

// DefaultEventLimit is used when a caller asks for a non-positive number of events.
const DefaultEventLimit = 20

// MaxEventLimit caps a single page of events.
const MaxEventLimit = 200

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, subjectID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// Publisher receives every stored event, encoded as a websocket message.
type Publisher interface {
	Publish(message []byte)
}

// EventService provides business logic for the activity log.
type EventService struct {
	repo repository.EventRepository
	feed Publisher
	now  func() time.Time
}

// NewEventService creates a new EventService. feed may be nil.
func NewEventService(repo repository.EventRepository, feed Publisher) *EventService {
	return &EventService{repo: repo, feed: feed, now: time.Now}
}

// CreateEvent stores a new event and pushes it to the live feed.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, subjectID *string) error {
	event := models.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Level:     level,
		Message:   message,
		SubjectID: subjectID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, event); err != nil {
		return fmt.Errorf("store event: %w", err)
	}

	if s.feed != nil {
		payload, err := json.Marshal(websocket.Message{Action: websocket.ActionEvent, Payload: event})
		if err != nil {
			return fmt.Errorf("encode event: %w", err)
		}
		s.feed.Publish(payload)
	}
	return nil
}

// GetRecentEvents retrieves the most recent events.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 {
		limit = DefaultEventLimit
	}
	if limit > MaxEventLimit {
		limit = MaxEventLimit
	}
	return s.repo.Recent(ctx, limit)
}

// record stores an event on behalf of another operation. Failures are logged
// only, since the operation itself already succeeded.
func record(ctx context.Context, events EventServiceProvider, eventType, level, message string, subjectID *string) {
	if events == nil {
		return
	}
	if err := events.CreateEvent(ctx, eventType, level, message, subjectID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record event")
	}
}

// actor returns the authenticated caller's id, if any.
func actor(ctx context.Context) *string {
	if id, ok := auth.IdentityFromContext(ctx); ok {
		return &id.SubjectID
	}
	return nil
}
