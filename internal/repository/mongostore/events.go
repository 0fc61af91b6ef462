package mongostore

import (
	"context"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type eventDoc struct {
	ID        string    `bson:"_id"`
	Type      string    `bson:"type"`
	Level     string    `bson:"level"`
	Message   string    `bson:"message"`
	SubjectID *string   `bson:"subjectId,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

// EventRepository stores the activity log.
type EventRepository struct {
	coll *mongo.Collection
}

// NewEventRepository creates an EventRepository on coll.
func NewEventRepository(coll *mongo.Collection) *EventRepository {
	return &EventRepository{coll: coll}
}

// Create appends an event.
func (r *EventRepository) Create(ctx context.Context, event models.Event) error {
	_, err := r.coll.InsertOne(ctx, eventDoc{
		ID:        event.ID,
		Type:      event.Type,
		Level:     event.Level,
		Message:   event.Message,
		SubjectID: event.SubjectID,
		CreatedAt: event.CreatedAt,
	})
	return err
}

// Recent returns up to limit events, newest first.
func (r *EventRepository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, models.Event{
			ID:        d.ID,
			Type:      d.Type,
			Level:     d.Level,
			Message:   d.Message,
			SubjectID: d.SubjectID,
			CreatedAt: d.CreatedAt,
		})
	}
	return events, nil
}
