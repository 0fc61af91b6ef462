package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/repository"
	"github.com/isdelr/storefront-be/internal/repository/sqlitestore"
	"github.com/stretchr/testify/require"
)

func newStores(t *testing.T) repository.Stores {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlitestore.Migrate(context.Background(), db))
	return sqlitestore.New(db)
}

// countingUsers counts writes that reach the credential store.
type countingUsers struct {
	repository.UserRepository
	mu      sync.Mutex
	inserts int
}

func (c *countingUsers) Insert(ctx context.Context, user models.User) (models.User, error) {
	c.mu.Lock()
	c.inserts++
	c.mu.Unlock()
	return c.UserRepository.Insert(ctx, user)
}

func (c *countingUsers) insertCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inserts
}

// recordedEvents captures events instead of storing them.
type recordedEvents struct {
	mu     sync.Mutex
	events []models.Event
}

func (r *recordedEvents) CreateEvent(_ context.Context, eventType, level, message string, subjectID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, models.Event{Type: eventType, Level: level, Message: message, SubjectID: subjectID})
	return nil
}

func (r *recordedEvents) GetRecentEvents(context.Context, int) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Event(nil), r.events...), nil
}

func (r *recordedEvents) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
