package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/isdelr/storefront-be/internal/models"
	"github.com/isdelr/storefront-be/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturePublisher struct {
	mu       sync.Mutex
	messages [][]byte
}

func (p *capturePublisher) Publish(message []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
}

func TestEventServiceStoresAndPublishes(t *testing.T) {
	feed := &capturePublisher{}
	svc := NewEventService(newStores(t).Events, feed)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()

	subject := "user-1"
	require.NoError(t, svc.CreateEvent(ctx, "user.login", models.EventLevelInfo, "first", &subject))
	require.NoError(t, svc.CreateEvent(ctx, "product.delete", models.EventLevelWarn, "second", nil))

	events, err := svc.GetRecentEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "second", events[0].Message)
	assert.Nil(t, events[0].SubjectID)
	require.NotNil(t, events[1].SubjectID)
	assert.Equal(t, "user-1", *events[1].SubjectID)

	events, err = svc.GetRecentEvents(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.Len(t, feed.messages, 2)
	var msg struct {
		Action  string       `json:"action"`
		Payload models.Event `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(feed.messages[0], &msg))
	assert.Equal(t, websocket.ActionEvent, msg.Action)
	assert.Equal(t, "user.login", msg.Payload.Type)
}
