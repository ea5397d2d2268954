package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/config"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/events"
	"github.com/dpp-hub/portal-core/internal/service"
)

func TestNotificationsForTicketCreated(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	queue := &recordingQueue{}
	svc := service.NewNotificationService(dispatcher, nil, config.NotificationConfig{
		EmailFrom:  "support@acme.com",
		WebhookURL: "https://hooks.acme.com/returns",
	}, queue)
	svc.RegisterHandlers()

	deadline := time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketCreated,
		TenantID: "tenant-1",
		TicketID: "ticket-1",
		Payload: events.TicketCreatedPayload{
			ExternalKey:     "RET-20240301-ABC123",
			Priority:        domain.TicketPriorityHigh,
			Title:           "Broken zipper",
			SLAResolutionAt: &deadline,
		},
	}))

	sent := queue.all()
	require.Len(t, sent, 2)
	require.Equal(t, service.ChannelEmail, sent[0].Channel)
	require.Equal(t, service.ChannelWebhook, sent[1].Channel)
	require.Equal(t, "[RET-20240301-ABC123] Broken zipper", sent[0].Subject)
	require.Equal(t, "New high priority return opened, resolve by 2024-03-02 09:00 UTC", sent[0].Body)
}

func TestNotificationsForActivitySkipUnconfiguredChannels(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	queue := &recordingQueue{}
	svc := service.NewNotificationService(dispatcher, nil, config.NotificationConfig{
		WebhookURL: "https://hooks.acme.com/returns",
	}, queue)
	svc.RegisterHandlers()

	actor := "Dana"
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventTicketActivityRecorded,
		TenantID: "tenant-1",
		TicketID: "ticket-1",
		Actor:    events.Actor{Name: &actor},
		Payload: events.TicketActivityPayload{
			EntryID: "entry-1",
			Action:  domain.ActionAssigned,
			Details: map[string]any{"name": "Sam"},
		},
	}))

	sent := queue.all()
	require.Len(t, sent, 1)
	require.Equal(t, service.ChannelWebhook, sent[0].Channel)
	require.Equal(t, "Assigned to Sam (by Dana)", sent[0].Body)
}

type recordingQueue struct {
	mu   sync.Mutex
	sent []service.Notification
}

func (q *recordingQueue) Enqueue(n service.Notification) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
	return true
}

func (q *recordingQueue) all() []service.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]service.Notification(nil), q.sent...)
}
