package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dpp-hub/portal-core/internal/events"
)

func TestDispatcherContinuesAfterHandlerError(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)

	var calls []string
	dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	dispatcher.Subscribe(events.EventTicketCreated, func(context.Context, events.Event) error {
		calls = append(calls, "second")
		return nil
	})
	dispatcher.Subscribe(events.EventTicketActivityRecorded, func(context.Context, events.Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := dispatcher.Publish(context.Background(), events.Event{Type: events.EventTicketCreated})
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, calls)
}
