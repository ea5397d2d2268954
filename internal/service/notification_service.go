package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dpp-hub/portal-core/internal/activity"
	"github.com/dpp-hub/portal-core/internal/config"
	"github.com/dpp-hub/portal-core/internal/domain"
	"github.com/dpp-hub/portal-core/internal/events"
)

// NotificationChannel names a delivery route.
type NotificationChannel string

const (
	ChannelEmail   NotificationChannel = "email"
	ChannelWebhook NotificationChannel = "webhook"
)

// Notification is one outbound message about a ticket.
type Notification struct {
	Channel  NotificationChannel
	Target   string
	TenantID string
	TicketID string
	Event    events.EventType
	Subject  string
	Body     string
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Queue accepts notifications for asynchronous delivery.
type Queue interface {
	Enqueue(n Notification) bool
}

// NotificationService turns ticket events into outbound notifications.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	queue      Queue
}

// NewNotificationService creates the service. Without a queue notifications
// are handed to the log sender inline.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig, queue Queue) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
		queue:      queue,
	}
}

// RegisterHandlers subscribes to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketActivityRecorded, n.handleActivityRecorded)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	subject := fmt.Sprintf("[%s] %s", payload.ExternalKey, payload.Title)
	body := fmt.Sprintf("New %s priority return opened", payload.Priority)
	if payload.SLAResolutionAt != nil {
		body += fmt.Sprintf(", resolve by %s", payload.SLAResolutionAt.UTC().Format("2006-01-02 15:04 MST"))
	}
	n.dispatch(ctx, event, subject, body, ChannelEmail, ChannelWebhook)
	return nil
}

func (n *NotificationService) handleActivityRecorded(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketActivityPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	desc := activity.Describe(domain.ActivityLogEntry{
		ID:       payload.EntryID,
		TicketID: event.TicketID,
		Action:   payload.Action,
		Details:  payload.Details,
	})
	body := desc.Text
	if event.Actor.Name != nil {
		body = fmt.Sprintf("%s (by %s)", body, *event.Actor.Name)
	}
	n.dispatch(ctx, event, "Ticket updated", body, ChannelWebhook)
	return nil
}

func (n *NotificationService) dispatch(ctx context.Context, event events.Event, subject, body string, channels ...NotificationChannel) {
	for _, channel := range channels {
		target := n.target(channel)
		if target == "" {
			continue
		}
		note := Notification{
			Channel:  channel,
			Target:   target,
			TenantID: event.TenantID,
			TicketID: event.TicketID,
			Event:    event.Type,
			Subject:  subject,
			Body:     body,
		}
		if n.queue != nil {
			if !n.queue.Enqueue(note) {
				n.logger.Warn("notification queue full, dropping",
					zap.String("ticket_id", event.TicketID),
					zap.String("channel", string(channel)))
			}
			continue
		}
		_ = NewLogSender(n.logger).Send(ctx, note)
	}
}

func (n *NotificationService) target(channel NotificationChannel) string {
	switch channel {
	case ChannelEmail:
		return strings.TrimSpace(n.cfg.EmailFrom)
	case ChannelWebhook:
		return strings.TrimSpace(n.cfg.WebhookURL)
	default:
		return ""
	}
}

// LogSender is the stub delivery route: it only logs.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender builds a LogSender.
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send logs the notification.
func (s *LogSender) Send(_ context.Context, n Notification) error {
	s.logger.Info("notification",
		zap.String("channel", string(n.Channel)),
		zap.String("target", n.Target),
		zap.String("tenant_id", n.TenantID),
		zap.String("ticket_id", n.TicketID),
		zap.String("event_type", string(n.Event)),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body))
	return nil
}
