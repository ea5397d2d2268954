package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/dpp-hub/portal-core/internal/service"
)

// NotificationWorker delivers queued notifications off the request path.
type NotificationWorker struct {
	queue  chan service.Notification
	sender service.Sender
	logger *zap.Logger
}

// NewNotificationWorker builds a worker with a bounded queue.
func NewNotificationWorker(sender service.Sender, logger *zap.Logger, buffer int) *NotificationWorker {
	if buffer <= 0 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		queue:  make(chan service.Notification, buffer),
		sender: sender,
		logger: logger,
	}
}

// Enqueue schedules a notification. It never blocks and reports false when
// the queue is full.
func (w *NotificationWorker) Enqueue(n service.Notification) bool {
	select {
	case w.queue <- n:
		return true
	default:
		return false
	}
}

// Run delivers notifications until ctx is done, then drains what is already
// queued.
func (w *NotificationWorker) Run(ctx context.Context) {
	for {
		select {
		case n := <-w.queue:
			w.deliver(ctx, n)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *NotificationWorker) drain() {
	ctx := context.Background()
	for {
		select {
		case n := <-w.queue:
			w.deliver(ctx, n)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, n service.Notification) {
	if err := w.sender.Send(ctx, n); err != nil {
		w.logger.Warn("notification delivery failed",
			zap.String("ticket_id", n.TicketID),
			zap.String("channel", string(n.Channel)),
			zap.Error(err))
	}
}

// StartNotificationWorker registers notification handlers and runs the worker
// in the background.
func StartNotificationWorker(ctx context.Context, notifications *service.NotificationService, w *NotificationWorker) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	if w != nil {
		go w.Run(ctx)
	}
}
