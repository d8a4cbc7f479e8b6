package service

import (
	"context"
	"log/slog"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/logging"
)

// Notifier fans ledger changes out to the event publisher and the users' inboxes.
// Delivery is best effort: failures are logged and never fail the calling RPC.
// A nil *Notifier drops everything.
type Notifier struct {
	store     storage.NotificationStore
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewNotifier creates a notifier. publisher and m may be nil.
func NewNotifier(store storage.NotificationStore, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{store: store, publisher: publisher, metrics: m, logger: logger}
}

// Publish sends a realtime event to room.
func (n *Notifier) Publish(ctx context.Context, t events.Type, room string, payload any) {
	if n == nil || n.publisher == nil {
		return
	}
	// The request may finish before the broker answers.
	ctx = context.WithoutCancel(ctx)
	err := n.publisher.Publish(ctx, events.New(t, room, payload))
	n.metrics.ObserveEvent(string(t), err)
	if err != nil {
		n.logger.WarnContext(ctx, "Failed to publish event", "type", t, "room", room, logging.KeyError, err)
	}
}

// Notify stores message in the inbox of every user in userIDs and pushes it to
// their personal rooms.
func (n *Notifier) Notify(ctx context.Context, kind, message string, userIDs ...string) {
	if n == nil || n.store == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	for _, userID := range userIDs {
		note := &models.Notification{UserID: userID, Message: message, Type: kind}
		if err := n.store.CreateNotification(ctx, note); err != nil {
			n.logger.WarnContext(ctx, "Failed to store notification", logging.KeyUserID, userID, logging.KeyError, err)
			continue
		}
		n.Publish(ctx, events.Notification, userID, toAPINotification(note))
	}
}

// others returns members without the excluded user IDs.
func others(members []string, exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	var out []string
	for _, m := range members {
		if !skip[m] {
			out = append(out, m)
		}
	}
	return out
}
