package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
)

// NotificationService serves the caller's inbox.
type NotificationService struct {
	store  storage.NotificationStore
	logger *slog.Logger
}

func NewNotificationService(store storage.NotificationStore, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{store: store, logger: logger}
}

// ListNotifications returns the caller's notifications, newest first.
// UnreadCount always counts the whole inbox.
func (s *NotificationService) ListNotifications(ctx context.Context, req *connect.Request[api.ListNotificationsRequest]) (*connect.Response[api.ListNotificationsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.ListNotificationsResponse{Notifications: []api.Notification{}}
	for _, n := range notifications {
		if !n.IsRead {
			resp.UnreadCount++
		} else if req.Msg.UnreadOnly {
			continue
		}
		resp.Notifications = append(resp.Notifications, toAPINotification(n))
	}
	return connect.NewResponse(resp), nil
}

func (s *NotificationService) MarkNotificationRead(ctx context.Context, req *connect.Request[api.MarkNotificationReadRequest]) (*connect.Response[api.MarkNotificationReadResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.store.MarkNotificationRead(ctx, req.Msg.NotificationID, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.MarkNotificationReadResponse{Notification: toAPINotification(n)}), nil
}
