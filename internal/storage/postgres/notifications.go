package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateNotification stores an inbox message.
func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	if n.Type == "" {
		n.Type = models.NotificationGeneral
	}

	_, err := s.pool.Exec(ctx,
		"INSERT INTO notifications (id, user_id, message, type, is_read, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		n.ID, n.UserID, n.Message, n.Type, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, message, type, is_read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return notifications, nil
}

// MarkNotificationRead flags a notification owned by userID as read.
func (s *Store) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	n := &models.Notification{}
	err := s.pool.QueryRow(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
		 RETURNING id, user_id, message, type, is_read, created_at`,
		notificationID, userID,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if isNoRows(err) {
		return nil, notFound("notification", notificationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return n, nil
}
