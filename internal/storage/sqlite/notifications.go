package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/settleup/internal/models"
)

// CreateNotification stores an inbox message.
func (s *SQLiteStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.CreatedAt == 0 {
		n.CreatedAt = time.Now().Unix()
	}
	if n.Type == "" {
		n.Type = models.NotificationGeneral
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notifications (id, user_id, message, type, is_read, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, n.UserID, n.Message, n.Type, n.IsRead, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns the user's notifications, newest first.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, type, is_read, created_at
		 FROM notifications WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`,
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
func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, notificationID, userID string) (*models.Notification, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?",
		notificationID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	if err := checkAffected(res, "notification", notificationID); err != nil {
		return nil, err
	}

	n := &models.Notification{}
	err = s.db.QueryRowContext(ctx,
		"SELECT id, user_id, message, type, is_read, created_at FROM notifications WHERE id = ?",
		notificationID,
	).Scan(&n.ID, &n.UserID, &n.Message, &n.Type, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}
