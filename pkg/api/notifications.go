package api

type Notification struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	IsRead    bool   `json:"isRead"`
	CreatedAt int64  `json:"createdAt"`
}

type ListNotificationsRequest struct {
	UnreadOnly bool `json:"unreadOnly,omitempty"`
}

type ListNotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
}

type MarkNotificationReadRequest struct {
	NotificationID string `json:"notificationId"`
}

type MarkNotificationReadResponse struct {
	Notification Notification `json:"notification"`
}
