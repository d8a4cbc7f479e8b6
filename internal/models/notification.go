package models

// Notification kinds.
const (
	NotificationGeneral    = "general"
	NotificationExpense    = "expense"
	NotificationSettlement = "settlement"
	NotificationGroup      = "group"
)

// Notification is an inbox message for one user.
type Notification struct {
	ID        string
	UserID    string
	Message   string
	Type      string
	IsRead    bool
	CreatedAt int64
}
