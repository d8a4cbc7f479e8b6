// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

// ErrNotFound is wrapped by every store method that looks up a missing record.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("already exists")

// SettlementFilter narrows ListSettlements. Empty fields match everything.
type SettlementFilter struct {
	GroupID    string
	ExpenseID  string
	FromUserID string
	ToUserID   string
	// UserID matches settlements where the user is either party.
	UserID string
	Status models.SettlementStatus
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	// GetUserByEmail returns nil, nil when no user has that email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUsersByIDs returns the users that exist among ids, keyed by ID.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a new group. The group.ID field will be populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	// ListGroupsForUser returns the groups the user is a member of.
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	// UpdateGroup replaces name, description and members.
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, groupID string) error
	AddGroupMembers(ctx context.Context, groupID string, userIDs []string) error
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
}

// ExpenseStore persists expenses with their splits and tags.
type ExpenseStore interface {
	// CreateExpense persists a new expense. ID and timestamps are populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	// UpdateExpense replaces every mutable field, including splits and tags.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error
	// ListExpensesByGroup returns the group's expenses, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
}

// SettlementStore persists settlements. There is no update or delete path.
type SettlementStore interface {
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	// ListSettlements returns matching settlements, newest first.
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)
}

// CategoryStore persists user-defined expense categories.
type CategoryStore interface {
	// CreateCategory returns ErrConflict when the user already has a category with
	// the same name (case-insensitive).
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)
	ListCategoriesByUser(ctx context.Context, userID string) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, categoryID string) error
}

// NotificationStore persists per-user inbox messages.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID string) ([]*models.Notification, error)
	// MarkNotificationRead flags the notification as read if it belongs to userID.
	MarkNotificationRead(ctx context.Context, notificationID, userID string) (*models.Notification, error)
}

// Store defines the full storage surface used by the services.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL)
// without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore
	SettlementStore
	CategoryStore
	NotificationStore

	// Close releases any resources held by the store.
	Close() error
}
