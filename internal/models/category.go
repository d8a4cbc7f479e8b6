package models

// Category is a user-defined label for expenses.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string
	CreatedAt   int64
}
