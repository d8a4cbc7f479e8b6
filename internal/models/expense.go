package models

import "github.com/shopspring/decimal"

// Expense is an amount paid by one group member and split among members.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group the expense belongs to.
	GroupID string

	// Description is the human-readable label (e.g., "Groceries").
	Description string

	// Amount is the total paid. Always positive.
	Amount decimal.Decimal

	// PaidBy is the user ID of the member who paid.
	PaidBy string

	// Splits records how much each member owes. Order is irrelevant and each
	// user appears at most once. Shares sum to Amount within money.Tolerance.
	Splits []Split

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CategoryID optionally references a Category.
	CategoryID string

	// Receipt is an optional reference to an uploaded receipt.
	Receipt *Receipt

	// Tags are free-form labels used for filtering and search.
	Tags []string

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64
	UpdatedAt int64
}

// Split is one member's share of an expense.
type Split struct {
	UserID string
	Share  decimal.Decimal
}

// Receipt references a receipt file held by an external upload service.
type Receipt struct {
	URL      string
	PublicID string
	Filename string
}

// SplitFor returns the split entry for userID, if any.
func (e *Expense) SplitFor(userID string) (Split, bool) {
	for _, s := range e.Splits {
		if s.UserID == userID {
			return s, true
		}
	}
	return Split{}, false
}
