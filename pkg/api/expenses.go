package api

import "github.com/shopspring/decimal"

type Split struct {
	UserID string          `json:"userId"`
	Share  decimal.Decimal `json:"share"`
}

type Receipt struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId,omitempty"`
	Filename string `json:"filename,omitempty"`
}

// ShareStatus is how much of one member's share has been paid back to the payer.
type ShareStatus struct {
	UserID    string          `json:"userId"`
	Share     decimal.Decimal `json:"share"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
	Settled   bool            `json:"settled"`
}

type Expense struct {
	ID             string          `json:"id"`
	GroupID        string          `json:"groupId"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	PaidBy         string          `json:"paidBy"`
	Splits         []Split         `json:"splits"`
	CreatedBy      string          `json:"createdBy"`
	CategoryID     string          `json:"categoryId,omitempty"`
	Receipt        *Receipt        `json:"receipt,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	CreatedAt      int64           `json:"createdAt"`
	UpdatedAt      int64           `json:"updatedAt"`
	IsFullySettled bool            `json:"isFullySettled"`
	// Outstanding is only filled in by GetExpense.
	Outstanding []ShareStatus `json:"outstanding,omitempty"`
}

// Item is one line of an itemized bill, shared equally by AssignedTo.
type Item struct {
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assignedTo"`
}

// CreateExpenseRequest takes the shares in one of three forms: explicit Splits,
// an equal split among SplitAmong, or itemized Items where whatever the items
// do not cover (tax, tip) is spread in proportion.
type CreateExpenseRequest struct {
	GroupID     string          `json:"groupId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	// PaidBy defaults to the caller.
	PaidBy     string   `json:"paidBy,omitempty"`
	Splits     []Split  `json:"splits,omitempty"`
	SplitAmong []string `json:"splitAmong,omitempty"`
	Items      []Item   `json:"items,omitempty"`
	CategoryID string   `json:"categoryId,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

// UpdateExpenseRequest changes only the fields that are set. Splits and Tags
// replace the stored lists when present.
type UpdateExpenseRequest struct {
	ExpenseID   string           `json:"expenseId"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	PaidBy      *string          `json:"paidBy,omitempty"`
	Splits      []Split          `json:"splits,omitempty"`
	CategoryID  *string          `json:"categoryId,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

// ExpenseFilter narrows ListExpenses. Zero values match everything.
type ExpenseFilter struct {
	CategoryID string           `json:"categoryId,omitempty"`
	MinAmount  *decimal.Decimal `json:"minAmount,omitempty"`
	MaxAmount  *decimal.Decimal `json:"maxAmount,omitempty"`
	// StartDate and EndDate are inclusive Unix timestamps.
	StartDate int64 `json:"startDate,omitempty"`
	EndDate   int64 `json:"endDate,omitempty"`
	// Search matches description and tags, case-insensitively.
	Search string   `json:"search,omitempty"`
	PaidBy string   `json:"paidBy,omitempty"`
	Tags   []string `json:"tags,omitempty"`
}

type ListExpensesRequest struct {
	GroupID string        `json:"groupId"`
	Filter  ExpenseFilter `json:"filter"`
	// SortBy is createdAt (default), amount or description.
	SortBy string `json:"sortBy,omitempty"`
	// SortOrder is desc (default) or asc.
	SortOrder string `json:"sortOrder,omitempty"`
	Page      int    `json:"page,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

type ListExpensesResponse struct {
	Expenses   []Expense `json:"expenses"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

type SearchExpensesRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type SearchExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type AttachReceiptRequest struct {
	ExpenseID string  `json:"expenseId"`
	Receipt   Receipt `json:"receipt"`
}

type AttachReceiptResponse struct {
	Expense Expense `json:"expense"`
}

type RemoveReceiptRequest struct {
	ExpenseID string `json:"expenseId"`
}

type RemoveReceiptResponse struct {
	Expense Expense `json:"expense"`
}
