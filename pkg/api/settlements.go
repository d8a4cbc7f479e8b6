package api

import "github.com/shopspring/decimal"

type Settlement struct {
	ID         string          `json:"id"`
	GroupID    string          `json:"groupId"`
	ExpenseID  string          `json:"expenseId,omitempty"`
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	Status     string          `json:"status"`
	CreatedBy  string          `json:"createdBy"`
	CreatedAt  int64           `json:"createdAt"`
	SettledAt  int64           `json:"settledAt"`
}

// Quote is the obligation a settlement was measured against.
// Owed and AlreadyPaid are only set for expense-scoped settlements.
type Quote struct {
	ExpenseID   string          `json:"expenseId,omitempty"`
	Owed        decimal.Decimal `json:"owed"`
	AlreadyPaid decimal.Decimal `json:"alreadyPaid"`
	Remaining   decimal.Decimal `json:"remaining"`
}

type CreateSettlementRequest struct {
	GroupID string `json:"groupId"`
	// ExpenseID ties the payment to one expense; empty settles the general group debt.
	ExpenseID  string          `json:"expenseId,omitempty"`
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
	// SettledAt defaults to now.
	SettledAt int64 `json:"settledAt,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
	Quote      Quote      `json:"quote"`
}

// CheckSettlementRequest asks whether a settlement would be accepted without recording it.
type CheckSettlementRequest struct {
	GroupID    string          `json:"groupId"`
	ExpenseID  string          `json:"expenseId,omitempty"`
	FromUserID string          `json:"fromUserId"`
	ToUserID   string          `json:"toUserId"`
	Amount     decimal.Decimal `json:"amount"`
}

type CheckSettlementResponse struct {
	Admissible bool   `json:"admissible"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
	Quote      *Quote `json:"quote,omitempty"`
}

type ListGroupSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListGroupSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ListUserSettlementsRequest struct{}

type ListUserSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type GetPairwiseBalanceRequest struct {
	GroupID     string `json:"groupId"`
	OtherUserID string `json:"otherUserId"`
}

// GetPairwiseBalanceResponse is seen from the caller: a negative balance means
// the caller owes the other user, and Owes carries that amount.
type GetPairwiseBalanceResponse struct {
	Balance decimal.Decimal `json:"balance"`
	Owes    decimal.Decimal `json:"owes"`
	IsOwed  decimal.Decimal `json:"isOwed"`
}
