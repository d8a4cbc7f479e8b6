package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of a settlement.
type SettlementStatus string

const (
	// SettlementPending is accepted by the schema but never produced;
	// pending settlements are ignored by every balance computation.
	SettlementPending SettlementStatus = "pending"

	// SettlementCompleted settlements count toward balances.
	SettlementCompleted SettlementStatus = "completed"
)

// Settlement represents a payment between group members to clear debts.
// Settlements are append-only: once recorded they are never updated or deleted.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// ExpenseID optionally ties the payment to one expense.
	// Empty means a general settlement within the group.
	ExpenseID string

	// FromUserID is the user who paid (debtor settling up).
	FromUserID string

	// ToUserID is the user who received payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount.
	Amount decimal.Decimal

	// Note is an optional description for the settlement.
	Note string

	// Status is always SettlementCompleted for settlements created by the service.
	Status SettlementStatus

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// SettledAt is the Unix timestamp when the payment happened.
	SettledAt int64
}

// Completed reports whether the settlement counts toward balances.
func (s *Settlement) Completed() bool {
	return s.Status == SettlementCompleted
}
