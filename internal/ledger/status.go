package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// ShareStatus is what one non-payer still owes the payer for an expense.
type ShareStatus struct {
	UserID    string
	Share     decimal.Decimal
	Paid      decimal.Decimal
	Remaining decimal.Decimal
}

// Settled reports whether the share is cleared within tolerance.
func (s ShareStatus) Settled() bool {
	return money.Cleared(s.Remaining)
}

// OutstandingShares reports, for every split entry other than the payer's own,
// how much has been paid back to the payer through completed settlements of
// this expense. Settlements of other expenses or to other users are ignored.
func OutstandingShares(expense *models.Expense, settlements []*models.Settlement) []ShareStatus {
	paid := make(map[string]decimal.Decimal)
	for _, s := range settlements {
		if s.ExpenseID != expense.ID || !s.Completed() || s.ToUserID != expense.PaidBy {
			continue
		}
		paid[s.FromUserID] = paid[s.FromUserID].Add(s.Amount)
	}

	statuses := make([]ShareStatus, 0, len(expense.Splits))
	for _, split := range expense.Splits {
		if split.UserID == expense.PaidBy {
			continue
		}
		p := paid[split.UserID]
		statuses = append(statuses, ShareStatus{
			UserID:    split.UserID,
			Share:     split.Share,
			Paid:      p,
			Remaining: split.Share.Sub(p),
		})
	}
	return statuses
}

// IsFullySettled reports whether every non-payer share of the expense has been
// matched by completed settlements to the payer. It is derived on demand and
// never cached, since settlements can arrive at any time.
func IsFullySettled(expense *models.Expense, settlements []*models.Settlement) bool {
	for _, s := range OutstandingShares(expense, settlements) {
		if !s.Settled() {
			return false
		}
	}
	return true
}

// SettlementsByExpense indexes completed expense-scoped settlements by expense ID.
func SettlementsByExpense(settlements []*models.Settlement) map[string][]*models.Settlement {
	out := make(map[string][]*models.Settlement)
	for _, s := range settlements {
		if s.ExpenseID == "" || !s.Completed() {
			continue
		}
		out[s.ExpenseID] = append(out[s.ExpenseID], s)
	}
	return out
}
