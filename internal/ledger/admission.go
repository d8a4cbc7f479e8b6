package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// Proposal is a settlement someone wants to record.
type Proposal struct {
	GroupID string
	// ExpenseID is optional; empty means a general group settlement.
	ExpenseID string
	From      string
	To        string
	Amount    decimal.Decimal
	// Requester is the authenticated caller. It must be From or To.
	Requester string
}

// View is the snapshot a check is evaluated against.
type View struct {
	// Group is nil when the group does not exist.
	Group *models.Group
	// Expense is the proposal's expense, nil when it does not exist or none was named.
	Expense *models.Expense
	// Expenses are all expenses of the group (used when no expense is named).
	Expenses []*models.Expense
	// Settlements are the group's settlements. Non-completed ones are ignored.
	Settlements []*models.Settlement
}

// Quote describes the obligation a proposal was measured against.
type Quote struct {
	// ExpenseID is set for expense-scoped checks.
	ExpenseID string
	// Owed and AlreadyPaid are only meaningful for expense-scoped checks.
	Owed        decimal.Decimal
	AlreadyPaid decimal.Decimal
	// Remaining is what From still owes To in the checked scope.
	Remaining decimal.Decimal
}

// CheckSettlement decides whether p may be recorded. Preconditions are evaluated
// in a fixed order and the first failure is returned as a *Rejection.
//
// With an expense, the payer may pay at most their share minus what they already
// paid toward it. Without one, the payer may pay at most their pairwise debt.
func CheckSettlement(p Proposal, v View) (Quote, error) {
	if !p.Amount.IsPositive() {
		return Quote{}, reject(ReasonInvalidAmount, "amount must be greater than 0")
	}
	if p.From == p.To {
		return Quote{}, reject(ReasonSelfSettlement, "cannot settle with yourself")
	}
	if v.Group == nil {
		return Quote{}, reject(ReasonGroupNotFound, "group %s not found", p.GroupID)
	}
	if p.Requester != p.From && p.Requester != p.To {
		return Quote{}, reject(ReasonForbidden, "you can only create settlements involving yourself")
	}
	if !v.Group.IsMember(p.From) || !v.Group.IsMember(p.To) {
		return Quote{}, reject(ReasonNotAMember, "both users must be members of the group")
	}

	var q Quote
	if p.ExpenseID != "" {
		e := v.Expense
		if e == nil {
			return Quote{}, reject(ReasonExpenseNotFound, "expense %s not found", p.ExpenseID)
		}
		if e.GroupID != p.GroupID {
			return Quote{}, reject(ReasonWrongGroup, "expense does not belong to this group")
		}
		split, ok := e.SplitFor(p.From)
		if !ok {
			return Quote{}, reject(ReasonNotInSplit, "payer is not part of this expense split")
		}
		q = Quote{ExpenseID: e.ID, Owed: split.Share}
		for _, s := range v.Settlements {
			if s.ExpenseID == e.ID && s.FromUserID == p.From && s.ToUserID == p.To && s.Completed() {
				q.AlreadyPaid = q.AlreadyPaid.Add(s.Amount)
			}
		}
		q.Remaining = q.Owed.Sub(q.AlreadyPaid)
	} else {
		balance := ComputePairwiseBalance(p.GroupID, p.From, p.To, v.Expenses, v.Settlements)
		// Only a debtor owes; a creditor has nothing to pay.
		if balance.IsNegative() {
			q.Remaining = balance.Neg()
		}
	}

	// A cleared obligation admits nothing further, not even a payment inside the tolerance.
	if money.Cleared(q.Remaining) || money.Exceeds(p.Amount, q.Remaining) {
		return q, overpayment(q, p.Amount)
	}
	return q, nil
}
