package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID    string
	Balance   decimal.Decimal // Positive = owed money, Negative = owes money
	TotalPaid decimal.Decimal // Total amount paid for expenses
	TotalOwed decimal.Decimal // Total of this member's shares
}

// Balances maps user ID to balance.
type Balances map[string]*MemberBalance

// DebtEdge represents a debt from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount decimal.Decimal
}

func (b Balances) get(userID string) *MemberBalance {
	bal, ok := b[userID]
	if !ok {
		bal = &MemberBalance{UserID: userID}
		b[userID] = bal
	}
	return bal
}

// Total is the sum of every balance. It is zero for any consistent ledger.
func (b Balances) Total() decimal.Decimal {
	total := decimal.Zero
	for _, bal := range b {
		total = total.Add(bal.Balance)
	}
	return total
}

// Sorted returns the balances ordered by user ID.
func (b Balances) Sorted() []MemberBalance {
	out := make([]MemberBalance, 0, len(b))
	for _, bal := range b {
		out = append(out, *bal)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

// ComputeGroupBalances folds expenses and completed settlements into per-user balances.
//
// Algorithm:
//   - every member starts at zero
//   - for each expense: payer +amount (paid), each split user -share (owed)
//   - for each completed settlement: from +amount, to -amount
//
// Users that appear in expenses or settlements but are no longer members are
// included as well, so the balances always sum to zero.
func ComputeGroupBalances(expenses []*models.Expense, settlements []*models.Settlement, members []string) Balances {
	balances := make(Balances, len(members))
	for _, m := range members {
		balances.get(m)
	}

	for _, e := range expenses {
		payer := balances.get(e.PaidBy)
		payer.Balance = payer.Balance.Add(e.Amount)
		payer.TotalPaid = payer.TotalPaid.Add(e.Amount)

		for _, s := range e.Splits {
			bal := balances.get(s.UserID)
			bal.Balance = bal.Balance.Sub(s.Share)
			bal.TotalOwed = bal.TotalOwed.Add(s.Share)
		}
	}

	// Payer's balance improves (they effectively "paid" to settle debt),
	// receiver's balance decreases (they received payment).
	for _, s := range settlements {
		if !s.Completed() {
			continue
		}
		from := balances.get(s.FromUserID)
		from.Balance = from.Balance.Add(s.Amount)
		to := balances.get(s.ToUserID)
		to.Balance = to.Balance.Sub(s.Amount)
	}

	return balances
}

// ComputePairwiseBalance returns the net position of from toward to inside one group,
// considering only their mutual exposure:
//   - an expense paid by to in which from has a share: -share
//   - an expense paid by from in which to has a share: +share
//   - a completed settlement from -> to: +amount, to -> from: -amount
//
// A negative result means from owes to that much.
func ComputePairwiseBalance(groupID, from, to string, expenses []*models.Expense, settlements []*models.Settlement) decimal.Decimal {
	balance := decimal.Zero

	for _, e := range expenses {
		if e.GroupID != groupID {
			continue
		}
		switch e.PaidBy {
		case to:
			if s, ok := e.SplitFor(from); ok {
				balance = balance.Sub(s.Share)
			}
		case from:
			if s, ok := e.SplitFor(to); ok {
				balance = balance.Add(s.Share)
			}
		}
	}

	for _, s := range settlements {
		if s.GroupID != groupID || !s.Completed() {
			continue
		}
		switch {
		case s.FromUserID == from && s.ToUserID == to:
			balance = balance.Add(s.Amount)
		case s.FromUserID == to && s.ToUserID == from:
			balance = balance.Sub(s.Amount)
		}
	}

	return balance
}

// GroupPosition is one user's balance inside one group.
type GroupPosition struct {
	GroupID string
	MemberBalance
}

// ComputeUserBalances returns userID's balance in each of the given groups.
// expenses and settlements may span all of those groups.
func ComputeUserBalances(userID string, groups []*models.Group, expenses []*models.Expense, settlements []*models.Settlement) []GroupPosition {
	byGroupExp := make(map[string][]*models.Expense)
	for _, e := range expenses {
		byGroupExp[e.GroupID] = append(byGroupExp[e.GroupID], e)
	}
	byGroupSet := make(map[string][]*models.Settlement)
	for _, s := range settlements {
		byGroupSet[s.GroupID] = append(byGroupSet[s.GroupID], s)
	}

	positions := make([]GroupPosition, 0, len(groups))
	for _, g := range groups {
		balances := ComputeGroupBalances(byGroupExp[g.ID], byGroupSet[g.ID], g.Members)
		pos := GroupPosition{GroupID: g.ID, MemberBalance: MemberBalance{UserID: userID}}
		if bal, ok := balances[userID]; ok {
			pos.MemberBalance = *bal
		}
		positions = append(positions, pos)
	}
	return positions
}

// SimplifyDebts turns net balances into a short list of payments that would
// settle the group, matching the largest debtors with the largest creditors.
func SimplifyDebts(balances Balances) []DebtEdge {
	var creditors, debtors []MemberBalance
	for _, bal := range balances {
		switch {
		case bal.Balance.GreaterThan(money.Tolerance):
			creditors = append(creditors, *bal)
		case bal.Balance.LessThan(money.Tolerance.Neg()):
			debtors = append(debtors, *bal)
		}
	}
	byMagnitude := func(list []MemberBalance) {
		sort.Slice(list, func(i, j int) bool {
			ai, aj := list[i].Balance.Abs(), list[j].Balance.Abs()
			if !ai.Equal(aj) {
				return ai.GreaterThan(aj)
			}
			return list[i].UserID < list[j].UserID
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	debtorBalance := make(map[string]decimal.Decimal, len(debtors))
	for _, d := range debtors {
		debtorBalance[d.UserID] = d.Balance.Neg() // Make positive
	}
	creditorBalance := make(map[string]decimal.Decimal, len(creditors))
	for _, c := range creditors {
		creditorBalance[c.UserID] = c.Balance
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor := debtors[i].UserID
		creditor := creditors[j].UserID

		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debtorBalance[debtor], creditorBalance[creditor])
		if amount.GreaterThan(money.Tolerance) {
			edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: money.Round(amount)})
		}

		debtorBalance[debtor] = debtorBalance[debtor].Sub(amount)
		creditorBalance[creditor] = creditorBalance[creditor].Sub(amount)

		if money.Cleared(debtorBalance[debtor]) {
			i++
		}
		if money.Cleared(creditorBalance[creditor]) {
			j++
		}
	}
	return edges
}
