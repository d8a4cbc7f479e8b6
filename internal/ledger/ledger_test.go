package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// Shared fixtures for the ledger tests.

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(id, group, paidBy, amount string, splits ...models.Split) *models.Expense {
	return &models.Expense{
		ID:      id,
		GroupID: group,
		PaidBy:  paidBy,
		Amount:  amt(amount),
		Splits:  splits,
	}
}

func share(user, s string) models.Split {
	return models.Split{UserID: user, Share: amt(s)}
}

func settled(group, expenseID, from, to, amount string) *models.Settlement {
	return &models.Settlement{
		GroupID:    group,
		ExpenseID:  expenseID,
		FromUserID: from,
		ToUserID:   to,
		Amount:     amt(amount),
		Status:     models.SettlementCompleted,
	}
}

func group(id string, members ...string) *models.Group {
	return &models.Group{ID: id, Members: members, CreatedBy: members[0]}
}
