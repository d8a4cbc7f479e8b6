package service

import (
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) api.Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Members:     members,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

// toAPIExpense converts e. settlements are the expense's settlements and decide
// IsFullySettled.
func toAPIExpense(e *models.Expense, settlements []*models.Settlement) api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{UserID: s.UserID, Share: s.Share}
	}
	out := api.Expense{
		ID:             e.ID,
		GroupID:        e.GroupID,
		Description:    e.Description,
		Amount:         e.Amount,
		PaidBy:         e.PaidBy,
		Splits:         splits,
		CreatedBy:      e.CreatedBy,
		CategoryID:     e.CategoryID,
		Tags:           e.Tags,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
		IsFullySettled: ledger.IsFullySettled(e, settlements),
	}
	if e.Receipt != nil {
		out.Receipt = &api.Receipt{URL: e.Receipt.URL, PublicID: e.Receipt.PublicID, Filename: e.Receipt.Filename}
	}
	return out
}

func toAPIShareStatuses(statuses []ledger.ShareStatus) []api.ShareStatus {
	out := make([]api.ShareStatus, len(statuses))
	for i, s := range statuses {
		out[i] = api.ShareStatus{
			UserID:    s.UserID,
			Share:     s.Share,
			Paid:      s.Paid,
			Remaining: s.Remaining,
			Settled:   s.Settled(),
		}
	}
	return out
}

func fromAPISplits(splits []api.Split) []models.Split {
	out := make([]models.Split, len(splits))
	for i, s := range splits {
		out[i] = models.Split{UserID: s.UserID, Share: s.Share}
	}
	return out
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:         s.ID,
		GroupID:    s.GroupID,
		ExpenseID:  s.ExpenseID,
		FromUserID: s.FromUserID,
		ToUserID:   s.ToUserID,
		Amount:     s.Amount,
		Note:       s.Note,
		Status:     string(s.Status),
		CreatedBy:  s.CreatedBy,
		CreatedAt:  s.CreatedAt,
		SettledAt:  s.SettledAt,
	}
}

func toAPISettlements(list []*models.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(list))
	for i, s := range list {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPIQuote(q ledger.Quote) api.Quote {
	return api.Quote{
		ExpenseID:   q.ExpenseID,
		Owed:        q.Owed,
		AlreadyPaid: q.AlreadyPaid,
		Remaining:   q.Remaining,
	}
}

func toAPICategory(c *models.Category) api.Category {
	return api.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func toAPINotification(n *models.Notification) api.Notification {
	return api.Notification{
		ID:        n.ID,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}
