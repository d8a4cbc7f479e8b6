package ledger

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// Source is the read side of the persistence layer the ledger needs.
// Missing records are reported by wrapping storage.ErrNotFound.
type Source interface {
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error)
}

// LoadView fetches the snapshot needed to check p. Lookups run concurrently;
// a missing group or expense leaves the corresponding field nil so that
// CheckSettlement can report it in its usual order.
func LoadView(ctx context.Context, src Source, p Proposal) (View, error) {
	var v View
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		group, err := src.GetGroup(ctx, p.GroupID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load group: %w", err)
		}
		v.Group = group
		return nil
	})

	if p.ExpenseID != "" {
		g.Go(func() error {
			expense, err := src.GetExpense(ctx, p.ExpenseID)
			if errors.Is(err, storage.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("load expense: %w", err)
			}
			v.Expense = expense
			return nil
		})
		g.Go(func() error {
			settlements, err := src.ListSettlements(ctx, storage.SettlementFilter{
				ExpenseID:  p.ExpenseID,
				FromUserID: p.From,
				ToUserID:   p.To,
				Status:     models.SettlementCompleted,
			})
			if err != nil {
				return fmt.Errorf("load expense settlements: %w", err)
			}
			v.Settlements = settlements
			return nil
		})
	} else {
		g.Go(func() error {
			expenses, err := src.ListExpensesByGroup(ctx, p.GroupID)
			if err != nil {
				return fmt.Errorf("load expenses: %w", err)
			}
			v.Expenses = expenses
			return nil
		})
		g.Go(func() error {
			settlements, err := src.ListSettlements(ctx, storage.SettlementFilter{
				GroupID: p.GroupID,
				Status:  models.SettlementCompleted,
			})
			if err != nil {
				return fmt.Errorf("load group settlements: %w", err)
			}
			v.Settlements = settlements
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return v, nil
}
