package export

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

// Uncategorized labels expenses without a category, or whose category is gone.
const Uncategorized = "Uncategorized"

// Names resolves user and category IDs to display names.
// Unknown users fall back to their ID.
type Names struct {
	Users      map[string]string
	Categories map[string]string
}

func (n Names) User(id string) string {
	if name, ok := n.Users[id]; ok && name != "" {
		return name
	}
	return id
}

func (n Names) Category(id string) string {
	if name, ok := n.Categories[id]; ok && name != "" {
		return name
	}
	return Uncategorized
}

func date(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(time.DateOnly)
}

// Expenses lists every expense with its split, newest first as given.
func Expenses(expenses []*models.Expense, names Names) *Table {
	t := &Table{
		Sheet:  "Expenses",
		Header: []string{"Date", "Description", "Amount", "Paid By", "Category", "Split Between", "Created By", "Receipt", "Tags"},
	}
	for _, e := range expenses {
		split := make([]string, 0, len(e.Splits))
		for _, s := range e.Splits {
			split = append(split, names.User(s.UserID)+": "+s.Share.StringFixed(2))
		}
		receipt := ""
		if e.Receipt != nil {
			receipt = e.Receipt.URL
		}
		t.Rows = append(t.Rows, []any{
			date(e.CreatedAt),
			e.Description,
			e.Amount,
			names.User(e.PaidBy),
			names.Category(e.CategoryID),
			strings.Join(split, ", "),
			names.User(e.CreatedBy),
			receipt,
			strings.Join(e.Tags, ", "),
		})
	}
	return t
}

// CategorySummary totals expenses per category, largest total first.
func CategorySummary(expenses []*models.Expense, names Names) *Table {
	type bucket struct {
		name  string
		total decimal.Decimal
		count int
	}
	byName := map[string]*bucket{}
	for _, e := range expenses {
		name := names.Category(e.CategoryID)
		b, ok := byName[name]
		if !ok {
			b = &bucket{name: name}
			byName[name] = b
		}
		b.total = b.total.Add(e.Amount)
		b.count++
	}

	buckets := make([]*bucket, 0, len(byName))
	for _, b := range byName {
		buckets = append(buckets, b)
	}
	slices.SortFunc(buckets, func(a, b *bucket) int {
		if c := b.total.Cmp(a.total); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})

	t := &Table{
		Sheet:  "Summary",
		Header: []string{"Category", "Total Amount", "Number of Expenses", "Average Amount"},
	}
	for _, b := range buckets {
		avg := b.total.DivRound(decimal.NewFromInt(int64(b.count)), 2)
		t.Rows = append(t.Rows, []any{b.name, b.total, b.count, avg})
	}
	return t
}

// Settlements lists payments, newest first as given.
func Settlements(settlements []*models.Settlement, expenses map[string]string, names Names) *Table {
	t := &Table{
		Sheet:  "Settlements",
		Header: []string{"Date", "From", "To", "Amount", "Expense", "Note"},
	}
	for _, s := range settlements {
		at := s.SettledAt
		if at == 0 {
			at = s.CreatedAt
		}
		t.Rows = append(t.Rows, []any{
			date(at),
			names.User(s.FromUserID),
			names.User(s.ToUserID),
			s.Amount,
			expenses[s.ExpenseID],
			s.Note,
		})
	}
	return t
}

// UserExpenses lists the expenses a user paid for or shares in, with their
// own share of each.
func UserExpenses(userID string, expenses []*models.Expense, groups map[string]string, names Names) *Table {
	t := &Table{
		Sheet:  "My Expenses",
		Header: []string{"Date", "Description", "Amount", "Paid By", "Group", "Category", "Your Share", "Status"},
	}
	for _, e := range expenses {
		share := decimal.Zero
		if s, ok := e.SplitFor(userID); ok {
			share = s.Share
		}
		status := "Owed"
		if e.PaidBy == userID {
			status = "Paid"
		}
		t.Rows = append(t.Rows, []any{
			date(e.CreatedAt),
			e.Description,
			e.Amount,
			names.User(e.PaidBy),
			groups[e.GroupID],
			names.Category(e.CategoryID),
			share,
			status,
		})
	}
	return t
}
