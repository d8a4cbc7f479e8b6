// Package calculator turns a bill into per-user shares that add up to the bill exactly.
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
)

var (
	ErrNoParticipants = errors.New("must have at least one participant")
	ErrZeroSubtotal   = errors.New("items must add up to more than zero")
	ErrTooSmall       = errors.New("amount is too small to give everyone at least a cent")
	ErrUnassignedItem = errors.New("every item must be assigned to at least one user")
)

var cent = decimal.New(1, -2)

// Item represents a single line of the bill, shared equally by AssignedTo.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []string
}

// EqualShares splits total evenly among users. Leftover cents go to the
// first users in order, so the shares always sum to total.
func EqualShares(total decimal.Decimal, users []string) ([]models.Split, error) {
	users = unique(users)
	if len(users) == 0 {
		return nil, ErrNoParticipants
	}
	raw := make([]decimal.Decimal, len(users))
	per := total.Div(decimal.NewFromInt(int64(len(users))))
	for i := range users {
		raw[i] = per
	}
	return toCents(total, users, raw)
}

// ItemizedShares computes how much each person owes including proportional tax:
//
//	person_total = person_subtotal × (bill_total / items_subtotal)
//
// Whatever the items do not cover (tax, tip, service) is spread in proportion
// to each person's items.
func ItemizedShares(total decimal.Decimal, items []Item) ([]models.Split, error) {
	if len(items) == 0 {
		return nil, ErrNoParticipants
	}

	var users []string
	subtotals := make(map[string]decimal.Decimal)
	subtotal := decimal.Zero
	for _, item := range items {
		assigned := unique(item.AssignedTo)
		if len(assigned) == 0 {
			return nil, ErrUnassignedItem
		}
		subtotal = subtotal.Add(item.Amount)

		// Split item among assigned people
		perPerson := item.Amount.Div(decimal.NewFromInt(int64(len(assigned))))
		for _, u := range assigned {
			if _, ok := subtotals[u]; !ok {
				users = append(users, u)
			}
			subtotals[u] = subtotals[u].Add(perPerson)
		}
	}
	if !subtotal.IsPositive() {
		return nil, ErrZeroSubtotal
	}

	ratio := total.Div(subtotal)
	raw := make([]decimal.Decimal, len(users))
	for i, u := range users {
		raw[i] = subtotals[u].Mul(ratio)
	}
	return toCents(total, users, raw)
}

// toCents truncates every share to cents and hands the missing cents out one
// by one in user order. Every user must end up with at least one cent.
func toCents(total decimal.Decimal, users []string, raw []decimal.Decimal) ([]models.Split, error) {
	splits := make([]models.Split, len(users))
	sum := decimal.Zero
	for i, u := range users {
		share := raw[i].Truncate(2)
		splits[i] = models.Split{UserID: u, Share: share}
		sum = sum.Add(share)
	}
	leftover := total.Sub(sum).Div(cent).IntPart()
	for i := int64(0); i < leftover; i++ {
		s := &splits[i%int64(len(splits))]
		s.Share = s.Share.Add(cent)
	}
	for _, s := range splits {
		if !s.Share.IsPositive() {
			return nil, ErrTooSmall
		}
	}
	return splits, nil
}

func unique(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
