// Package ledger computes balances, settlement status and settlement admissibility
// from snapshots of expenses and settlements.
//
// Every function here is pure: inputs are never mutated and no I/O is performed,
// except in LoadView which gathers the snapshot a check needs.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
)

// ValidateSplit checks that the shares add up to total within money.Tolerance.
func ValidateSplit(total decimal.Decimal, splits []models.Split) error {
	sum := decimal.Zero
	for _, s := range splits {
		sum = sum.Add(s.Share)
	}
	if !money.ApproxEqual(sum, total) {
		return reject(ReasonShareMismatch, "shares add up to %s but the amount is %s",
			money.Format(sum), money.Format(total))
	}
	return nil
}

// AbsorbRemainder returns a copy of splits whose shares add up to total exactly.
// ValidateSplit lets the sum drift by up to money.Tolerance; that difference is
// moved onto the payer's share, or onto the first share when the payer has none,
// so the payer's credit always equals what the group owes.
func AbsorbRemainder(total decimal.Decimal, splits []models.Split, payer string) []models.Split {
	out := make([]models.Split, len(splits))
	copy(out, splits)
	if len(out) == 0 {
		return out
	}

	sum := decimal.Zero
	for _, s := range out {
		sum = sum.Add(s.Share)
	}
	diff := total.Sub(sum)
	if diff.IsZero() {
		return out
	}

	i := 0
	for j, s := range out {
		if s.UserID == payer {
			i = j
			break
		}
	}
	out[i].Share = out[i].Share.Add(diff)
	return out
}
