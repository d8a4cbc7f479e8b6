package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/money"
)

// Reason identifies why the ledger rejected an operation.
type Reason string

const (
	ReasonShareMismatch   Reason = "share_mismatch"
	ReasonInvalidAmount   Reason = "invalid_amount"
	ReasonSelfSettlement  Reason = "self_settlement"
	ReasonGroupNotFound   Reason = "group_not_found"
	ReasonForbidden       Reason = "forbidden"
	ReasonNotAMember      Reason = "not_a_member"
	ReasonExpenseNotFound Reason = "expense_not_found"
	ReasonWrongGroup      Reason = "wrong_group"
	ReasonNotInSplit      Reason = "not_in_split"
	ReasonOverpayment     Reason = "overpayment"
)

// Rejection is a business-rule violation. It is returned as an error value;
// the ledger never panics on expected violations.
type Rejection struct {
	Reason  Reason
	Message string

	// Quote is set for ReasonOverpayment.
	Quote *Quote
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Reason, r.Message)
}

// Is matches another *Rejection with the same Reason, so callers can write
// errors.Is(err, ledger.ErrOverpayment).
func (r *Rejection) Is(target error) bool {
	t, ok := target.(*Rejection)
	return ok && t.Reason == r.Reason
}

// Sentinels for errors.Is comparisons.
var (
	ErrShareMismatch   = &Rejection{Reason: ReasonShareMismatch}
	ErrInvalidAmount   = &Rejection{Reason: ReasonInvalidAmount}
	ErrSelfSettlement  = &Rejection{Reason: ReasonSelfSettlement}
	ErrGroupNotFound   = &Rejection{Reason: ReasonGroupNotFound}
	ErrForbidden       = &Rejection{Reason: ReasonForbidden}
	ErrNotAMember      = &Rejection{Reason: ReasonNotAMember}
	ErrExpenseNotFound = &Rejection{Reason: ReasonExpenseNotFound}
	ErrWrongGroup      = &Rejection{Reason: ReasonWrongGroup}
	ErrNotInSplit      = &Rejection{Reason: ReasonNotInSplit}
	ErrOverpayment     = &Rejection{Reason: ReasonOverpayment}
)

// AsRejection extracts a *Rejection from err.
func AsRejection(err error) (*Rejection, bool) {
	var r *Rejection
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

func overpayment(q Quote, amount decimal.Decimal) *Rejection {
	var msg string
	if q.ExpenseID != "" {
		msg = fmt.Sprintf("cannot pay %s: owed %s for this expense, already paid %s, remaining %s",
			money.Format(amount), money.Format(q.Owed), money.Format(q.AlreadyPaid), money.Format(q.Remaining))
	} else {
		msg = fmt.Sprintf("cannot pay %s: remaining amount owed is %s",
			money.Format(amount), money.Format(q.Remaining))
	}
	return &Rejection{Reason: ReasonOverpayment, Message: msg, Quote: &q}
}
