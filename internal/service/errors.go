package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
)

// Error metadata set on rejected ledger operations. Amounts are formatted with two decimals.
const (
	MetaReason      = "Ledger-Reason"
	MetaOwed        = "Ledger-Owed"
	MetaAlreadyPaid = "Ledger-Already-Paid"
	MetaRemaining   = "Ledger-Remaining"
)

func reasonCode(reason ledger.Reason) connect.Code {
	switch reason {
	case ledger.ReasonGroupNotFound, ledger.ReasonExpenseNotFound:
		return connect.CodeNotFound
	case ledger.ReasonForbidden, ledger.ReasonNotAMember:
		return connect.CodePermissionDenied
	case ledger.ReasonOverpayment:
		return connect.CodeFailedPrecondition
	default:
		return connect.CodeInvalidArgument
	}
}

func rejectionError(r *ledger.Rejection) *connect.Error {
	ce := connect.NewError(reasonCode(r.Reason), r)
	ce.Meta().Set(MetaReason, string(r.Reason))
	if q := r.Quote; q != nil {
		if q.ExpenseID != "" {
			ce.Meta().Set(MetaOwed, money.Format(q.Owed))
			ce.Meta().Set(MetaAlreadyPaid, money.Format(q.AlreadyPaid))
		}
		ce.Meta().Set(MetaRemaining, money.Format(q.Remaining))
	}
	return ce
}

// toConnectError maps domain and storage errors onto connect codes.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	if r, ok := ledger.AsRejection(err); ok {
		return rejectionError(r)
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func permissionDenied(format string, args ...any) error {
	return connect.NewError(connect.CodePermissionDenied, fmt.Errorf(format, args...))
}

func failedPrecondition(format string, args ...any) error {
	return connect.NewError(connect.CodeFailedPrecondition, fmt.Errorf(format, args...))
}
