// Package service implements the settleup RPC services on top of storage and the ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// currentUser returns the authenticated caller, or an Unauthenticated error.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// memberGroup loads a group the caller belongs to.
func memberGroup(ctx context.Context, groups storage.GroupStore, groupID, userID string) (*models.Group, error) {
	group, err := groups.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonGroupNotFound, Message: fmt.Sprintf("group %s not found", groupID)})
	}
	if err != nil {
		return nil, toConnectError(err)
	}
	if !group.IsMember(userID) {
		return nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonNotAMember, Message: "you are not a member of this group"})
	}
	return group, nil
}

// loadGroupLedger fetches a group's expenses and completed settlements.
func loadGroupLedger(ctx context.Context, store storage.Store, groupID string) ([]*models.Expense, []*models.Settlement, error) {
	view, err := ledger.LoadView(ctx, store, ledger.Proposal{GroupID: groupID})
	if err != nil {
		return nil, nil, err
	}
	return view.Expenses, view.Settlements, nil
}

// dedupe keeps the first occurrence of every non-empty ID.
func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
