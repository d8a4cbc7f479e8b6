package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

// SettlementService implements the Connect SettlementService.
//
// Check-then-insert of a settlement runs under a per-group lock, so two
// concurrent payments in one group are measured against each other's effect.
// The lock is in-process; several server instances sharing one database need
// a database-level lock instead.
type SettlementService struct {
	store    storage.Store
	notifier *Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	locks    keyedMutex
}

// NewSettlementService creates a SettlementService. notifier and m may be nil.
func NewSettlementService(store storage.Store, notifier *Notifier, m *metrics.Metrics, logger *slog.Logger) *SettlementService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettlementService{store: store, notifier: notifier, metrics: m, logger: logger}
}

// check loads the ledger snapshot for p and runs the admissibility check.
func (s *SettlementService) check(ctx context.Context, p ledger.Proposal) (ledger.Quote, error) {
	view, err := ledger.LoadView(ctx, s.store, p)
	if err != nil {
		return ledger.Quote{}, err
	}
	q, err := ledger.CheckSettlement(p, view)
	outcome := metrics.OutcomeAdmitted
	if r, ok := ledger.AsRejection(err); ok {
		outcome = string(r.Reason)
	}
	s.metrics.ObserveSettlementCheck(outcome)
	return q, err
}

// CreateSettlement records a payment after checking it against what is still owed.
func (s *SettlementService) CreateSettlement(ctx context.Context, req *connect.Request[api.CreateSettlementRequest]) (*connect.Response[api.CreateSettlementResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	s.logger.InfoContext(ctx, "CreateSettlement request received",
		logging.KeyGroupID, msg.GroupID,
		logging.KeyExpenseID, msg.ExpenseID,
		"from", msg.FromUserID,
		"to", msg.ToUserID,
		"amount", msg.Amount.String(),
	)

	p := ledger.Proposal{
		GroupID:   msg.GroupID,
		ExpenseID: msg.ExpenseID,
		From:      msg.FromUserID,
		To:        msg.ToUserID,
		Amount:    msg.Amount,
		Requester: userID,
	}
	settlement := &models.Settlement{
		GroupID:    p.GroupID,
		ExpenseID:  p.ExpenseID,
		FromUserID: p.From,
		ToUserID:   p.To,
		Amount:     p.Amount,
		Note:       strings.TrimSpace(msg.Note),
		Status:     models.SettlementCompleted,
		CreatedBy:  userID,
		SettledAt:  msg.SettledAt,
	}

	q, err := s.admit(ctx, p, settlement)
	if err != nil {
		if r, ok := ledger.AsRejection(err); ok {
			s.logger.WarnContext(ctx, "Settlement rejected", logging.KeyGroupID, p.GroupID, "reason", r.Reason, logging.KeyError, r.Message)
		} else {
			s.logger.ErrorContext(ctx, "CreateSettlement failed", logging.KeyGroupID, p.GroupID, logging.KeyError, err)
		}
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Settlement recorded", "settlement_id", settlement.ID, logging.KeyGroupID, p.GroupID)

	out := toAPISettlement(settlement)
	s.notifier.Publish(ctx, events.SettlementAdded, p.GroupID, out)
	s.notifyParties(ctx, p)

	return connect.NewResponse(&api.CreateSettlementResponse{Settlement: out, Quote: toAPIQuote(q)}), nil
}

// notifyParties tells both sides of a recorded payment about it, each from
// their own point of view.
func (s *SettlementService) notifyParties(ctx context.Context, p ledger.Proposal) {
	name := func(id string) string { return id }
	users, err := s.store.GetUsersByIDs(ctx, []string{p.From, p.To})
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to look up settlement parties", logging.KeyGroupID, p.GroupID, logging.KeyError, err)
	} else {
		name = func(id string) string {
			if u, ok := users[id]; ok && u.DisplayName != "" {
				return u.DisplayName
			}
			return id
		}
	}

	amount := money.Format(p.Amount)
	s.notifier.Notify(ctx, models.NotificationSettlement,
		fmt.Sprintf("You paid %s to %s", amount, name(p.To)), p.From)
	s.notifier.Notify(ctx, models.NotificationSettlement,
		fmt.Sprintf("%s paid you %s", name(p.From), amount), p.To)
}

// admit checks p and persists settlement while holding the group's lock.
func (s *SettlementService) admit(ctx context.Context, p ledger.Proposal, settlement *models.Settlement) (ledger.Quote, error) {
	unlock := s.locks.Lock(p.GroupID)
	defer unlock()

	q, err := s.check(ctx, p)
	if err != nil {
		return q, err
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		return q, fmt.Errorf("failed to save settlement: %w", err)
	}
	return q, nil
}

// CheckSettlement reports whether a settlement would be accepted, without recording it.
func (s *SettlementService) CheckSettlement(ctx context.Context, req *connect.Request[api.CheckSettlementRequest]) (*connect.Response[api.CheckSettlementResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	q, err := s.check(ctx, ledger.Proposal{
		GroupID:   msg.GroupID,
		ExpenseID: msg.ExpenseID,
		From:      msg.FromUserID,
		To:        msg.ToUserID,
		Amount:    msg.Amount,
		Requester: userID,
	})

	r, rejected := ledger.AsRejection(err)
	if err != nil && !rejected {
		return nil, toConnectError(err)
	}
	if rejected {
		resp := &api.CheckSettlementResponse{Reason: string(r.Reason), Message: r.Message}
		if r.Quote != nil {
			quote := toAPIQuote(*r.Quote)
			resp.Quote = &quote
		}
		return connect.NewResponse(resp), nil
	}
	quote := toAPIQuote(q)
	return connect.NewResponse(&api.CheckSettlementResponse{Admissible: true, Quote: &quote}), nil
}

// ListGroupSettlements returns every settlement of a group the caller belongs to.
func (s *SettlementService) ListGroupSettlements(ctx context.Context, req *connect.Request[api.ListGroupSettlementsRequest]) (*connect.Response[api.ListGroupSettlementsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{GroupID: group.ID})
	if err != nil {
		s.logger.ErrorContext(ctx, "ListGroupSettlements failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListGroupSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// ListUserSettlements returns the settlements the caller paid or received.
func (s *SettlementService) ListUserSettlements(ctx context.Context, req *connect.Request[api.ListUserSettlementsRequest]) (*connect.Response[api.ListUserSettlementsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{UserID: userID})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.ListUserSettlementsResponse{Settlements: toAPISettlements(settlements)}), nil
}

// GetPairwiseBalance returns what the caller and another member owe each other in a group.
func (s *SettlementService) GetPairwiseBalance(ctx context.Context, req *connect.Request[api.GetPairwiseBalanceRequest]) (*connect.Response[api.GetPairwiseBalanceResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	other := req.Msg.OtherUserID
	if !group.IsMember(other) {
		return nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonNotAMember, Message: "both users must be members of the group"})
	}

	expenses, settlements, err := loadGroupLedger(ctx, s.store, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	balance := money.Round(ledger.ComputePairwiseBalance(group.ID, userID, other, expenses, settlements))

	resp := &api.GetPairwiseBalanceResponse{Balance: balance, Owes: decimal.Zero, IsOwed: decimal.Zero}
	if balance.IsNegative() {
		resp.Owes = balance.Neg()
	} else {
		resp.IsOwed = balance
	}
	return connect.NewResponse(resp), nil
}
