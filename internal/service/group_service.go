package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

// GroupService implements the Connect GroupService.
type GroupService struct {
	store    storage.Store
	notifier *Notifier
	logger   *slog.Logger
}

// NewGroupService creates a GroupService. notifier may be nil.
func NewGroupService(store storage.Store, notifier *Notifier, logger *slog.Logger) *GroupService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroupService{store: store, notifier: notifier, logger: logger}
}

// CreateGroup creates a group administered by the caller.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, invalidArgument("group name is required")
	}

	members := dedupe(append([]string{userID}, req.Msg.MemberIDs...))
	if err := s.requireUsers(ctx, members[1:]); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		Members:     members,
		CreatedBy:   userID,
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		s.logger.ErrorContext(ctx, "CreateGroup failed", logging.KeyError, err)
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Group created", logging.KeyGroupID, group.ID, "members", len(members))

	out := toAPIGroup(group)
	s.notifier.Publish(ctx, events.GroupCreated, group.ID, out)
	s.notifier.Notify(ctx, models.NotificationGroup,
		fmt.Sprintf("You were added to the group %q", group.Name), others(members, userID)...)

	return connect.NewResponse(&api.CreateGroupResponse{Group: out}), nil
}

func (s *GroupService) requireUsers(ctx context.Context, userIDs []string) error {
	for _, id := range userIDs {
		if _, err := s.store.GetUserByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return invalidArgument("user %s does not exist", id)
			}
			return toConnectError(err)
		}
	}
	return nil
}

// GetGroup returns a group the caller belongs to.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups returns the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "ListGroups failed", logging.KeyError, err)
		return nil, toConnectError(err)
	}

	out := make([]api.Group, len(groups))
	for i, g := range groups {
		out[i] = toAPIGroup(g)
	}
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group or changes its description. Only the creator may do this.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(userID) {
		return nil, permissionDenied("only the group creator can update the group")
	}

	if req.Msg.Name != nil {
		name := strings.TrimSpace(*req.Msg.Name)
		if name == "" {
			return nil, invalidArgument("group name cannot be empty")
		}
		group.Name = name
	}
	if req.Msg.Description != nil {
		group.Description = strings.TrimSpace(*req.Msg.Description)
	}

	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.logger.ErrorContext(ctx, "UpdateGroup failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group)}), nil
}

// DeleteGroup removes a group with all its expenses and settlements. Only the creator may do this.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !group.IsAdmin(userID) {
		return nil, permissionDenied("only the group creator can delete the group")
	}
	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		s.logger.ErrorContext(ctx, "DeleteGroup failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Group deleted", logging.KeyGroupID, group.ID)

	s.notifier.Notify(ctx, models.NotificationGroup,
		fmt.Sprintf("The group %q was deleted", group.Name), others(group.Members, userID)...)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// AddMember adds a registered user to the group. Any member may invite.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	newMember := strings.TrimSpace(req.Msg.UserID)
	if newMember == "" {
		user, err := s.store.GetUserByEmail(ctx, auth.NormalizeEmail(req.Msg.Email))
		if err != nil {
			return nil, toConnectError(err)
		}
		if user == nil {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("no user registered with email %s", req.Msg.Email))
		}
		newMember = user.ID
	} else if err := s.requireUsers(ctx, []string{newMember}); err != nil {
		return nil, err
	}

	if group.IsMember(newMember) {
		return nil, connect.NewError(connect.CodeAlreadyExists, errors.New("user is already a member of this group"))
	}
	if err := s.store.AddGroupMembers(ctx, group.ID, []string{newMember}); err != nil {
		return nil, toConnectError(err)
	}
	group.Members = append(group.Members, newMember)
	s.logger.InfoContext(ctx, "Member added", logging.KeyGroupID, group.ID, "member", newMember)

	s.notifier.Notify(ctx, models.NotificationGroup, fmt.Sprintf("You were added to the group %q", group.Name), newMember)
	return connect.NewResponse(&api.AddMemberResponse{Group: toAPIGroup(group)}), nil
}

// RemoveMember removes a member. The creator may remove anyone but themselves;
// other members may only leave. A member with an open balance cannot be removed.
func (s *GroupService) RemoveMember(ctx context.Context, req *connect.Request[api.RemoveMemberRequest]) (*connect.Response[api.RemoveMemberResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	target := req.Msg.UserID
	switch {
	case !group.IsMember(target):
		return nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonNotAMember, Message: "user is not a member of this group"})
	case group.IsAdmin(target):
		return nil, failedPrecondition("the group creator cannot leave the group")
	case target != userID && !group.IsAdmin(userID):
		return nil, permissionDenied("only the group creator can remove other members")
	}

	expenses, settlements, err := loadGroupLedger(ctx, s.store, group.ID)
	if err != nil {
		return nil, toConnectError(err)
	}
	balances := ledger.ComputeGroupBalances(expenses, settlements, group.Members)
	if bal, ok := balances[target]; ok && !money.Cleared(bal.Balance.Abs()) {
		return nil, failedPrecondition("member still has an open balance of %s", money.Format(bal.Balance))
	}

	if err := s.store.RemoveGroupMember(ctx, group.ID, target); err != nil {
		return nil, toConnectError(err)
	}
	group.Members = others(group.Members, target)
	s.logger.InfoContext(ctx, "Member removed", logging.KeyGroupID, group.ID, "member", target)

	return connect.NewResponse(&api.RemoveMemberResponse{Group: toAPIGroup(group)}), nil
}

// GetGroupBalances returns every member's balance and a suggested set of payments.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	expenses, settlements, err := loadGroupLedger(ctx, s.store, group.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "GetGroupBalances failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	balances := ledger.ComputeGroupBalances(expenses, settlements, group.Members)
	resp := &api.GetGroupBalancesResponse{
		GroupID:       group.ID,
		TotalExpenses: decimal.Zero,
		Balances:      []api.MemberBalance{},
		Debts:         []api.Debt{},
	}
	for _, e := range expenses {
		resp.TotalExpenses = resp.TotalExpenses.Add(e.Amount)
	}
	for _, b := range balances.Sorted() {
		resp.Balances = append(resp.Balances, api.MemberBalance{
			UserID:    b.UserID,
			Balance:   money.Round(b.Balance),
			TotalPaid: money.Round(b.TotalPaid),
			TotalOwed: money.Round(b.TotalOwed),
		})
	}
	for _, d := range ledger.SimplifyDebts(balances) {
		resp.Debts = append(resp.Debts, api.Debt{From: d.From, To: d.To, Amount: money.Round(d.Amount)})
	}
	return connect.NewResponse(resp), nil
}

// GetUserBalances returns the caller's balance in each of their groups.
func (s *GroupService) GetUserBalances(ctx context.Context, req *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	perGroupExpenses := make([][]*models.Expense, len(groups))
	perGroupSettlements := make([][]*models.Settlement, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, group := range groups {
		g.Go(func() error {
			expenses, settlements, err := loadGroupLedger(gctx, s.store, group.ID)
			if err != nil {
				return fmt.Errorf("group %s: %w", group.ID, err)
			}
			perGroupExpenses[i], perGroupSettlements[i] = expenses, settlements
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "GetUserBalances failed", logging.KeyUserID, userID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	var expenses []*models.Expense
	var settlements []*models.Settlement
	for i := range groups {
		expenses = append(expenses, perGroupExpenses[i]...)
		settlements = append(settlements, perGroupSettlements[i]...)
	}

	names := make(map[string]string, len(groups))
	for _, group := range groups {
		names[group.ID] = group.Name
	}
	resp := &api.GetUserBalancesResponse{Groups: []api.GroupBalance{}, NetBalance: decimal.Zero}
	for _, pos := range ledger.ComputeUserBalances(userID, groups, expenses, settlements) {
		resp.Groups = append(resp.Groups, api.GroupBalance{
			GroupID:   pos.GroupID,
			GroupName: names[pos.GroupID],
			Balance:   money.Round(pos.Balance),
			TotalPaid: money.Round(pos.TotalPaid),
			TotalOwed: money.Round(pos.TotalOwed),
		})
		resp.NetBalance = resp.NetBalance.Add(pos.Balance)
	}
	resp.NetBalance = money.Round(resp.NetBalance)
	return connect.NewResponse(resp), nil
}
