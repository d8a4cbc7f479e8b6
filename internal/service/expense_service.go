package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/ledger"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

const (
	defaultPageSize   = 20
	maxPageSize       = 100
	minSearchLength   = 2
	defaultSearchSize = 20
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	store    storage.Store
	notifier *Notifier
	logger   *slog.Logger
}

// NewExpenseService creates an ExpenseService. notifier may be nil.
func NewExpenseService(store storage.Store, notifier *Notifier, logger *slog.Logger) *ExpenseService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpenseService{store: store, notifier: notifier, logger: logger}
}

// validateExpense checks amount, payer and splits against the group, then
// rounds the shares so they add up to the amount exactly.
func validateExpense(group *models.Group, e *models.Expense) error {
	if e.Description == "" {
		return invalidArgument("description is required")
	}
	if !e.Amount.IsPositive() {
		return &ledger.Rejection{Reason: ledger.ReasonInvalidAmount, Message: "amount must be greater than 0"}
	}
	if !group.IsMember(e.PaidBy) {
		return &ledger.Rejection{Reason: ledger.ReasonNotAMember, Message: "payer must be a member of the group"}
	}
	if len(e.Splits) == 0 {
		return invalidArgument("at least one split is required")
	}
	seen := make(map[string]bool, len(e.Splits))
	for _, s := range e.Splits {
		if seen[s.UserID] {
			return invalidArgument("user %s appears more than once in the split", s.UserID)
		}
		seen[s.UserID] = true
		if !group.IsMember(s.UserID) {
			return &ledger.Rejection{Reason: ledger.ReasonNotAMember, Message: fmt.Sprintf("split user %s is not a member of the group", s.UserID)}
		}
		if !s.Share.IsPositive() {
			return &ledger.Rejection{Reason: ledger.ReasonInvalidAmount, Message: "shares must be greater than 0"}
		}
	}
	if err := ledger.ValidateSplit(e.Amount, e.Splits); err != nil {
		return err
	}
	e.Splits = ledger.AbsorbRemainder(e.Amount, e.Splits, e.PaidBy)
	for _, s := range e.Splits {
		if !s.Share.IsPositive() {
			return &ledger.Rejection{Reason: ledger.ReasonInvalidAmount, Message: "amount is too small for this split"}
		}
	}
	return nil
}

// sharesFor derives the split from whichever share form the request uses.
func sharesFor(msg *api.CreateExpenseRequest) ([]models.Split, error) {
	var splits []models.Split
	var err error
	switch {
	case len(msg.Splits) > 0:
		return fromAPISplits(msg.Splits), nil
	case len(msg.SplitAmong) > 0:
		splits, err = calculator.EqualShares(msg.Amount, msg.SplitAmong)
	case len(msg.Items) > 0:
		items := make([]calculator.Item, len(msg.Items))
		for i, it := range msg.Items {
			items[i] = calculator.Item{Description: it.Description, Amount: it.Amount, AssignedTo: it.AssignedTo}
		}
		splits, err = calculator.ItemizedShares(msg.Amount, items)
	}
	if err != nil {
		return nil, invalidArgument("%v", err)
	}
	return splits, nil
}

func (s *ExpenseService) checkCategory(ctx context.Context, categoryID string) error {
	if categoryID == "" {
		return nil
	}
	_, err := s.store.GetCategory(ctx, categoryID)
	if errors.Is(err, storage.ErrNotFound) {
		return invalidArgument("category %s does not exist", categoryID)
	}
	return err
}

// expenseForCaller loads an expense and its group, requiring the caller to be a
// member. With mutate set, the caller must also be the expense creator or the group creator.
func (s *ExpenseService) expenseForCaller(ctx context.Context, expenseID, userID string, mutate bool) (*models.Expense, *models.Group, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonExpenseNotFound, Message: fmt.Sprintf("expense %s not found", expenseID)})
	}
	if err != nil {
		return nil, nil, toConnectError(err)
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	if mutate && expense.CreatedBy != userID && !group.IsAdmin(userID) {
		return nil, nil, rejectionError(&ledger.Rejection{Reason: ledger.ReasonForbidden, Message: "only the expense creator or the group creator can change this expense"})
	}
	return expense, group, nil
}

func (s *ExpenseService) expenseSettlements(ctx context.Context, expenseID string) ([]*models.Settlement, error) {
	return s.store.ListSettlements(ctx, storage.SettlementFilter{ExpenseID: expenseID, Status: models.SettlementCompleted})
}

// CreateExpense records an expense paid by one member and split among members.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "CreateExpense request received", logging.KeyGroupID, req.Msg.GroupID, "splits", len(req.Msg.Splits))

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	splits, err := sharesFor(req.Msg)
	if err != nil {
		return nil, err
	}
	expense := &models.Expense{
		GroupID:     group.ID,
		Description: strings.TrimSpace(req.Msg.Description),
		Amount:      req.Msg.Amount,
		PaidBy:      req.Msg.PaidBy,
		Splits:      splits,
		CreatedBy:   userID,
		CategoryID:  req.Msg.CategoryID,
		Tags:        normalizeTags(req.Msg.Tags),
	}
	if expense.PaidBy == "" {
		expense.PaidBy = userID
	}
	if err := validateExpense(group, expense); err != nil {
		return nil, toConnectError(err)
	}
	if err := s.checkCategory(ctx, expense.CategoryID); err != nil {
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.ErrorContext(ctx, "CreateExpense failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Expense created", logging.KeyExpenseID, expense.ID, logging.KeyGroupID, group.ID)

	out := toAPIExpense(expense, nil)
	s.notifier.Publish(ctx, events.ExpenseAdded, group.ID, out)
	s.notifier.Notify(ctx, models.NotificationExpense,
		fmt.Sprintf("New expense %q of %s in %q", expense.Description, money.Format(expense.Amount), group.Name),
		others(group.Members, userID)...)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: out}), nil
}

// GetExpense returns an expense with the repayment status of every share.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	expense, _, err := s.expenseForCaller(ctx, req.Msg.ExpenseID, userID, false)
	if err != nil {
		return nil, err
	}
	settlements, err := s.expenseSettlements(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := toAPIExpense(expense, settlements)
	out.Outstanding = toAPIShareStatuses(ledger.OutstandingShares(expense, settlements))
	return connect.NewResponse(&api.GetExpenseResponse{Expense: out}), nil
}

// UpdateExpense changes an expense. The split is re-validated whenever amount,
// payer or shares change.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	expense, group, err := s.expenseForCaller(ctx, req.Msg.ExpenseID, userID, true)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.Description != nil {
		expense.Description = strings.TrimSpace(*msg.Description)
	}
	if msg.Amount != nil {
		expense.Amount = *msg.Amount
	}
	if msg.PaidBy != nil {
		expense.PaidBy = *msg.PaidBy
	}
	if msg.Splits != nil {
		expense.Splits = fromAPISplits(msg.Splits)
	}
	if msg.CategoryID != nil {
		expense.CategoryID = *msg.CategoryID
		if err := s.checkCategory(ctx, expense.CategoryID); err != nil {
			return nil, toConnectError(err)
		}
	}
	if msg.Tags != nil {
		expense.Tags = normalizeTags(msg.Tags)
	}
	if msg.Amount != nil || msg.PaidBy != nil || msg.Splits != nil {
		if err := validateExpense(group, expense); err != nil {
			return nil, toConnectError(err)
		}
	} else if expense.Description == "" {
		return nil, invalidArgument("description is required")
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.ErrorContext(ctx, "UpdateExpense failed", logging.KeyExpenseID, expense.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	settlements, err := s.expenseSettlements(ctx, expense.ID)
	if err != nil {
		return nil, toConnectError(err)
	}

	out := toAPIExpense(expense, settlements)
	s.notifier.Publish(ctx, events.ExpenseUpdated, group.ID, out)
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: out}), nil
}

// DeleteExpense removes an expense. Settlements made against it stay on record
// as general settlements of the group.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	expense, group, err := s.expenseForCaller(ctx, req.Msg.ExpenseID, userID, true)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		s.logger.ErrorContext(ctx, "DeleteExpense failed", logging.KeyExpenseID, expense.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}
	s.logger.InfoContext(ctx, "Expense deleted", logging.KeyExpenseID, expense.ID, logging.KeyGroupID, group.ID)

	s.notifier.Publish(ctx, events.ExpenseDeleted, group.ID, map[string]string{"expenseId": expense.ID})
	s.notifier.Notify(ctx, models.NotificationExpense,
		fmt.Sprintf("Expense %q was deleted from %q", expense.Description, group.Name),
		others(group.Members, userID)...)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses filters, sorts and paginates a group's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
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
		s.logger.ErrorContext(ctx, "ListExpenses failed", logging.KeyGroupID, group.ID, logging.KeyError, err)
		return nil, toConnectError(err)
	}

	matched := filterExpenses(expenses, req.Msg.Filter)
	sortExpenses(matched, req.Msg.SortBy, req.Msg.SortOrder)

	page, limit := req.Msg.Page, req.Msg.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	total := len(matched)
	start := min((page-1)*limit, total)
	end := min(start+limit, total)

	bySettlement := ledger.SettlementsByExpense(settlements)
	out := make([]api.Expense, 0, end-start)
	for _, e := range matched[start:end] {
		out = append(out, toAPIExpense(e, bySettlement[e.ID]))
	}

	return connect.NewResponse(&api.ListExpensesResponse{
		Expenses:   out,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}), nil
}

func filterExpenses(expenses []*models.Expense, f api.ExpenseFilter) []*models.Expense {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	wantTags := normalizeTags(f.Tags)

	out := make([]*models.Expense, 0, len(expenses))
	for _, e := range expenses {
		switch {
		case f.CategoryID != "" && e.CategoryID != f.CategoryID:
			continue
		case f.PaidBy != "" && e.PaidBy != f.PaidBy:
			continue
		case f.MinAmount != nil && e.Amount.LessThan(*f.MinAmount):
			continue
		case f.MaxAmount != nil && e.Amount.GreaterThan(*f.MaxAmount):
			continue
		case f.StartDate != 0 && e.CreatedAt < f.StartDate:
			continue
		case f.EndDate != 0 && e.CreatedAt > f.EndDate:
			continue
		case search != "" && !matchesSearch(e, search):
			continue
		case len(wantTags) > 0 && !hasAnyTag(e, wantTags):
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesSearch(e *models.Expense, query string) bool {
	if strings.Contains(strings.ToLower(e.Description), query) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(t, query) {
			return true
		}
	}
	return false
}

func hasAnyTag(e *models.Expense, tags []string) bool {
	for _, want := range tags {
		for _, t := range e.Tags {
			if t == want {
				return true
			}
		}
	}
	return false
}

func sortExpenses(expenses []*models.Expense, by, order string) {
	asc := order == "asc"
	sort.SliceStable(expenses, func(i, j int) bool {
		a, b := expenses[i], expenses[j]
		var c int
		switch by {
		case "amount":
			c = a.Amount.Cmp(b.Amount)
		case "description":
			c = strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
		default:
			c = cmp.Compare(a.CreatedAt, b.CreatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// SearchExpenses finds expenses by description or tag across the caller's groups.
func (s *ExpenseService) SearchExpenses(ctx context.Context, req *connect.Request[api.SearchExpensesRequest]) (*connect.Response[api.SearchExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.TrimSpace(req.Msg.Query))
	if len([]rune(query)) < minSearchLength {
		return nil, invalidArgument("search query must be at least %d characters", minSearchLength)
	}
	limit := req.Msg.Limit
	if limit < 1 {
		limit = defaultSearchSize
	}
	limit = min(limit, maxPageSize)

	groups, err := s.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}

	var matched []*models.Expense
	var settlements []*models.Settlement
	for _, g := range groups {
		expenses, groupSettlements, err := loadGroupLedger(ctx, s.store, g.ID)
		if err != nil {
			return nil, toConnectError(err)
		}
		settlements = append(settlements, groupSettlements...)
		matched = append(matched, filterExpenses(expenses, api.ExpenseFilter{Search: query})...)
	}
	sortExpenses(matched, "createdAt", "desc")
	if len(matched) > limit {
		matched = matched[:limit]
	}

	bySettlement := ledger.SettlementsByExpense(settlements)
	out := make([]api.Expense, len(matched))
	for i, e := range matched {
		out[i] = toAPIExpense(e, bySettlement[e.ID])
	}
	return connect.NewResponse(&api.SearchExpensesResponse{Expenses: out}), nil
}

// AttachReceipt stores a reference to an uploaded receipt on the expense.
func (s *ExpenseService) AttachReceipt(ctx context.Context, req *connect.Request[api.AttachReceiptRequest]) (*connect.Response[api.AttachReceiptResponse], error) {
	out, err := s.setReceipt(ctx, req.Msg.ExpenseID, &models.Receipt{
		URL:      strings.TrimSpace(req.Msg.Receipt.URL),
		PublicID: req.Msg.Receipt.PublicID,
		Filename: req.Msg.Receipt.Filename,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AttachReceiptResponse{Expense: out}), nil
}

// RemoveReceipt clears the expense's receipt reference.
func (s *ExpenseService) RemoveReceipt(ctx context.Context, req *connect.Request[api.RemoveReceiptRequest]) (*connect.Response[api.RemoveReceiptResponse], error) {
	out, err := s.setReceipt(ctx, req.Msg.ExpenseID, nil)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.RemoveReceiptResponse{Expense: out}), nil
}

// setReceipt replaces the receipt only; amount and splits are left untouched.
func (s *ExpenseService) setReceipt(ctx context.Context, expenseID string, receipt *models.Receipt) (api.Expense, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return api.Expense{}, err
	}
	expense, group, err := s.expenseForCaller(ctx, expenseID, userID, true)
	if err != nil {
		return api.Expense{}, err
	}
	if receipt == nil && expense.Receipt == nil {
		return api.Expense{}, failedPrecondition("expense has no receipt")
	}

	expense.Receipt = receipt
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		return api.Expense{}, toConnectError(err)
	}
	settlements, err := s.expenseSettlements(ctx, expense.ID)
	if err != nil {
		return api.Expense{}, toConnectError(err)
	}

	out := toAPIExpense(expense, settlements)
	s.notifier.Publish(ctx, events.ExpenseUpdated, group.ID, out)
	return out, nil
}
