package export

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/logging"
)

// Store is the read side of storage the downloads need.
type Store interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error)
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)
	ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error)
	GetCategory(ctx context.Context, categoryID string) (*models.Category, error)
}

// Handler serves the download routes. It expects the caller's identity in the
// request context, so mount it behind middleware.RequireAuthHTTP.
type Handler struct {
	store  Store
	logger *slog.Logger
	mux    *http.ServeMux
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{store: store, logger: logger, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /export/groups/{groupID}/expenses", h.groupExpenses)
	h.mux.HandleFunc("GET /export/groups/{groupID}/settlements", h.groupSettlements)
	h.mux.HandleFunc("GET /export/me/expenses", h.userExpenses)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// httpError carries the status to answer with.
type httpError struct {
	status int
	msg    string
}

func (e *httpError) Error() string { return e.msg }

func (h *Handler) memberGroup(ctx context.Context, groupID, userID string) (*models.Group, error) {
	group, err := h.store.GetGroup(ctx, groupID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &httpError{http.StatusNotFound, "group not found"}
	}
	if err != nil {
		return nil, err
	}
	if !group.IsMember(userID) {
		return nil, &httpError{http.StatusForbidden, "not a member of this group"}
	}
	return group, nil
}

func (h *Handler) groupExpenses(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "group-expenses-"+r.PathValue("groupID"), func(ctx context.Context, userID string) (*Table, error) {
		group, err := h.memberGroup(ctx, r.PathValue("groupID"), userID)
		if err != nil {
			return nil, err
		}
		expenses, err := h.store.ListExpensesByGroup(ctx, group.ID)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		names, err := h.names(ctx, expenses, nil)
		if err != nil {
			return nil, err
		}
		if summary(r) {
			return CategorySummary(expenses, names), nil
		}
		return Expenses(expenses, names), nil
	})
}

func (h *Handler) groupSettlements(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "group-settlements-"+r.PathValue("groupID"), func(ctx context.Context, userID string) (*Table, error) {
		group, err := h.memberGroup(ctx, r.PathValue("groupID"), userID)
		if err != nil {
			return nil, err
		}

		var (
			settlements []*models.Settlement
			expenses    []*models.Expense
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			settlements, err = h.store.ListSettlements(gctx, storage.SettlementFilter{GroupID: group.ID})
			return err
		})
		g.Go(func() error {
			var err error
			expenses, err = h.store.ListExpensesByGroup(gctx, group.ID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("load settlements: %w", err)
		}

		descriptions := make(map[string]string, len(expenses))
		for _, e := range expenses {
			descriptions[e.ID] = e.Description
		}
		names, err := h.names(ctx, nil, settlements)
		if err != nil {
			return nil, err
		}
		return Settlements(settlements, descriptions, names), nil
	})
}

func (h *Handler) userExpenses(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "my-expenses", func(ctx context.Context, userID string) (*Table, error) {
		groups, err := h.store.ListGroupsForUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("list groups: %w", err)
		}

		groupNames := make(map[string]string, len(groups))
		var (
			mu       sync.Mutex
			expenses []*models.Expense
		)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(4)
		for _, group := range groups {
			groupNames[group.ID] = group.Name
			g.Go(func() error {
				list, err := h.store.ListExpensesByGroup(gctx, group.ID)
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				for _, e := range list {
					if _, ok := e.SplitFor(userID); ok || e.PaidBy == userID {
						expenses = append(expenses, e)
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		slices.SortStableFunc(expenses, func(a, b *models.Expense) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})

		names, err := h.names(ctx, expenses, nil)
		if err != nil {
			return nil, err
		}
		if summary(r) {
			return CategorySummary(expenses, names), nil
		}
		return UserExpenses(userID, expenses, groupNames, names), nil
	})
}

// serve renders the table built by build and sends it as an attachment.
func (h *Handler) serve(w http.ResponseWriter, r *http.Request, filename string, build func(ctx context.Context, userID string) (*Table, error)) {
	start := time.Now()
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	format, err := ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := build(r.Context(), userID)
	if err != nil {
		var he *httpError
		if errors.As(err, &he) {
			http.Error(w, he.msg, he.status)
			return
		}
		h.logger.Error("export failed", logging.KeyUserID, userID, "path", r.URL.Path, logging.KeyError, err)
		http.Error(w, "failed to build export", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := table.Write(&buf, format); err != nil {
		h.logger.Error("export render failed", logging.KeyUserID, userID, "format", format, logging.KeyError, err)
		http.Error(w, "failed to build export", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("%s-%s.%s", filename, time.Now().UTC().Format("20060102"), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("export write failed", logging.KeyUserID, userID, logging.KeyError, err)
		return
	}
	h.logger.Info("export sent",
		logging.KeyUserID, userID,
		"path", r.URL.Path,
		"format", format,
		"rows", len(table.Rows),
		logging.KeyDuration, time.Since(start).Milliseconds(),
	)
}

func summary(r *http.Request) bool {
	return r.URL.Query().Get("view") == "summary"
}

// names looks up every user and category referenced by the rows.
func (h *Handler) names(ctx context.Context, expenses []*models.Expense, settlements []*models.Settlement) (Names, error) {
	users := map[string]struct{}{}
	categories := map[string]struct{}{}
	for _, e := range expenses {
		users[e.PaidBy] = struct{}{}
		users[e.CreatedBy] = struct{}{}
		for _, s := range e.Splits {
			users[s.UserID] = struct{}{}
		}
		if e.CategoryID != "" {
			categories[e.CategoryID] = struct{}{}
		}
	}
	for _, s := range settlements {
		users[s.FromUserID] = struct{}{}
		users[s.ToUserID] = struct{}{}
	}

	names := Names{
		Users:      make(map[string]string, len(users)),
		Categories: make(map[string]string, len(categories)),
	}
	found, err := h.store.GetUsersByIDs(ctx, slices.Collect(maps.Keys(users)))
	if err != nil {
		return Names{}, fmt.Errorf("get users: %w", err)
	}
	for id, user := range found {
		names.Users[id] = user.DisplayName
	}
	for id := range categories {
		category, err := h.store.GetCategory(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return Names{}, fmt.Errorf("get category %s: %w", id, err)
		}
		names.Categories[id] = category.Name
	}
	return names, nil
}
