package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/metrics"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// testUserHeader carries the caller's user ID in tests instead of a signed token.
const testUserHeader = "X-Test-User"

type testEnv struct {
	store    *sqlite.SQLiteStore
	recorder *events.Recorder
	metrics  *metrics.Metrics

	groups        *apiconnect.GroupServiceClient
	expenses      *apiconnect.ExpenseServiceClient
	settlements   *apiconnect.SettlementServiceClient
	categories    *apiconnect.CategoryServiceClient
	notifications *apiconnect.NotificationServiceClient

	alice, bob, carol, dave string
}

func identityInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUserID(ctx, id)
			}
			return next(ctx, req)
		}
	}
}

// setupTestServer starts every RPC service over a fresh SQLite database and
// registers four users. Alice, Bob and Carol are expected to share groups; Dave is an outsider.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := &events.Recorder{}
	m := metrics.New()
	notifier := NewNotifier(store, recorder, m, logger)

	opts := connect.WithInterceptors(identityInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, notifier, logger), opts))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, notifier, logger), opts))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, notifier, m, logger), opts))
	mux.Handle(apiconnect.NewCategoryServiceHandler(NewCategoryService(store, logger), opts))
	mux.Handle(apiconnect.NewNotificationServiceHandler(NewNotificationService(store, logger), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	env := &testEnv{
		store:         store,
		recorder:      recorder,
		metrics:       m,
		groups:        apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		expenses:      apiconnect.NewExpenseServiceClient(server.Client(), server.URL),
		settlements:   apiconnect.NewSettlementServiceClient(server.Client(), server.URL),
		categories:    apiconnect.NewCategoryServiceClient(server.Client(), server.URL),
		notifications: apiconnect.NewNotificationServiceClient(server.Client(), server.URL),
	}
	env.alice = env.createUser(t, "alice@example.com", "Alice")
	env.bob = env.createUser(t, "bob@example.com", "Bob")
	env.carol = env.createUser(t, "carol@example.com", "Carol")
	env.dave = env.createUser(t, "dave@example.com", "Dave")
	return env
}

func (e *testEnv) createUser(t *testing.T, email, name string) string {
	t.Helper()
	user := models.NewUser(email, name, "x")
	if err := e.store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%s) failed: %v", email, err)
	}
	return user.ID
}

// createGroup makes a group owned by owner with the given extra members.
func (e *testEnv) createGroup(t *testing.T, owner string, members ...string) api.Group {
	t.Helper()
	resp, err := e.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:      "Trip",
		MemberIDs: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

// createExpense records an expense paid by payer and split as given by shares (user, amount, user, amount...).
func (e *testEnv) createExpense(t *testing.T, groupID, payer, amount string, shares ...string) api.Expense {
	t.Helper()
	var splits []api.Split
	for i := 0; i+1 < len(shares); i += 2 {
		splits = append(splits, api.Split{UserID: shares[i], Share: amt(shares[i+1])})
	}
	resp, err := e.expenses.CreateExpense(context.Background(), as(payer, &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "Dinner",
		Amount:      amt(amount),
		Splits:      splits,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(testUserHeader, userID)
	}
	return req
}

func amt(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertCode(t *testing.T, err error, want connect.Code) *connect.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	var ce *connect.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected connect error, got %T: %v", err, err)
	}
	if ce.Code() != want {
		t.Fatalf("code: expected %v, got %v (%v)", want, ce.Code(), err)
	}
	return ce
}

func assertAmount(t *testing.T, name string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(amt(want)) {
		t.Errorf("%s: expected %s, got %s", name, want, got)
	}
}
