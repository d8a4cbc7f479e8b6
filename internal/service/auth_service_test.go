package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/api/apiconnect"
)

// setupAuthServer wires the auth and group services behind the real token interceptor.
func setupAuthServer(t *testing.T) (*apiconnect.AuthServiceClient, *apiconnect.GroupServiceClient) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	opts := connect.WithInterceptors(middleware.RequireAuth(jwtManager, apiconnect.PublicAuthProcedures...))
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), opts))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, nil, logger), opts))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		apiconnect.NewGroupServiceClient(server.Client(), server.URL)
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService_RegisterLoginLogout(t *testing.T) {
	authClient, groupClient := setupAuthServer(t)
	ctx := context.Background()

	reg, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		Password:    "correct horse",
		DisplayName: "Alice",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" {
		t.Fatal("expected a token")
	}
	if reg.Msg.User.Email != "alice@example.com" {
		t.Errorf("email: expected normalized address, got %q", reg.Msg.User.Email)
	}

	_, err = authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "alice@example.com",
		Password:    "another password",
		DisplayName: "Imposter",
	}))
	assertCode(t, err, connect.CodeAlreadyExists)

	_, err = authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "alice@example.com", Password: "wrong password"}))
	assertCode(t, err, connect.CodeUnauthenticated)

	login, err := authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "ALICE@example.com", Password: "correct horse"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := login.Msg.Token

	me, err := authClient.GetCurrentUser(ctx, withToken(token, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("user ID: expected %s, got %s", reg.Msg.User.ID, me.Msg.User.ID)
	}

	group, err := groupClient.CreateGroup(ctx, withToken(token, &api.CreateGroupRequest{Name: "Solo"}))
	if err != nil {
		t.Fatalf("CreateGroup with token failed: %v", err)
	}
	if group.Msg.Group.CreatedBy != reg.Msg.User.ID {
		t.Errorf("createdBy: expected %s, got %s", reg.Msg.User.ID, group.Msg.Group.CreatedBy)
	}

	if _, err := authClient.Logout(ctx, withToken(token, &api.LogoutRequest{})); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	_, err = authClient.GetCurrentUser(ctx, withToken(token, &api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	// The registration token is still valid.
	if _, err := authClient.GetCurrentUser(ctx, withToken(reg.Msg.Token, &api.GetCurrentUserRequest{})); err != nil {
		t.Errorf("registration token should survive another session's logout: %v", err)
	}
}

func TestAuthService_RequiresToken(t *testing.T) {
	authClient, groupClient := setupAuthServer(t)
	ctx := context.Background()

	_, err := groupClient.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)

	_, err = authClient.GetCurrentUser(ctx, withToken("not-a-jwt", &api.GetCurrentUserRequest{}))
	assertCode(t, err, connect.CodeUnauthenticated)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	authClient, _ := setupAuthServer(t)

	tests := []struct {
		name string
		req  *api.RegisterRequest
	}{
		{"short password", &api.RegisterRequest{Email: "bob@example.com", Password: "short", DisplayName: "Bob"}},
		{"bad email", &api.RegisterRequest{Email: "not-an-email", Password: "long enough", DisplayName: "Bob"}},
		{"missing name", &api.RegisterRequest{Email: "bob@example.com", Password: "long enough"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := authClient.Register(context.Background(), connect.NewRequest(tt.req))
			assertCode(t, err, connect.CodeInvalidArgument)
		})
	}
}
