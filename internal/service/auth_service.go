package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/storage"
	"github.com/mmynk/settleup/pkg/api"
	"github.com/mmynk/settleup/pkg/logging"
)

// AuthService implements the AuthService RPC interface.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	users         storage.UserStore
	logger        *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, users storage.UserStore, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		users:         users,
		logger:        logger,
	}
}

// Register creates a new user account and signs the user in.
func (s *AuthService) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	s.logger.InfoContext(ctx, "Register request", "email", req.Msg.Email)

	user, err := s.authenticator.Register(ctx, req.Msg.Email, req.Msg.DisplayName, req.Msg.Password)
	switch {
	case errors.Is(err, auth.ErrEmailExists):
		return nil, connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword):
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Registration failed", "email", req.Msg.Email, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", logging.KeyUserID, user.ID, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.InfoContext(ctx, "User registered", logging.KeyUserID, user.ID)
	return connect.NewResponse(&api.RegisterResponse{Token: token, User: toAPIUser(user)}), nil
}

// Login authenticates a user and returns a session token.
func (s *AuthService) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	user, err := s.authenticator.Authenticate(ctx, req.Msg.Email, req.Msg.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.logger.WarnContext(ctx, "Login failed", "email", req.Msg.Email)
		return nil, connect.NewError(connect.CodeUnauthenticated, err)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Login failed", "email", req.Msg.Email, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to generate token", logging.KeyUserID, user.ID, logging.KeyError, err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.logger.InfoContext(ctx, "User logged in", logging.KeyUserID, user.ID)
	return connect.NewResponse(&api.LoginResponse{Token: token, User: toAPIUser(user)}), nil
}

// Logout revokes the token the call was made with.
func (s *AuthService) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	s.jwtManager.Revoke(middleware.GetClaims(ctx))
	s.logger.InfoContext(ctx, "User logged out", logging.KeyUserID, userID)
	return connect.NewResponse(&api.LogoutResponse{}), nil
}

// GetCurrentUser returns the authenticated user's account.
func (s *AuthService) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.GetCurrentUserResponse{User: toAPIUser(user)}), nil
}
