package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

// AuthServiceName is the fully-qualified name of the AuthService service.
const AuthServiceName = "settleup.v1.AuthService"

const (
	AuthServiceRegisterProcedure       = "/settleup.v1.AuthService/Register"
	AuthServiceLoginProcedure          = "/settleup.v1.AuthService/Login"
	AuthServiceLogoutProcedure         = "/settleup.v1.AuthService/Logout"
	AuthServiceGetCurrentUserProcedure = "/settleup.v1.AuthService/GetCurrentUser"
)

// PublicAuthProcedures can be called without a token.
var PublicAuthProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

// AuthServiceHandler is implemented by the server.
type AuthServiceHandler interface {
	Register(context.Context, *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error)
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
	Logout(context.Context, *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error)
	GetCurrentUser(context.Context, *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	return route(AuthServiceName, map[string]http.Handler{
		AuthServiceRegisterProcedure:       newHandler(AuthServiceRegisterProcedure, svc.Register, opts),
		AuthServiceLoginProcedure:          newHandler(AuthServiceLoginProcedure, svc.Login, opts),
		AuthServiceLogoutProcedure:         newHandler(AuthServiceLogoutProcedure, svc.Logout, opts),
		AuthServiceGetCurrentUserProcedure: newHandler(AuthServiceGetCurrentUserProcedure, svc.GetCurrentUser, opts),
	})
}

// AuthServiceClient is a client for the settleup.v1.AuthService service.
type AuthServiceClient struct {
	register       *connect.Client[api.RegisterRequest, api.RegisterResponse]
	login          *connect.Client[api.LoginRequest, api.LoginResponse]
	logout         *connect.Client[api.LogoutRequest, api.LogoutResponse]
	getCurrentUser *connect.Client[api.GetCurrentUserRequest, api.GetCurrentUserResponse]
}

// NewAuthServiceClient constructs a client for the settleup.v1.AuthService service.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	return &AuthServiceClient{
		register:       newClient[api.RegisterRequest, api.RegisterResponse](httpClient, baseURL, AuthServiceRegisterProcedure, opts),
		login:          newClient[api.LoginRequest, api.LoginResponse](httpClient, baseURL, AuthServiceLoginProcedure, opts),
		logout:         newClient[api.LogoutRequest, api.LogoutResponse](httpClient, baseURL, AuthServiceLogoutProcedure, opts),
		getCurrentUser: newClient[api.GetCurrentUserRequest, api.GetCurrentUserResponse](httpClient, baseURL, AuthServiceGetCurrentUserProcedure, opts),
	}
}

// Register calls AuthService.Register.
func (c *AuthServiceClient) Register(ctx context.Context, req *connect.Request[api.RegisterRequest]) (*connect.Response[api.RegisterResponse], error) {
	return c.register.CallUnary(ctx, req)
}

// Login calls AuthService.Login.
func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// Logout calls AuthService.Logout.
func (c *AuthServiceClient) Logout(ctx context.Context, req *connect.Request[api.LogoutRequest]) (*connect.Response[api.LogoutResponse], error) {
	return c.logout.CallUnary(ctx, req)
}

// GetCurrentUser calls AuthService.GetCurrentUser.
func (c *AuthServiceClient) GetCurrentUser(ctx context.Context, req *connect.Request[api.GetCurrentUserRequest]) (*connect.Response[api.GetCurrentUserResponse], error) {
	return c.getCurrentUser.CallUnary(ctx, req)
}
