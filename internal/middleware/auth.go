package middleware

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
)

type contextKey string

const (
	// UserIDKey is the context key for storing the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// EmailKey is the context key for storing the authenticated user's email.
	EmailKey  contextKey = "email"
	claimsKey contextKey = "claims"
)

// GetUserID extracts the user ID from the context.
// Returns empty string if not found.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// GetEmail extracts the user email from the context.
func GetEmail(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

// GetClaims returns the token claims of the current request, if it carried one.
func GetClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// WithUserID marks ctx as authenticated as userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	ctx = WithUserID(ctx, claims.UserID)
	ctx = context.WithValue(ctx, EmailKey, claims.Email)
	return context.WithValue(ctx, claimsKey, claims)
}

func authenticate(jwtManager *auth.JWTManager, header string) (*auth.Claims, error) {
	token, err := auth.BearerToken(header)
	if err != nil {
		return nil, err
	}
	return jwtManager.Validate(token)
}

// RequireAuth validates the bearer token of every call except the listed public
// procedures, and stores the caller's identity in the context.
func RequireAuth(jwtManager *auth.JWTManager, publicProcedures ...string) connect.UnaryInterceptorFunc {
	public := make(map[string]bool, len(publicProcedures))
	for _, p := range publicProcedures {
		public[p] = true
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if public[req.Spec().Procedure] {
				return next(ctx, req)
			}
			claims, err := authenticate(jwtManager, req.Header().Get("Authorization"))
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			return next(withClaims(ctx, claims), req)
		}
	}
}

// OptionalAuth attaches the caller's identity when a valid token is present and
// lets the call through either way.
func OptionalAuth(jwtManager *auth.JWTManager) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if claims, err := authenticate(jwtManager, req.Header().Get("Authorization")); err == nil {
				ctx = withClaims(ctx, claims)
			}
			return next(ctx, req)
		}
	}
}

// RequireAuthHTTP is RequireAuth for plain HTTP handlers such as file downloads.
// Browsers cannot set headers on a download link, so a token query parameter is
// accepted as well.
func RequireAuthHTTP(jwtManager *auth.JWTManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if token := r.URL.Query().Get("token"); token != "" {
				header = "Bearer " + token
			}
		}
		claims, err := authenticate(jwtManager, header)
		if err != nil {
			if errors.Is(err, auth.ErrMissingToken) {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
	})
}
