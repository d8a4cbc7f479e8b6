package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/logging"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// Client errors are logged at warn level, server faults at error level.
// Install it inside RequireAuth so the user ID is known.
func LoggingInterceptor(logger *slog.Logger) connect.UnaryInterceptorFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			attrs := []any{
				logging.KeyProcedure, procedure,
				logging.KeyUserID, GetUserID(ctx),
				logging.KeyDuration, time.Since(start).Milliseconds(),
			}
			if err == nil {
				logger.InfoContext(ctx, "RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if errors.As(err, &connectErr) && !isServerFault(connectErr.Code()) {
				logger.WarnContext(ctx, "RPC error", append(attrs,
					"code", connectErr.Code().String(),
					logging.KeyError, connectErr.Message(),
				)...)
			} else {
				logger.ErrorContext(ctx, "RPC error", append(attrs, logging.KeyError, err)...)
			}
			return resp, err
		}
	}
}

func isServerFault(code connect.Code) bool {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return true
	}
	return false
}

// RequestLogger logs every HTTP request with its method, path and duration.
func RequestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.DebugContext(r.Context(), "Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			logging.KeyDuration, time.Since(start).Milliseconds(),
		)
	})
}

// CORS adds the headers browsers need to call Connect endpoints from another origin.
func CORS(allowOrigin string, next http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		h.Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Ledger-Reason, Ledger-Owed, Ledger-Already-Paid, Ledger-Remaining, Content-Disposition")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
