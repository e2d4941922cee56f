package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/murmur/murmur/internal/auth"
)

// TokenVerifier resolves an Authorization header value to a user ID.
// *auth.TokenService implements it.
type TokenVerifier interface {
	VerifyHeader(header string) (string, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier TokenVerifier
}

// Auth returns a middleware that admits only requests with a valid bearer token.
//
// A missing header or empty token yields 401. A token that fails verification
// (bad signature, wrong scheme, expired) yields 403. On success the user ID is
// attached to the request context and the next handler runs. The gate never
// touches storage.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			userID, err := cfg.Verifier.VerifyHeader(header)
			if err != nil {
				reason := authFailureReason(err)
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				if errors.Is(err, auth.ErrMissingToken) {
					writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
					return
				}
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Invalid or expired token")
				return
			}

			AnnotateUserID(r.Context(), userID)

			ctx := auth.ContextWithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing_token"
	case errors.Is(err, auth.ErrExpired):
		return "expired_token"
	default:
		return "invalid_token"
	}
}
