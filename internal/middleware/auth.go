package middleware

import (
	"net/http"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/auth"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/transport"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

// AuthMiddleware attaches the caller to the request context when a token is
// present. Requests without a token pass through anonymously; a token that
// fails verification is rejected with 401.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := auth.ExtractAccessToken(r)
			if tokenStr == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Parse(tokenStr)
			if err != nil {
				logger.FromCtx(r.Context()).Debug("rejected access token", zap.Error(err))
				transport.WriteError(w, r, apperr.Auth("invalid or expired token"))
				return
			}

			ctx := utils.SetUserContext(r.Context(), claims.UserID, claims.Email, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects anonymous callers with 401.
func RequireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := utils.GetUserIDFromContext(r.Context()); !ok {
			transport.WriteError(w, r, apperr.Auth("authentication required"))
			return
		}
		next(w, r)
	}
}

// RequireAdmin rejects anonymous callers with 401 and non-staff callers with 403.
func RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return RequireUser(func(w http.ResponseWriter, r *http.Request) {
		if !utils.IsAdmin(r.Context()) {
			transport.WriteError(w, r, apperr.Permission("administrator access required"))
			return
		}
		next(w, r)
	})
}
