package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/oursapp/ours/internal/ctxkeys"
	"github.com/oursapp/ours/internal/render"
	"github.com/oursapp/ours/internal/service"
)

// AuthMiddleware resolves the session cookie and adds user + session to context if valid.
// A session close to expiry is renewed and its cookie refreshed.
func AuthMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookie)
			if err != nil {
				// No cookie, continue without auth
				next.ServeHTTP(w, r)
				return
			}

			user, session, renewed, err := authService.ValidateSession(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthorized) {
					slog.Error("failed to validate session", "error", err)
				}
				authService.ClearSessionCookie(w)
				next.ServeHTTP(w, r)
				return
			}

			if renewed {
				authService.SetSessionCookie(w, cookie.Value, session.ExpiresAt)
			}

			// Security: Remove password hash from context
			user.PasswordHash = ""

			ctx := ctxkeys.WithUser(r.Context(), user)
			ctx = ctxkeys.WithSession(ctx, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests without a valid session.
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ctxkeys.User(r.Context()) == nil {
			render.Error(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	}
}
