package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/oursapp/ours/internal/render"
)

// SameOrigin rejects state-changing requests whose Origin header does not
// name the host they were sent to. Safe methods pass through.
func SameOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		origin := r.Header.Get("Origin")
		if !sameHost(origin, r.Host) {
			slog.Warn("cross-origin request rejected",
				"path", r.URL.Path,
				"method", r.Method,
				"origin", origin,
				"ip", ClientIP(r),
			)
			render.Error(w, http.StatusForbidden, "Forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func sameHost(origin, host string) bool {
	if origin == "" || host == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == host
}
