package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/routedesk/routedesk/internal/platform/httpx"
)

// Middleware authenticates requests and enforces role requirements.
type Middleware struct {
	Issuer *TokenIssuer
	Logger *slog.Logger
}

// Authenticate parses the bearer token and stores the identity in context.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		identity, err := m.Issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			m.Logger.Warn("token verification failed", "error", err)
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
	})
}

// RequireAdmin rejects non-admin callers.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		if !identity.IsAdmin() {
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
