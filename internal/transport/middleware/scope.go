package middleware

import (
	"net/http"

	"github.com/frahmantamala/care-management/internal/authz"
	"github.com/frahmantamala/care-management/pkg/logger"
)

// RequireScope guards a route group behind one of the given scopes. The
// credentials must already be in the context, so this always sits after the
// auth middleware. Missing credentials are treated as an expired session.
func RequireScope(scopes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			creds, ok := authz.CredentialsFromContext(r.Context())
			if !ok {
				http.Error(w, `{"code":401,"message":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			for _, scope := range scopes {
				if creds.HasScope(scope) {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.From(r.Context()).Warn("scope check failed",
				"user_id", creds.ID,
				"required", scopes,
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"code":403,"message":"insufficient permissions"}`))
		})
	}
}
