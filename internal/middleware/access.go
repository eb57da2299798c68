package middleware

import (
	"context"
	"net/http"

	"github.com/forgo/inkwell/internal/model"
)

// PermissionChecker defines the interface for permission checks
type PermissionChecker interface {
	Allowed(ctx context.Context, claims *model.TokenClaims, code, recordID string) (bool, error)
}

// RequirePermission returns a middleware enforcing one permission code
// on every request it wraps. When the route carries an {id} path value
// it is passed along so per-record grants are honored. Anonymous
// callers get 401, authenticated callers without the permission get 403.
func RequirePermission(checker PermissionChecker, code string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r.Context())
			recordID := r.PathValue("id")

			allowed, err := checker.Allowed(r.Context(), claims, code, recordID)
			if err != nil {
				model.NewInternalError("permission check failed").WriteJSON(w)
				return
			}
			if !allowed {
				if claims == nil {
					model.NewUnauthorizedError("authentication required").WriteJSON(w)
				} else {
					model.NewForbiddenError("missing permission: " + code).WriteJSON(w)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
