package middleware

import (
	"mbs-hub/internal/auth"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/go-chi/chi/v5"
)

// ProcedureResolver reports the kind ("query" or "mutation") of a registered
// procedure.
type ProcedureResolver interface {
	Kind(procedure string) (string, bool)
}

// Authorizer creates a new middleware for authorization.
// It checks the caller's role against the procedure named by the
// {procedure} route parameter using Casbin. Unknown procedures pass through
// so the router can report them.
func Authorizer(e casbin.IEnforcer, procedures ProcedureResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, "procedure")
			kind, ok := procedures.Kind(name)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			role := GetUserInfo(r.Context()).Role
			if role == "" {
				role = auth.RoleAnonymous
			}

			allowed, err := e.Enforce(role, name, kind)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, CodeInternal, "Authorization error")
				return
			}
			if !allowed {
				WriteError(w, http.StatusForbidden, CodeForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
