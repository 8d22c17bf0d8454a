package httpx

import (
	"net/http"
	"strings"
)

// RequireRole the caller's role must be one of those listed. Roles are
// a closed set, so an unrecognized role in a token simply never
// matches. Run after AuthnMiddleware.
func RequireRole(allowed ...string) Middleware {
	want := make(map[string]struct{}, len(allowed))
	for _, r := range allowed {
		want[r] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := roleFromCtx(r.Context())

			if _, ok := want[have]; ok {
				next.ServeHTTP(w, r)
				return
			}

			writeBearerRoleError(w, http.StatusForbidden, allowed...)
		})
	}
}

// RFC 6750-compliant error response for an insufficient role.
func writeBearerRoleError(w http.ResponseWriter, code int, allowed ...string) {
	w.Header().
		Set("WWW-Authenticate", `Bearer error="insufficient_scope", scope="`+strings.Join(allowed, " ")+`"`)
	WriteJSON(w, code, map[string]string{
		"error":             "forbidden",
		"error_description": "caller role is not permitted for this resource",
	})
}
