package middleware

import (
	"net/http"

	"github.com/examforge/mcq-portal/internal/auth"
	"github.com/examforge/mcq-portal/internal/user"
)

// PageGuard decides allow / redirect for browser page navigation. Claims are
// only ever trusted after full signature verification; a token that does not
// verify is treated the same as no token at all.
//
// Rules:
//   - no valid session on a guarded page -> redirect to the login page
//     (the login page itself stays reachable)
//   - valid faculty session requesting the login page -> redirect to the
//     dashboard
//   - everything else passes through
func PageGuard(svc *auth.TokenService, loginPath, dashboardPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var claims *auth.Claims
			if tok := TokenFromRequest(r); tok != "" {
				claims, _ = svc.Verify(tok)
			}

			if claims == nil {
				if r.URL.Path == loginPath {
					next.ServeHTTP(w, r)
					return
				}
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}

			if r.URL.Path == loginPath && claims.Role == user.RoleFaculty {
				http.Redirect(w, r, dashboardPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}
