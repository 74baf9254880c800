package middleware

import (
	"net/http"
	"strings"

	"github.com/examforge/mcq-portal/internal/auth"
	"github.com/examforge/mcq-portal/internal/rbac"
)

// SessionCookie is the cookie carrying the session token. The same token is
// also accepted as an Authorization bearer for clients that manage their own
// storage; both channels go through the same verification.
const SessionCookie = "token"

// Session authenticates every request in the group. There is exactly one
// mechanism for all protected routes: a verified session token, from the
// cookie or the Authorization header. Requests without a valid token get a
// uniform 401.
func Session(svc *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := TokenFromRequest(r)
			if tok == "" {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			claims, err := svc.Verify(tok)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}
			ctx := WithClaims(r.Context(), claims)
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest pulls the session token from the cookie first, then the
// Authorization header.
func TokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// SetSessionCookie hands the issued token to the browser. HttpOnly keeps it
// away from page scripts; SameSite=Lax still allows top-level navigation.
func SetSessionCookie(w http.ResponseWriter, token string, maxAgeSec int) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAgeSec,
	})
}

// ClearSessionCookie removes the cookie. The token itself stays valid until
// expiry; there is no server-side revocation list.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
