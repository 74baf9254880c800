package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/examforge/mcq-portal/internal/auth"
	"github.com/examforge/mcq-portal/internal/user"
)

func guardedHandler(t *testing.T, svc *auth.TokenService) http.Handler {
	t.Helper()
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return PageGuard(svc, "/login", "/dashboard")(ok)
}

func doGuarded(t *testing.T, h http.Handler, path, cookie string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: cookie})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGuardRedirectsAnonymousToLogin(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Minute)
	h := guardedHandler(t, svc)

	rec := doGuarded(t, h, "/dashboard", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected 302 to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// login page itself stays reachable
	rec = doGuarded(t, h, "/login", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login page: expected 200, got %d", rec.Code)
	}
}

func TestGuardTreatsInvalidTokenAsAnonymous(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Minute)
	h := guardedHandler(t, svc)

	// token signed with another secret: claims must not be trusted
	forged, err := auth.NewTokenService("other", time.Minute).Issue(user.User{ID: "x", Role: user.RoleFaculty})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := doGuarded(t, h, "/dashboard", forged)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("forged token: expected redirect to /login, got %d", rec.Code)
	}
}

func TestGuardRedirectsFacultyAwayFromLogin(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Minute)
	h := guardedHandler(t, svc)

	tok, err := svc.Issue(user.User{ID: "f1", Role: user.RoleFaculty})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := doGuarded(t, h, "/login", tok)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("expected 302 to /dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	// students on the login page pass through
	stok, err := svc.Issue(user.User{ID: "s1", Role: user.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec = doGuarded(t, h, "/login", stok)
	if rec.Code != http.StatusOK {
		t.Fatalf("student on login: expected 200, got %d", rec.Code)
	}
}

func TestGuardPassesAuthenticatedPages(t *testing.T) {
	svc := auth.NewTokenService("secret", time.Minute)
	h := guardedHandler(t, svc)

	tok, err := svc.Issue(user.User{ID: "s1", Role: user.RoleStudent})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	rec := doGuarded(t, h, "/dashboard", tok)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
