package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/examforge/mcq-portal/internal/auth"
	authmw "github.com/examforge/mcq-portal/internal/auth/middleware"
	"github.com/examforge/mcq-portal/internal/user"
)

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type signinReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/signup
func SignupHandler(store *user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := store.Create(r.Context(), req.Name, req.Email, req.Password, req.Role)
		switch {
		case errors.Is(err, user.ErrInvalidInput):
			errorJSON(w, http.StatusBadRequest, "all fields are required")
			return
		case errors.Is(err, user.ErrDuplicateEmail):
			errorJSON(w, http.StatusConflict, "email already registered")
			return
		case err != nil:
			log.Printf("signup store error: %v", err)
			errorJSON(w, http.StatusInternalServerError, "signup failed")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": u})
	}
}

// POST /auth/signin
//
// Unknown email and wrong password produce byte-identical responses:
// account enumeration learns nothing here.
func SigninHandler(store *user.Store, tokens *auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signinReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid json")
			return
		}
		u, err := store.FindByEmail(r.Context(), req.Email)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				log.Printf("signin store error: %v", err)
			}
			errorJSON(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		if user.CheckPassword(u, req.Password) != nil {
			errorJSON(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		tok, err := tokens.Issue(u)
		if err != nil {
			log.Printf("token issue error: %v", err)
			errorJSON(w, http.StatusInternalServerError, "signin failed")
			return
		}
		authmw.SetSessionCookie(w, tok, int(tokens.TTL().Seconds()))
		writeJSON(w, http.StatusOK, map[string]any{"token": tok, "user": u})
	}
}

// GET /auth/me shapes the profile from verified claims only; no store
// round-trip.
func MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := authmw.ClaimsFromContext(r.Context())
		if c == nil {
			errorJSON(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		name := c.Name
		if name == "" {
			name = "Unknown User"
		}
		img := c.ProfileImage
		if img == "" {
			img = user.DefaultProfileImage
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"id":           c.Subject,
			"name":         name,
			"email":        c.Email,
			"role":         c.Role,
			"profileImage": img,
		})
	}
}

// POST /auth/logout clears the cookie; the token stays valid until expiry.
func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authmw.ClearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
	}
}
