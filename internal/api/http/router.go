package http

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/examforge/mcq-portal/internal/auth"
	authmw "github.com/examforge/mcq-portal/internal/auth/middleware"
	"github.com/examforge/mcq-portal/internal/events"
	"github.com/examforge/mcq-portal/internal/extract"
	"github.com/examforge/mcq-portal/internal/quiz"
	"github.com/examforge/mcq-portal/internal/rbac"
	"github.com/examforge/mcq-portal/internal/storage"
	"github.com/examforge/mcq-portal/internal/user"
)

// Deps is everything the router needs. All fields are required except
// FrontendDir, which mounts the guarded page routes when set.
type Deps struct {
	DB      *sql.DB
	Users   *user.Store
	Tokens  *auth.TokenService
	Blobs   storage.BlobStore
	Events  *events.Repo
	Quiz    quiz.Store
	Extract *extract.Pipeline

	MaxUploadBytes int64
	CORSOrigins    []string
	FrontendDir    string
}

// NewRouter wires every route behind the session and permission middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(90 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if err := d.DB.PingContext(req.Context()); err != nil {
			errorJSON(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", SignupHandler(d.Users))
		r.Post("/auth/signin", SigninHandler(d.Users, d.Tokens))

		r.Group(func(r chi.Router) {
			r.Use(authmw.Session(d.Tokens))

			r.Get("/auth/me", MeHandler())
			r.Post("/auth/logout", LogoutHandler())

			r.With(rbac.Require("bank:upload")).
				Post("/upload", UploadHandler(d.DB, d.Blobs, d.Events, d.MaxUploadBytes))
			r.With(rbac.Require("uploads:list")).
				Get("/uploads", ListUploadsHandler(d.DB))
			r.With(rbac.Require("bank:extract")).
				Post("/extract", ExtractHandler(d.DB, d.Blobs, d.Events, d.Extract, d.MaxUploadBytes))

			r.With(rbac.Require("test:create")).
				Post("/tests", CreateTestHandler(d.Quiz, d.Events))
			r.With(rbac.Require("test:view")).
				Get("/tests", ListTestsHandler(d.Quiz))
			r.With(rbac.Require("test:view")).
				Get("/tests/{testID}", GetTestHandler(d.Quiz))

			r.With(rbac.Require("attempt:create")).
				Post("/tests/{testID}/attempts", StartAttemptHandler(d.Quiz))
			r.With(rbac.Require("attempt:save")).
				Post("/attempts/{attemptID}/responses", SaveResponsesHandler(d.Quiz))
			r.With(rbac.Require("attempt:submit")).
				Post("/attempts/{attemptID}/submit", SubmitAttemptHandler(d.Quiz, d.Events))
			r.Get("/attempts/{attemptID}", GetAttemptHandler(d.Quiz))
			r.With(rbac.Require("attempt:view-own")).
				Get("/attempts", ListAttemptsHandler(d.Quiz))
		})
	})

	if d.FrontendDir != "" {
		guard := authmw.PageGuard(d.Tokens, "/login.html", "/dashboard.html")
		fs := http.FileServer(http.Dir(d.FrontendDir))
		r.With(guard).Handle("/*", fs)
	}

	return r
}
