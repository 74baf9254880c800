package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/examforge/mcq-portal/internal/auth/middleware"
	"github.com/examforge/mcq-portal/internal/events"
	"github.com/examforge/mcq-portal/internal/quiz"
	"github.com/examforge/mcq-portal/internal/rbac"
)

var questionTypes = map[string]bool{
	"mcq_single": true,
	"mcq_multi":  true,
	"true_false": true,
}

type createTestReq struct {
	Title        string          `json:"title"`
	TimeLimitSec int             `json:"time_limit_sec"`
	Questions    []quiz.Question `json:"questions"`
}

// POST /tests
func CreateTestHandler(store quiz.Store, ev *events.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTestReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Title = strings.TrimSpace(req.Title)
		if req.Title == "" || len(req.Questions) == 0 {
			errorJSON(w, http.StatusBadRequest, "title and questions are required")
			return
		}
		for i := range req.Questions {
			q := &req.Questions[i]
			if q.ID == "" {
				q.ID = quiz.NewTestID()
			}
			if q.Type == "" {
				q.Type = "mcq_single"
			}
			if !questionTypes[q.Type] {
				errorJSON(w, http.StatusBadRequest, "unknown question type: "+q.Type)
				return
			}
			if strings.TrimSpace(q.Stem) == "" || len(q.AnswerKey) == 0 {
				errorJSON(w, http.StatusBadRequest, "every question needs a stem and an answer key")
				return
			}
			if q.Points <= 0 {
				q.Points = 1
			}
		}

		t := quiz.Test{
			ID:           quiz.NewTestID(),
			Title:        req.Title,
			TimeLimitSec: req.TimeLimitSec,
			Questions:    req.Questions,
			CreatedBy:    authmw.SubjectFromContext(r.Context()),
			CreatedAt:    time.Now().Unix(),
		}
		if err := store.PutTest(r.Context(), t); err != nil {
			log.Printf("test create failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not create test")
			return
		}
		ev.Log(r.Context(), events.TypeTestCreated, t.ID, map[string]interface{}{
			"title": t.Title, "questions": len(t.Questions), "created_by": t.CreatedBy,
		})
		writeJSON(w, http.StatusCreated, map[string]string{"id": t.ID})
	}
}

// GET /tests
func ListTestsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tests, err := store.ListTests(r.Context())
		if err != nil {
			log.Printf("test list failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not list tests")
			return
		}
		writeJSON(w, http.StatusOK, tests)
	}
}

// GET /tests/{testID} returns the test with answer keys stripped.
func GetTestHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if errors.Is(err, quiz.ErrTestNotFound) {
			errorJSON(w, http.StatusNotFound, "test not found")
			return
		}
		if err != nil {
			log.Printf("test get failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not load test")
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// POST /tests/{testID}/attempts
func StartAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.NewAttempt(r.Context(), chi.URLParam(r, "testID"), authmw.SubjectFromContext(r.Context()))
		if errors.Is(err, quiz.ErrTestNotFound) {
			errorJSON(w, http.StatusNotFound, "test not found")
			return
		}
		if err != nil {
			log.Printf("attempt start failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not start attempt")
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

type saveResponsesReq struct {
	Responses map[string]interface{} `json:"responses"`
}

// POST /attempts/{attemptID}/responses merges partial responses into an
// in-progress attempt.
func SaveResponsesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		if !ownAttempt(r, store, id) {
			errorJSON(w, http.StatusForbidden, "forbidden")
			return
		}
		var req saveResponsesReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Responses == nil {
			errorJSON(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := store.SaveResponses(r.Context(), id, req.Responses)
		if err != nil {
			writeAttemptError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// POST /attempts/{attemptID}/submit grades the attempt. Submitting twice is
// not an error; the stored result is returned unchanged.
func SubmitAttemptHandler(store quiz.Store, ev *events.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		if !ownAttempt(r, store, id) {
			errorJSON(w, http.StatusForbidden, "forbidden")
			return
		}
		a, err := store.Submit(r.Context(), id)
		if err != nil {
			writeAttemptError(w, err)
			return
		}
		ev.Log(r.Context(), events.TypeAttemptSubmitted, a.ID, map[string]interface{}{
			"test_id": a.TestID, "user_id": a.UserID, "score": a.Score, "max_score": a.MaxScore,
		})
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts/{attemptID} serves the owner, or any caller holding
// attempt:view-all.
func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
		if errors.Is(err, quiz.ErrAttemptNotFound) {
			errorJSON(w, http.StatusNotFound, "attempt not found")
			return
		}
		if err != nil {
			log.Printf("attempt get failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not load attempt")
			return
		}
		owner := a.UserID == authmw.SubjectFromContext(r.Context())
		if !owner && !rbac.Allowed(rbac.RoleFromContext(r.Context()), "attempt:view-all") {
			errorJSON(w, http.StatusForbidden, "forbidden")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /attempts lists the caller's attempts.
func ListAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ListAttempts(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			log.Printf("attempt list failed: %v", err)
			errorJSON(w, http.StatusInternalServerError, "could not list attempts")
			return
		}
		if out == nil {
			out = []quiz.Attempt{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ownAttempt reports whether the caller started the attempt. Unknown attempts
// pass through so the store can answer with its own not-found error.
func ownAttempt(r *http.Request, store quiz.Store, id string) bool {
	a, err := store.GetAttempt(r.Context(), id)
	if err != nil {
		return true
	}
	return a.UserID == authmw.SubjectFromContext(r.Context())
}

func writeAttemptError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrAttemptNotFound):
		errorJSON(w, http.StatusNotFound, "attempt not found")
	case errors.Is(err, quiz.ErrAlreadyDone):
		errorJSON(w, http.StatusConflict, "attempt already submitted")
	case errors.Is(err, quiz.ErrTimeExpired):
		errorJSON(w, http.StatusConflict, "attempt time limit expired")
	default:
		log.Printf("attempt update failed: %v", err)
		errorJSON(w, http.StatusInternalServerError, "could not update attempt")
	}
}
