package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/examforge/mcq-portal/internal/db"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func sampleTest() Test {
	return Test{
		ID:           NewTestID(),
		Title:        "Biology Unit 3",
		TimeLimitSec: 1800,
		CreatedBy:    "fac-1",
		Questions: []Question{
			{ID: "q1", Type: "mcq_single", Stem: "Which gas do plants absorb?",
				Options: []string{"Oxygen", "Carbon dioxide", "Nitrogen", "Helium"},
				AnswerKey: []string{"b"}, Points: 1},
			{ID: "q2", Type: "mcq_single", Stem: "Capital of France?",
				Options: []string{"Berlin", "Madrid", "Paris", "Rome"},
				AnswerKey: []string{"c"}, Points: 2},
		},
	}
}

// both stores must behave identically
func eachStore(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Helper()
	t.Run("memory", func(t *testing.T) { fn(t, NewInMemoryStore()) })
	t.Run("sql", func(t *testing.T) { fn(t, NewSQLStore(openTestDB(t))) })
}

func TestGetTestStripsAnswerKeys(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		tt := sampleTest()
		if err := s.PutTest(ctx, tt); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := s.GetTest(ctx, tt.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		for _, q := range got.Questions {
			if q.AnswerKey != nil {
				t.Fatalf("answer key leaked for %s", q.ID)
			}
		}
		if len(got.Questions) != 2 {
			t.Fatalf("questions lost: %d", len(got.Questions))
		}
	})
}

func TestAttemptLifecycle(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		tt := sampleTest()
		if err := s.PutTest(ctx, tt); err != nil {
			t.Fatalf("put: %v", err)
		}

		a, err := s.NewAttempt(ctx, tt.ID, "stu-1")
		if err != nil {
			t.Fatalf("new attempt: %v", err)
		}
		if a.Status != StatusInProgress {
			t.Fatalf("status: %q", a.Status)
		}

		if _, err := s.SaveResponses(ctx, a.ID, map[string]interface{}{"q1": "b"}); err != nil {
			t.Fatalf("save 1: %v", err)
		}
		if _, err := s.SaveResponses(ctx, a.ID, map[string]interface{}{"q2": "a"}); err != nil {
			t.Fatalf("save 2: %v", err)
		}

		sub, err := s.Submit(ctx, a.ID)
		if err != nil {
			t.Fatalf("submit: %v", err)
		}
		if sub.Score != 1 { // q1 right (1 pt), q2 wrong
			t.Fatalf("score: %v", sub.Score)
		}
		if sub.MaxScore != 3 {
			t.Fatalf("max score: %v", sub.MaxScore)
		}
		if sub.Status != StatusSubmitted || sub.SubmittedAt == 0 {
			t.Fatalf("submit state: %+v", sub)
		}

		// idempotent submit
		again, err := s.Submit(ctx, a.ID)
		if err != nil || again.Score != sub.Score {
			t.Fatalf("second submit changed score: %+v err=%v", again, err)
		}

		// saving after submit is rejected
		if _, err := s.SaveResponses(ctx, a.ID, map[string]interface{}{"q1": "a"}); !errors.Is(err, ErrAlreadyDone) {
			t.Fatalf("expected ErrAlreadyDone, got %v", err)
		}
	})
}

func TestAttemptUnknownTest(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		if _, err := s.NewAttempt(context.Background(), "missing", "stu-1"); !errors.Is(err, ErrTestNotFound) {
			t.Fatalf("expected ErrTestNotFound, got %v", err)
		}
	})
}

func TestListAttemptsFiltersByUser(t *testing.T) {
	eachStore(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		tt := sampleTest()
		if err := s.PutTest(ctx, tt); err != nil {
			t.Fatalf("put: %v", err)
		}
		if _, err := s.NewAttempt(ctx, tt.ID, "stu-1"); err != nil {
			t.Fatalf("attempt: %v", err)
		}
		if _, err := s.NewAttempt(ctx, tt.ID, "stu-2"); err != nil {
			t.Fatalf("attempt: %v", err)
		}
		mine, err := s.ListAttempts(ctx, "stu-1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(mine) != 1 || mine[0].UserID != "stu-1" {
			t.Fatalf("list: %+v", mine)
		}
	})
}

func TestExpiredAttemptRejectsResponses(t *testing.T) {
	// memory store only: the clock is driven through StartedAt directly
	s := NewInMemoryStore().(*memoryStore)
	ctx := context.Background()
	tt := sampleTest()
	tt.TimeLimitSec = 60
	if err := s.PutTest(ctx, tt); err != nil {
		t.Fatalf("put: %v", err)
	}
	a, err := s.NewAttempt(ctx, tt.ID, "stu-1")
	if err != nil {
		t.Fatalf("attempt: %v", err)
	}
	// rewind the start far past the limit
	past := s.attempts[a.ID]
	past.StartedAt -= 3600
	s.attempts[a.ID] = past

	if _, err := s.SaveResponses(ctx, a.ID, map[string]interface{}{"q1": "b"}); !errors.Is(err, ErrTimeExpired) {
		t.Fatalf("expected ErrTimeExpired, got %v", err)
	}
}
