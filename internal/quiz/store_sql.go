package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/mcq-portal/internal/grading"
)

type SQLStore struct {
	db     *sql.DB
	grader grading.Grader
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, grader: grading.NewDefault()}
}

func (s *SQLStore) PutTest(ctx context.Context, t Test) error {
	qj, err := json.Marshal(t.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tests (id,title,time_limit_sec,questions_json,created_by,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title,
		   time_limit_sec=EXCLUDED.time_limit_sec, questions_json=EXCLUDED.questions_json`,
		t.ID, t.Title, t.TimeLimitSec, string(qj), t.CreatedBy, time.Now().Unix())
	return err
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	t, err := s.getTestWithKeys(ctx, id)
	if err != nil {
		return Test{}, err
	}
	return stripAnswers(t), nil
}

func (s *SQLStore) getTestWithKeys(ctx context.Context, id string) (Test, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,title,time_limit_sec,questions_json,created_by,created_at FROM tests WHERE id=$1`, id)
	var t Test
	var qjson string
	if err := row.Scan(&t.ID, &t.Title, &t.TimeLimitSec, &qjson, &t.CreatedBy, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Test{}, ErrTestNotFound
		}
		return Test{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &t.Questions); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTests(ctx context.Context) ([]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,title,time_limit_sec,created_by,created_at FROM tests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Test{}
	for rows.Next() {
		var t Test
		if err := rows.Scan(&t.ID, &t.Title, &t.TimeLimitSec, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) NewAttempt(ctx context.Context, testID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM tests WHERE id=$1`, testID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrTestNotFound
		}
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		TestID:    testID,
		UserID:    userID,
		Status:    StatusInProgress,
		Responses: map[string]interface{}{},
		StartedAt: time.Now().Unix(),
	}
	respJSON, _ := json.Marshal(a.Responses)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (id,test_id,user_id,status,score,responses_json,started_at)
		 VALUES ($1,$2,$3,$4,0,$5,$6)`,
		a.ID, a.TestID, a.UserID, a.Status, string(respJSON), a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) SaveResponses(ctx context.Context, attemptID string, resp map[string]interface{}) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAlreadyDone
	}
	t, err := s.getTestWithKeys(ctx, a.TestID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Expired(t, time.Now().Unix()) {
		return Attempt{}, ErrTimeExpired
	}
	if a.Responses == nil {
		a.Responses = map[string]interface{}{}
	}
	for k, v := range resp {
		a.Responses[k] = v
	}
	buf, _ := json.Marshal(a.Responses)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE attempts SET responses_json=$1 WHERE id=$2`, string(buf), attemptID); err != nil {
		return Attempt{}, err
	}
	return s.GetAttempt(ctx, attemptID)
}

func (s *SQLStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	t, err := s.getTestWithKeys(ctx, a.TestID)
	if err != nil {
		return Attempt{}, err
	}
	a.Score, a.MaxScore = scoreAttempt(ctx, s.grader, t, a)
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	_, err = s.db.ExecContext(ctx,
		`UPDATE attempts SET status=$1, score=$2, submitted_at=$3 WHERE id=$4`,
		a.Status, a.Score, a.SubmittedAt, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,test_id,user_id,status,score,responses_json,started_at,COALESCE(submitted_at,0)
		 FROM attempts WHERE id=$1`, id)
	var a Attempt
	var respJSON string
	if err := row.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.Score, &respJSON, &a.StartedAt, &a.SubmittedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(respJSON), &a.Responses); err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		// MaxScore is derivable; recompute for result views
		if t, err := s.getTestWithKeys(ctx, a.TestID); err == nil {
			for _, q := range t.Questions {
				a.MaxScore += q.Points
			}
		}
	}
	return a, nil
}

func (s *SQLStore) ListAttempts(ctx context.Context, userID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,test_id,user_id,status,score,started_at,COALESCE(submitted_at,0)
		 FROM attempts WHERE user_id=$1 ORDER BY started_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		var a Attempt
		if err := rows.Scan(&a.ID, &a.TestID, &a.UserID, &a.Status, &a.Score, &a.StartedAt, &a.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// NewTestID gives tests their store-assigned identifier.
func NewTestID() string { return uuid.NewString() }
