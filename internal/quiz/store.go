package quiz

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/examforge/mcq-portal/internal/grading"
)

var (
	ErrTestNotFound    = errors.New("test not found")
	ErrAttemptNotFound = errors.New("attempt not found")
	ErrAlreadyDone     = errors.New("attempt already submitted")
	ErrTimeExpired     = errors.New("attempt time limit expired")
)

type Store interface {
	PutTest(ctx context.Context, t Test) error
	GetTest(ctx context.Context, id string) (Test, error) // answer keys stripped
	ListTests(ctx context.Context) ([]Test, error)         // summaries, no questions
	NewAttempt(ctx context.Context, testID, userID string) (Attempt, error)
	SaveResponses(ctx context.Context, attemptID string, resp map[string]interface{}) (Attempt, error)
	Submit(ctx context.Context, attemptID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, userID string) ([]Attempt, error)
}

// memoryStore backs handler tests; SQLStore is the production store.
type memoryStore struct {
	mu       sync.RWMutex
	grader   grading.Grader
	tests    map[string]Test
	attempts map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		grader:   grading.NewDefault(),
		tests:    map[string]Test{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutTest(_ context.Context, t Test) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tests[t.ID] = t
	return nil
}

func (m *memoryStore) GetTest(_ context.Context, id string) (Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tests[id]
	if !ok {
		return Test{}, ErrTestNotFound
	}
	return stripAnswers(t), nil
}

func (m *memoryStore) ListTests(_ context.Context) ([]Test, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Test, 0, len(m.tests))
	for _, t := range m.tests {
		t.Questions = nil
		out = append(out, t)
	}
	return out, nil
}

func (m *memoryStore) NewAttempt(_ context.Context, testID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tests[testID]; !ok {
		return Attempt{}, ErrTestNotFound
	}
	a := Attempt{
		ID:        uuid.NewString(),
		TestID:    testID,
		UserID:    userID,
		Status:    StatusInProgress,
		Responses: map[string]interface{}{},
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) SaveResponses(_ context.Context, attemptID string, resp map[string]interface{}) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Status == StatusSubmitted {
		return Attempt{}, ErrAlreadyDone
	}
	if a.Expired(m.tests[a.TestID], time.Now().Unix()) {
		return Attempt{}, ErrTimeExpired
	}
	for k, v := range resp {
		a.Responses[k] = v
	}
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	t := m.tests[a.TestID]
	a.Score, a.MaxScore = scoreAttempt(ctx, m.grader, t, a)
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, userID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func stripAnswers(t Test) Test {
	qs := make([]Question, len(t.Questions))
	copy(qs, t.Questions)
	for i := range qs {
		qs[i].AnswerKey = nil
	}
	t.Questions = qs
	return t
}

func scoreAttempt(ctx context.Context, g grading.Grader, t Test, a Attempt) (score, max float64) {
	for _, q := range t.Questions {
		max += q.Points
		resp, ok := a.Responses[q.ID]
		if !ok {
			continue
		}
		res, err := g.Grade(ctx, grading.Q{Type: q.Type, Points: q.Points, AnswerKey: q.AnswerKey}, resp)
		if err != nil {
			continue
		}
		score += res.AutoPoints
	}
	return score, max
}
