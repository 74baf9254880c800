package quiz

// Question is one test question. AnswerKey holds the accepted responses:
// for mcq_single the option letter ("a".."d"), for mcq_multi every correct
// letter. Answer keys are stripped before a test is served to students.
type Question struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"` // mcq_single, mcq_multi, true_false
	Stem      string   `json:"stem"`
	Options   []string `json:"options,omitempty"`
	AnswerKey []string `json:"answer_key,omitempty"`
	Points    float64  `json:"points"`
}

// Test is an assembled set of questions with a time limit.
type Test struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`
	CreatedBy    string     `json:"created_by,omitempty"`
	CreatedAt    int64      `json:"created_at,omitempty"`
}

const (
	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

// Attempt records one student's pass through a test.
type Attempt struct {
	ID          string                 `json:"id"`
	TestID      string                 `json:"test_id"`
	UserID      string                 `json:"user_id"`
	Status      string                 `json:"status"`
	Score       float64                `json:"score"`
	MaxScore    float64                `json:"max_score"`
	Responses   map[string]interface{} `json:"responses"` // questionID -> response
	StartedAt   int64                  `json:"started_at"`
	SubmittedAt int64                  `json:"submitted_at,omitempty"`
}

// Expired reports whether the attempt has run past the test's time limit.
func (a Attempt) Expired(t Test, now int64) bool {
	if t.TimeLimitSec <= 0 {
		return false
	}
	return now > a.StartedAt+int64(t.TimeLimitSec)
}
