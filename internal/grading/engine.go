package grading

import (
	"context"
)

// Q is a minimal view of a question needed for grading.
type Q struct {
	Type      string
	Points    float64
	AnswerKey []string
}

// Result is the outcome of grading a single question response.
type Result struct {
	AutoPoints float64 // points awarded automatically
	MaxPoints  float64 // the question's max points
	Feedback   []string
}

// Strategy grades a single question.
type Strategy interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

// Grader routes by question type to the correct Strategy.
type Grader interface {
	Grade(ctx context.Context, q Q, response interface{}) (Result, error)
}

type defaultGrader struct {
	strategies map[string]Strategy
}

func (g *defaultGrader) Grade(ctx context.Context, q Q, response interface{}) (Result, error) {
	s, ok := g.strategies[q.Type]
	if !ok {
		return Result{MaxPoints: q.Points, Feedback: []string{"no strategy for type " + q.Type}}, nil
	}
	return s.Grade(ctx, q, response)
}

// NewDefault covers every question type this portal produces: single-choice
// MCQs from the extraction pipeline, plus multi-choice and true/false for
// hand-authored tests.
func NewDefault() Grader {
	return &defaultGrader{strategies: map[string]Strategy{
		"mcq_single": ChoiceSingle{},
		"true_false": ChoiceSingle{},
		"mcq_multi":  ChoiceMulti{},
	}}
}
