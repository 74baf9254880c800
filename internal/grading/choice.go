package grading

import (
	"context"
	"strings"
)

// ChoiceSingle grades single-selection questions: the response must
// string-equal the first answer key entry (case-insensitive, trimmed).
type ChoiceSingle struct{}

func (ChoiceSingle) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	s, ok := response.(string)
	if !ok || len(q.AnswerKey) == 0 {
		return res, nil
	}
	if normalize(s) == normalize(q.AnswerKey[0]) {
		res.AutoPoints = q.Points
	}
	return res, nil
}

// ChoiceMulti grades multi-selection questions: the response set must equal
// the answer-key set, order-insensitive, no partial credit.
type ChoiceMulti struct{}

func (ChoiceMulti) Grade(_ context.Context, q Q, response interface{}) (Result, error) {
	res := Result{MaxPoints: q.Points}
	arr, ok := toStringSlice(response)
	if !ok {
		return res, nil
	}
	if equalSets(arr, q.AnswerKey) {
		res.AutoPoints = q.Points
	}
	return res, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func toStringSlice(v interface{}) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[normalize(s)]++
	}
	for _, s := range b {
		seen[normalize(s)]--
		if seen[normalize(s)] < 0 {
			return false
		}
	}
	return true
}
