package grading

import (
	"context"
	"testing"
)

func TestChoiceSingle(t *testing.T) {
	g := NewDefault()
	q := Q{Type: "mcq_single", Points: 2, AnswerKey: []string{"c"}}

	res, err := g.Grade(context.Background(), q, "c")
	if err != nil || res.AutoPoints != 2 {
		t.Fatalf("correct answer: %+v err=%v", res, err)
	}
	res, _ = g.Grade(context.Background(), q, " C ")
	if res.AutoPoints != 2 {
		t.Fatalf("case/space-insensitive compare failed: %+v", res)
	}
	res, _ = g.Grade(context.Background(), q, "a")
	if res.AutoPoints != 0 {
		t.Fatalf("wrong answer scored: %+v", res)
	}
	res, _ = g.Grade(context.Background(), q, 42)
	if res.AutoPoints != 0 {
		t.Fatalf("non-string response scored: %+v", res)
	}
}

func TestChoiceMulti(t *testing.T) {
	g := NewDefault()
	q := Q{Type: "mcq_multi", Points: 3, AnswerKey: []string{"a", "c"}}

	res, _ := g.Grade(context.Background(), q, []interface{}{"c", "a"})
	if res.AutoPoints != 3 {
		t.Fatalf("order-insensitive set failed: %+v", res)
	}
	res, _ = g.Grade(context.Background(), q, []interface{}{"a"})
	if res.AutoPoints != 0 {
		t.Fatalf("partial set scored: %+v", res)
	}
	res, _ = g.Grade(context.Background(), q, []interface{}{"a", "b"})
	if res.AutoPoints != 0 {
		t.Fatalf("wrong set scored: %+v", res)
	}
}

func TestUnknownType(t *testing.T) {
	g := NewDefault()
	res, err := g.Grade(context.Background(), Q{Type: "essay", Points: 5}, "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AutoPoints != 0 || res.MaxPoints != 5 {
		t.Fatalf("unknown type must award nothing: %+v", res)
	}
}
