package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeGenerator struct {
	answer string
	err    error
	calls  int
	gotTxt string
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, text string) (string, error) {
	f.calls++
	f.gotTxt = text
	return f.answer, f.err
}

func TestRunTextEmptySkipsUpstream(t *testing.T) {
	gen := &fakeGenerator{}
	p := NewPipeline(gen, 12000)

	res, err := p.RunText(context.Background(), "   \n\t ")
	if err != nil {
		t.Fatalf("expected success for empty text, got %v", err)
	}
	if gen.calls != 0 {
		t.Fatalf("upstream called %d times for empty input", gen.calls)
	}
	if len(res.Questions) != 0 {
		t.Fatalf("expected no questions, got %d", len(res.Questions))
	}
	if len(res.Parse.Notes) == 0 {
		t.Fatalf("expected an explanatory note")
	}
}

func TestRunTextTruncatesBeforeUpstream(t *testing.T) {
	gen := &fakeGenerator{answer: "no questions"}
	p := NewPipeline(gen, 100)

	long := strings.Repeat("x", 500)
	if _, err := p.RunText(context.Background(), long); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(gen.gotTxt) != 100 {
		t.Fatalf("expected 100-char prefix sent upstream, got %d", len(gen.gotTxt))
	}
}

func TestRunTextUpstreamErrorPropagates(t *testing.T) {
	gen := &fakeGenerator{err: ErrUpstream}
	p := NewPipeline(gen, 12000)

	if _, err := p.RunText(context.Background(), "some text"); !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestRunTextParsesAnswer(t *testing.T) {
	gen := &fakeGenerator{answer: wellFormed}
	p := NewPipeline(gen, 12000)

	res, err := p.RunText(context.Background(), "source material")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Raw == "" {
		t.Fatalf("raw answer missing")
	}
	if res.Parse.Parsed != 2 || len(res.Questions) != 2 {
		t.Fatalf("parse: %+v", res.Parse)
	}
}

func TestDecodeTextRejectsGarbage(t *testing.T) {
	data := []byte("this is not a pdf at all")
	_, err := DecodeText(bytes.NewReader(data), int64(len(data)))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("abcdef", 4); got != "abcd" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 10); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abc", 0); got != "abc" {
		t.Fatalf("zero budget must not truncate: %q", got)
	}
}
