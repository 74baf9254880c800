package extract

import (
	"context"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generator is the upstream generation call. Satisfied by GeminiClient;
// tests swap in a fake.
type Generator interface {
	GenerateQuestions(ctx context.Context, text string) (string, error)
}

// Result carries both views of an extraction: the decoded text, the
// upstream's raw answer, and the structured best-effort parse of it.
type Result struct {
	Text      string     `json:"text"`
	Raw       string     `json:"raw"`
	Questions []Question `json:"questions"`
	Parse     Report     `json:"parse"`
}

type Pipeline struct {
	gen      Generator
	maxChars int
}

func NewPipeline(gen Generator, maxChars int) *Pipeline {
	return &Pipeline{gen: gen, maxChars: maxChars}
}

var extractionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mcqportal_extractions_total",
	Help: "Extraction pipeline runs by outcome.",
}, []string{"outcome"})

// Run decodes, truncates, calls upstream once (with the client's own retry
// budget) and parses the answer. Cancelling ctx (client disconnect) aborts
// the upstream call.
func (p *Pipeline) Run(ctx context.Context, file io.ReaderAt, size int64) (Result, error) {
	text, err := DecodeText(file, size)
	if err != nil {
		extractionsTotal.WithLabelValues("decode_error").Inc()
		return Result{}, err
	}
	return p.RunText(ctx, text)
}

// RunText is the pipeline from decoded text onward. An empty or
// whitespace-only document is a successful empty result; the upstream is
// never called with nothing to read.
func (p *Pipeline) RunText(ctx context.Context, text string) (Result, error) {
	text = Truncate(text, p.maxChars)

	if strings.TrimSpace(text) == "" {
		extractionsTotal.WithLabelValues("empty").Inc()
		return Result{Text: text, Parse: Report{Notes: []string{"document contained no extractable text"}}}, nil
	}

	raw, err := p.gen.GenerateQuestions(ctx, text)
	if err != nil {
		extractionsTotal.WithLabelValues("upstream_error").Inc()
		return Result{}, err
	}

	questions, report := ParseQuestions(raw)
	extractionsTotal.WithLabelValues("ok").Inc()
	return Result{Text: text, Raw: raw, Questions: questions, Parse: report}, nil
}
