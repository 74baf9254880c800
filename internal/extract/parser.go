package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// Question is the structured form of one extracted MCQ. CorrectIndex is the
// 0-based position in Options, or -1 when the answer line never showed up.
type Question struct {
	Stem         string   `json:"stem"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

// Report makes partial-parse failures explicit instead of hiding them in
// passthrough text.
type Report struct {
	Parsed  int      `json:"parsed"`
	Skipped int      `json:"skipped"`
	Notes   []string `json:"notes,omitempty"`
}

var (
	stemRe   = regexp.MustCompile(`^(?:\*\*)?(?:Q(?:uestion)?\s*)?(\d+)[.):]\s*(.+?)(?:\*\*)?$`)
	optionRe = regexp.MustCompile(`^\(?([a-dA-D])[.):]\s*(.+)$`)
	answerRe = regexp.MustCompile(`(?i)^(?:\*\*)?(?:correct\s+)?answer\s*[:\-]?\s*\(?([a-dA-D])\b`)
)

// ParseQuestions turns the generation service's free-text answer into
// structured questions, best-effort. The upstream output is prose: anything
// that does not assemble into a stem, four options and an answer is counted
// and reported, not invented.
func ParseQuestions(raw string) ([]Question, Report) {
	var (
		out     []Question
		rep     Report
		current *Question
	)

	flush := func() {
		if current == nil {
			return
		}
		if len(current.Options) == 4 {
			out = append(out, *current)
			rep.Parsed++
		} else {
			rep.Skipped++
			rep.Notes = append(rep.Notes, "question with "+strconv.Itoa(len(current.Options))+" options: "+clip(current.Stem))
		}
		current = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := answerRe.FindStringSubmatch(line); m != nil && current != nil {
			current.CorrectIndex = optionIndex(m[1])
			continue
		}
		if m := optionRe.FindStringSubmatch(line); m != nil && current != nil {
			if idx := optionIndex(m[1]); idx == len(current.Options) {
				current.Options = append(current.Options, strings.TrimSpace(m[2]))
				continue
			}
		}
		if m := stemRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &Question{Stem: strings.TrimSpace(m[2]), CorrectIndex: -1}
			continue
		}
		// continuation of a stem before any option arrived
		if current != nil && len(current.Options) == 0 {
			current.Stem += " " + line
		}
	}
	flush()

	if rep.Parsed == 0 && strings.TrimSpace(raw) != "" {
		rep.Notes = append(rep.Notes, "no questions recognized in upstream text")
	}
	return out, rep
}

func optionIndex(letter string) int {
	switch strings.ToLower(letter) {
	case "a":
		return 0
	case "b":
		return 1
	case "c":
		return 2
	case "d":
		return 3
	}
	return -1
}

func clip(s string) string {
	const max = 60
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
