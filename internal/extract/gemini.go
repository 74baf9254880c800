package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrUpstream is what callers see for any generation-service failure:
// transport errors, non-2xx statuses, and malformed bodies alike. The raw
// upstream detail is logged, never surfaced.
var ErrUpstream = errors.New("generation service failed")

const questionPrompt = `Extract multiple-choice questions from the following educational text.
Each question should have 4 options (a, b, c, d) and clearly indicate the correct answer.

Text:

`

// GeminiClient talks to the Google generative-language REST endpoint. One
// provider, one model: the portal does not abstract over generation services.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	hc         *http.Client
	maxRetries uint64
}

func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, maxRetries int) *GeminiClient {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &GeminiClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		hc:         &http.Client{Timeout: timeout},
		maxRetries: uint64(maxRetries),
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateQuestions sends the bounded excerpt with the fixed MCQ instruction
// and returns the model's free-text answer. The call is bounded by the client
// timeout, cancellable through ctx, and retried with exponential backoff on
// 429/5xx and transport errors until the retry budget runs out.
func (c *GeminiClient) GenerateQuestions(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: questionPrompt + text}}}},
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	var answer string
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.hc.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			log.Printf("gemini transient status=%d body=%s", resp.StatusCode, truncateForLog(body))
			return retry.RetryableError(fmt.Errorf("status %d", resp.StatusCode))
		}
		if resp.StatusCode/100 != 2 {
			log.Printf("gemini non-2xx status=%d body=%s", resp.StatusCode, truncateForLog(body))
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		var out geminiResponse
		if err := json.Unmarshal(body, &out); err != nil {
			log.Printf("gemini decode error: %v body=%s", err, truncateForLog(body))
			return fmt.Errorf("bad response body")
		}
		if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("no candidates")
		}
		answer = strings.TrimSpace(out.Candidates[0].Content.Parts[0].Text)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Printf("gemini call failed after retries: %v", err)
		return "", ErrUpstream
	}
	return answer, nil
}

func truncateForLog(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
