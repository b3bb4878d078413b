package evaluate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"rapport/internal/domain"
)

// Backend scores an answer against its question and context. It is a seam:
// library or provider differences live behind this one interface instead of
// leaking alternate evaluator implementations into the pipeline.
type Backend interface {
	Score(ctx context.Context, question, answer string, contexts []string) (faithfulness, relevancy float64, err error)
}

// Evaluator wraps a Backend and converts every failure into an
// "unavailable" result. Evaluation is a best-effort diagnostic; it must
// never invalidate an answer that was already produced.
type Evaluator struct {
	backend Backend
	log     *zap.Logger
}

// New creates an evaluator over the given backend.
func New(backend Backend, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Evaluator{backend: backend, log: log}
}

// Evaluate scores the answer. On any backend failure the result reports
// unavailability with a reason instead of an error.
func (e *Evaluator) Evaluate(ctx context.Context, question, answer string, contexts []string) domain.EvaluationResult {
	faith, rel, err := e.backend.Score(ctx, question, answer, contexts)
	if err != nil {
		e.log.Warn("answer evaluation unavailable", zap.Error(err))
		return domain.EvaluationResult{Available: false, Reason: err.Error()}
	}
	return domain.EvaluationResult{
		Available:       true,
		Faithfulness:    clamp01(faith),
		AnswerRelevancy: clamp01(rel),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

const judgePrompt = "You are a strict evaluator of retrieval-augmented answers. " +
	"Given a question, an answer, and the context passages the answer was generated from, " +
	"score two metrics between 0 and 1:\n" +
	"- faithfulness: how well every claim in the answer is supported by the context.\n" +
	"- answer_relevancy: how well the answer addresses the question.\n" +
	"Respond with only a JSON object: {\"faithfulness\": <float>, \"answer_relevancy\": <float>}."

// LLMBackend scores answers with a second model call that returns strict JSON.
type LLMBackend struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// LLMConfig configures the judge model.
type LLMConfig struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewLLMBackend creates the LLM-judge backend.
func NewLLMBackend(cfg LLMConfig) (*LLMBackend, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &LLMBackend{baseURL: cfg.BaseURL, apiKey: key, model: cfg.Model, client: &http.Client{Timeout: t}}, nil
}

// Score asks the judge model for the two metrics.
func (b *LLMBackend) Score(ctx context.Context, question, answer string, contexts []string) (float64, float64, error) {
	var user strings.Builder
	user.WriteString("Question:\n" + question + "\n\nAnswer:\n" + answer + "\n\nContext passages:\n")
	for i, c := range contexts {
		fmt.Fprintf(&user, "[%d] %s\n", i+1, c)
	}

	body := map[string]any{
		"model": b.model,
		"messages": []map[string]string{
			{"role": "system", "content": judgePrompt},
			{"role": "user", "content": user.String()},
		},
		"temperature":     0.0,
		"response_format": map[string]string{"type": "json_object"},
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("evaluation call failed: %s", resp.Status)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, err
	}
	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return 0, 0, err
	}
	if len(out.Choices) == 0 {
		return 0, 0, fmt.Errorf("no evaluation returned")
	}
	var scores struct {
		Faithfulness    float64 `json:"faithfulness"`
		AnswerRelevancy float64 `json:"answer_relevancy"`
	}
	if err := json.Unmarshal([]byte(out.Choices[0].Message.Content), &scores); err != nil {
		return 0, 0, fmt.Errorf("malformed evaluation response: %w", err)
	}
	return scores.Faithfulness, scores.AnswerRelevancy, nil
}
