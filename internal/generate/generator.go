package generate

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
	"rapport/internal/language"
)

// Default generation parameters, matching the interactive analysis flow.
const (
	answerMaxTokens   = 1000
	analysisMaxTokens = 1500
	temperature       = 0.3
)

// Client generates analyses and answers via an OpenAI-compatible chat
// completion endpoint. Unlike the embedding layer, failures here are not
// retried: the user sees the error and decides whether to press the button
// again.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	log     *zap.Logger
}

// Config configures the chat completion client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new chat completion client.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 120 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  key,
		model:   cfg.Model,
		client:  &http.Client{Timeout: t},
		log:     log,
	}, nil
}

// Answer generates a response to a question grounded in the retrieved
// context. A blank context is rejected before any network call: sending it
// would just make the model guess, which the prompt forbids.
func (c *Client) Answer(ctx context.Context, question, contextText string) (string, error) {
	if strings.TrimSpace(contextText) == "" {
		return "", fmt.Errorf("%w: retrieval produced no context for generation", domain.ErrEmptyContext)
	}
	lang := language.Detect(question + " " + contextText)
	user := fmt.Sprintf("Kontext:\n%s\n\nFråga: %s", contextText, question)
	return c.complete(ctx, systemPrompt(lang), user, answerMaxTokens)
}

// Analyze runs the full-report analysis over the raw text.
func (c *Client) Analyze(ctx context.Context, reportText string) (string, error) {
	if strings.TrimSpace(reportText) == "" {
		return "", fmt.Errorf("%w: nothing to analyze", domain.ErrNoText)
	}
	lang := language.Detect(reportText)
	return c.complete(ctx, systemPrompt(lang), reportText, analysisMaxTokens)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Error("chat completion request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", domain.ErrProvider, err)
	}
	if resp.StatusCode >= 300 {
		// error bodies are not always JSON; fall back to the status line
		msg := resp.Status
		var out chatResponse
		if err := json.Unmarshal(payload, &out); err == nil && out.Error != nil {
			msg = out.Error.Message
		}
		c.log.Error("chat completion rejected", zap.String("status", resp.Status))
		return "", fmt.Errorf("%w: chat completion: %s", domain.ErrProvider, msg)
	}
	var out chatResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", domain.ErrProvider, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion returned", domain.ErrProvider)
	}
	return out.Choices[0].Message.Content, nil
}
