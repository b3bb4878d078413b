package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"rapport/internal/domain"
)

// Client is an OpenAI-compatible embeddings client. Transient provider
// failures are retried with exponential backoff and jitter; results are
// memoized per exact input text in a bounded LRU so repeated chunks and
// repeated questions cost one network call each per process lifetime.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	maxAttempts int
	client      *http.Client
	memo        *lru.Cache[string, []float64]
	log         *zap.Logger
}

// Config configures the embeddings client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
	CacheSize   int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 6
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 512
	}
	memo, err := lru.New[string, []float64](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		client:      &http.Client{Timeout: t},
		memo:        memo,
		log:         log,
	}, nil
}

// Model returns the embedding model identifier.
func (c *Client) Model() string { return c.model }

// Embed returns an embedding vector for the given text. Empty text is a
// precondition violation and is never sent to the provider.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text for embedding must not be empty", domain.ErrInvalidInput)
	}
	if vec, ok := c.memo.Get(text); ok {
		return vec, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 1 * time.Second
	policy.MaxInterval = 60 * time.Second
	policy.MaxElapsedTime = 0

	var vec []float64
	op := func() error {
		var err error
		vec, err = c.requestEmbedding(ctx, text)
		return err
	}
	retries := uint64(c.maxAttempts - 1)
	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, retries), ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings after %d attempts: %v", domain.ErrProvider, c.maxAttempts, err)
	}
	c.memo.Add(text, vec)
	return vec, nil
}

func (c *Client) requestEmbedding(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input string `json:"input"`
		Model string `json:"model"`
	}
	data, _ := json.Marshal(reqBody{Input: text, Model: c.model})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embeddings", bytes.NewReader(data))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("embedding request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		c.log.Warn("embedding provider throttled", zap.String("status", resp.Status))
		return nil, fmt.Errorf("embeddings failed: %s", resp.Status)
	}
	if resp.StatusCode >= 300 {
		return nil, backoff.Permanent(fmt.Errorf("embeddings failed: %s", resp.Status))
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var out struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, err
	}
	if len(out.Data) == 0 || len(out.Data[0].Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	return out.Data[0].Embedding, nil
}
