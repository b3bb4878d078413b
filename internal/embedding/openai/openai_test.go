package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rapport/internal/domain"
)

func newTestServer(t *testing.T, calls *atomic.Int64, failFirst int64, failStatus int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if n <= failFirst {
			w.WriteHeader(failStatus)
			return
		}
		resp := map[string]any{
			"data": []map[string]any{{"embedding": []float64{0.1, 0.2, 0.3}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestClient(t *testing.T, baseURL string, maxAttempts int) *Client {
	t.Helper()
	t.Setenv("TEST_EMBED_KEY", "sk-test")
	c, err := NewClient(Config{
		BaseURL:     baseURL,
		APIKeyEnv:   "TEST_EMBED_KEY",
		Model:       "text-embedding-3-small",
		Timeout:     2 * time.Second,
		MaxAttempts: maxAttempts,
		CacheSize:   8,
	}, nil)
	require.NoError(t, err)
	return c
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, 0, 0)
	defer srv.Close()
	c := newTestClient(t, srv.URL, 6)

	_, err := c.Embed(context.Background(), "   ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Zero(t, calls.Load())
}

func TestEmbedMemoizesIdenticalText(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, 0, 0)
	defer srv.Close()
	c := newTestClient(t, srv.URL, 6)

	first, err := c.Embed(context.Background(), "dividend per share")
	require.NoError(t, err)
	second, err := c.Embed(context.Background(), "dividend per share")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), calls.Load())
}

func TestEmbedRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, 2, http.StatusTooManyRequests)
	defer srv.Close()
	c := newTestClient(t, srv.URL, 6)

	vec, err := c.Embed(context.Background(), "operating cash flow")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, int64(3), calls.Load())
}

func TestEmbedSurfacesTerminalProviderError(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, 100, http.StatusInternalServerError)
	defer srv.Close()
	c := newTestClient(t, srv.URL, 2)

	_, err := c.Embed(context.Background(), "net sales")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProvider))
	assert.Equal(t, int64(2), calls.Load())
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	srv := newTestServer(t, &calls, 100, http.StatusBadRequest)
	defer srv.Close()
	c := newTestClient(t, srv.URL, 6)

	_, err := c.Embed(context.Background(), "goodwill impairment")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProvider))
	assert.Equal(t, int64(1), calls.Load())
}
