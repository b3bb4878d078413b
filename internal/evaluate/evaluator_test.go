package evaluate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	faith float64
	rel   float64
	err   error
}

func (s *stubBackend) Score(context.Context, string, string, []string) (float64, float64, error) {
	return s.faith, s.rel, s.err
}

func TestEvaluateReturnsScores(t *testing.T) {
	e := New(&stubBackend{faith: 0.92, rel: 0.81}, nil)
	res := e.Evaluate(context.Background(), "q", "a", []string{"ctx"})
	require.True(t, res.Available)
	assert.InDelta(t, 0.92, res.Faithfulness, 1e-9)
	assert.InDelta(t, 0.81, res.AnswerRelevancy, 1e-9)
}

func TestEvaluateClampsOutOfRangeScores(t *testing.T) {
	e := New(&stubBackend{faith: 1.4, rel: -0.2}, nil)
	res := e.Evaluate(context.Background(), "q", "a", nil)
	require.True(t, res.Available)
	assert.Equal(t, 1.0, res.Faithfulness)
	assert.Equal(t, 0.0, res.AnswerRelevancy)
}

func TestEvaluateFailureIsUnavailableNotError(t *testing.T) {
	e := New(&stubBackend{err: errors.New("missing credentials")}, nil)
	res := e.Evaluate(context.Background(), "q", "a", nil)
	assert.False(t, res.Available)
	assert.Contains(t, res.Reason, "missing credentials")
}

func newJudgeServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLLMBackend(t *testing.T, baseURL string) *LLMBackend {
	t.Helper()
	t.Setenv("TEST_EVAL_KEY", "sk-test")
	b, err := NewLLMBackend(LLMConfig{BaseURL: baseURL, APIKeyEnv: "TEST_EVAL_KEY"})
	require.NoError(t, err)
	return b
}

func TestLLMBackendParsesJudgeResponse(t *testing.T) {
	srv := newJudgeServer(t, `{"faithfulness": 0.88, "answer_relevancy": 0.75}`, 0)
	b := newLLMBackend(t, srv.URL)

	faith, rel, err := b.Score(context.Background(), "q", "a", []string{"c1", "c2"})
	require.NoError(t, err)
	assert.InDelta(t, 0.88, faith, 1e-9)
	assert.InDelta(t, 0.75, rel, 1e-9)
}

func TestLLMBackendMalformedJSONIsAnError(t *testing.T) {
	srv := newJudgeServer(t, "not json at all", 0)
	b := newLLMBackend(t, srv.URL)

	_, _, err := b.Score(context.Background(), "q", "a", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed evaluation response")
}

func TestLLMBackendProviderFailureIsAnError(t *testing.T) {
	srv := newJudgeServer(t, "", http.StatusBadGateway)
	b := newLLMBackend(t, srv.URL)

	_, _, err := b.Score(context.Background(), "q", "a", nil)
	require.Error(t, err)
}

func TestEvaluatorOverFailingLLMBackendDegradesGracefully(t *testing.T) {
	srv := newJudgeServer(t, "", http.StatusUnauthorized)
	e := New(newLLMBackend(t, srv.URL), nil)

	res := e.Evaluate(context.Background(), "q", "a", []string{"ctx"})
	assert.False(t, res.Available)
	assert.NotEmpty(t, res.Reason)
}
