package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rapport/internal/domain"
)

type stubChunker struct {
	chunks []string
	calls  int
}

func (c *stubChunker) Chunk(text string) ([]string, error) {
	c.calls++
	return c.chunks, nil
}

type stubEmbedder struct {
	calls int
	fail  error
}

func (e *stubEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	e.calls++
	if e.fail != nil {
		return nil, e.fail
	}
	return []float64{float64(len(text)), 1}, nil
}

func (e *stubEmbedder) Model() string { return "stub" }

type memCache struct {
	entries map[string][]domain.EmbeddedChunk
	saves   int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]domain.EmbeddedChunk{}}
}

func (m *memCache) Key(sourceID string) string { return "key:" + sourceID }

func (m *memCache) Load(key string) ([]domain.EmbeddedChunk, bool) {
	chunks, ok := m.entries[key]
	return chunks, ok
}

func (m *memCache) Save(key string, chunks []domain.EmbeddedChunk) error {
	m.saves++
	m.entries[key] = chunks
	return nil
}

type stubRetriever struct {
	lastChunks []domain.EmbeddedChunk
}

func (r *stubRetriever) Retrieve(ctx context.Context, question string, chunks []domain.EmbeddedChunk) (domain.RetrievalResult, error) {
	r.lastChunks = chunks
	texts := make([]domain.ScoredChunk, 0, len(chunks))
	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		texts = append(texts, domain.ScoredChunk{Score: 1, Text: ch.Text})
		parts = append(parts, ch.Text)
	}
	return domain.RetrievalResult{Context: strings.Join(parts, "\n---\n"), Ranked: texts}, nil
}

type stubGenerator struct {
	answer      string
	analysis    string
	lastContext string
}

func (g *stubGenerator) Answer(ctx context.Context, question, contextText string) (string, error) {
	g.lastContext = contextText
	return g.answer, nil
}

func (g *stubGenerator) Analyze(ctx context.Context, reportText string) (string, error) {
	return g.analysis, nil
}

type stubEvaluator struct {
	result domain.EvaluationResult
	calls  int
}

func (e *stubEvaluator) Evaluate(ctx context.Context, question, answer string, contexts []string) domain.EvaluationResult {
	e.calls++
	return e.result
}

func newTestService(ch *stubChunker, emb *stubEmbedder, cache *memCache, ev domain.Evaluator) (*AnalysisService, *stubRetriever, *stubGenerator) {
	ret := &stubRetriever{}
	gen := &stubGenerator{answer: "ett svar", analysis: "en analys"}
	svc := NewAnalysisService(ch, emb, cache, ret, gen, ev, nil)
	return svc, ret, gen
}

const reportText = "Omsättningen ökade med tolv procent under det fjärde kvartalet."

func TestAskEmbedsOnceAndCaches(t *testing.T) {
	chunker := &stubChunker{chunks: []string{"del ett", "del två"}}
	embedder := &stubEmbedder{}
	cache := newMemCache()
	svc, _, _ := newTestService(chunker, embedder, cache, nil)

	src := SourceFromText(reportText)

	var steps []int
	res, err := svc.Ask(context.Background(), src, "Hur gick kvartalet?", func(done, total int) {
		steps = append(steps, done)
		assert.Equal(t, 2, total)
	})
	require.NoError(t, err)
	assert.Equal(t, "ett svar", res.Answer)
	assert.Equal(t, 2, embedder.calls)
	assert.Equal(t, []int{1, 2}, steps)
	assert.Equal(t, 1, cache.saves)

	// second question reuses the cached index
	_, err = svc.Ask(context.Background(), src, "Och vinsten?", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls)
	assert.Equal(t, 1, chunker.calls)
}

func TestAskEmbeddingFailureIsTerminal(t *testing.T) {
	chunker := &stubChunker{chunks: []string{"del ett"}}
	embedder := &stubEmbedder{fail: domain.ErrProvider}
	cache := newMemCache()
	svc, _, _ := newTestService(chunker, embedder, cache, nil)

	_, err := svc.Ask(context.Background(), SourceFromText(reportText), "fråga?", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrProvider))
	assert.Zero(t, cache.saves)
}

func TestAskEvaluatesWhenConfigured(t *testing.T) {
	eval := &stubEvaluator{result: domain.EvaluationResult{Available: true, Faithfulness: 0.9, AnswerRelevancy: 0.8}}
	svc, _, _ := newTestService(&stubChunker{chunks: []string{"del"}}, &stubEmbedder{}, newMemCache(), eval)

	res, err := svc.Ask(context.Background(), SourceFromText(reportText), "fråga?", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, eval.calls)
	assert.True(t, res.Evaluation.Available)
	assert.InDelta(t, 0.9, res.Evaluation.Faithfulness, 1e-9)
}

func TestAskUnavailableEvaluationKeepsAnswer(t *testing.T) {
	eval := &stubEvaluator{result: domain.EvaluationResult{Available: false, Reason: "judge timeout"}}
	svc, _, _ := newTestService(&stubChunker{chunks: []string{"del"}}, &stubEmbedder{}, newMemCache(), eval)

	res, err := svc.Ask(context.Background(), SourceFromText(reportText), "fråga?", nil)
	require.NoError(t, err)
	assert.Equal(t, "ett svar", res.Answer)
	assert.False(t, res.Evaluation.Available)
	assert.Equal(t, "judge timeout", res.Evaluation.Reason)
}

func TestAskRejectsShortReportAndEmptyQuestion(t *testing.T) {
	svc, _, _ := newTestService(&stubChunker{}, &stubEmbedder{}, newMemCache(), nil)

	_, err := svc.Ask(context.Background(), SourceFromText("för kort"), "fråga?", nil)
	assert.True(t, errors.Is(err, domain.ErrNoText))

	_, err = svc.Ask(context.Background(), SourceFromText(reportText), "   ", nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestAnalyzeValidatesAndDelegates(t *testing.T) {
	svc, _, _ := newTestService(&stubChunker{}, &stubEmbedder{}, newMemCache(), nil)

	out, err := svc.Analyze(context.Background(), SourceFromText(reportText))
	require.NoError(t, err)
	assert.Equal(t, "en analys", out)

	_, err = svc.Analyze(context.Background(), SourceFromText("kort"))
	assert.True(t, errors.Is(err, domain.ErrNoText))
}

func TestSourceFingerprints(t *testing.T) {
	a := SourceFromText("samma text")
	b := SourceFromText("samma text")
	c := SourceFromText("samma text, annan fortsättning")
	assert.Equal(t, a.Identifier, b.Identifier)
	assert.NotEqual(t, a.Identifier, c.Identifier)

	u := SourceFromURL("https://example.com/rapport.html", "x")
	assert.Equal(t, "https://example.com/rapport.html", u.Identifier)

	f := SourceFromFile("q4.txt", "x")
	assert.Equal(t, "q4.txt", f.Identifier)
}
