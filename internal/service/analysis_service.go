package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"rapport/internal/domain"
)

// Reports shorter than this carry too little signal to analyze.
const minReportLength = 20

// ProgressFunc reports embedding progress: chunks done out of total.
// Chunks are embedded in strict document order, so done is monotonic.
type ProgressFunc func(done, total int)

// AnalysisService orchestrates the report pipeline: resolve source text,
// chunk, embed (through the disk cache), retrieve, generate, and
// optionally evaluate.
type AnalysisService struct {
	chunker   domain.Chunker
	embedder  domain.Embedder
	cache     domain.CacheStore
	retriever domain.Retriever
	generator domain.Generator
	evaluator domain.Evaluator
	log       *zap.Logger
}

// NewAnalysisService wires the pipeline. evaluator may be nil, which
// disables answer scoring.
func NewAnalysisService(
	chunker domain.Chunker,
	embedder domain.Embedder,
	cache domain.CacheStore,
	retriever domain.Retriever,
	generator domain.Generator,
	evaluator domain.Evaluator,
	log *zap.Logger,
) *AnalysisService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalysisService{
		chunker:   chunker,
		embedder:  embedder,
		cache:     cache,
		retriever: retriever,
		generator: generator,
		evaluator: evaluator,
		log:       log,
	}
}

// SourceFromURL builds a source whose cache fingerprint is the URL itself.
func SourceFromURL(url, text string) domain.Source {
	return domain.Source{Identifier: url, Text: text}
}

// SourceFromFile builds a source fingerprinted by the file name.
func SourceFromFile(name, text string) domain.Source {
	return domain.Source{Identifier: name, Text: text}
}

// SourceFromText builds a source for pasted text, fingerprinted by the
// content hash. A prefix fingerprint would let two reports sharing an
// opening line collide on the same cache entry.
func SourceFromText(text string) domain.Source {
	sum := sha256.Sum256([]byte(text))
	return domain.Source{Identifier: "text:" + hex.EncodeToString(sum[:]), Text: text}
}

// AnswerResult is the outcome of one question against a report.
type AnswerResult struct {
	Answer     string
	Context    string
	Ranked     []domain.ScoredChunk
	Evaluation domain.EvaluationResult
}

// Analyze runs the full-report analysis over the source text.
func (s *AnalysisService) Analyze(ctx context.Context, src domain.Source) (string, error) {
	if err := validateSource(src); err != nil {
		return "", err
	}
	s.log.Info("starting full report analysis", zap.String("source", src.Identifier))
	return s.generator.Analyze(ctx, src.Text)
}

// Ask answers a question about the source text via retrieval-augmented
// generation. Embeddings are cached on disk per source fingerprint; a hit
// skips chunking and embedding entirely. Embedding failures abort the run.
// Evaluation failures do not: the answer stands and the evaluation reports
// unavailable.
func (s *AnalysisService) Ask(ctx context.Context, src domain.Source, question string, progress ProgressFunc) (AnswerResult, error) {
	if err := validateSource(src); err != nil {
		return AnswerResult{}, err
	}
	if strings.TrimSpace(question) == "" {
		return AnswerResult{}, fmt.Errorf("%w: question must not be empty", domain.ErrInvalidInput)
	}

	embedded, err := s.index(ctx, src, progress)
	if err != nil {
		return AnswerResult{}, err
	}

	retrieved, err := s.retriever.Retrieve(ctx, question, embedded)
	if err != nil {
		return AnswerResult{}, err
	}

	answer, err := s.generator.Answer(ctx, question, retrieved.Context)
	if err != nil {
		return AnswerResult{}, err
	}

	res := AnswerResult{Answer: answer, Context: retrieved.Context, Ranked: retrieved.Ranked}
	if s.evaluator != nil {
		contexts := make([]string, len(retrieved.Ranked))
		for i, sc := range retrieved.Ranked {
			contexts[i] = sc.Text
		}
		res.Evaluation = s.evaluator.Evaluate(ctx, question, answer, contexts)
	}
	return res, nil
}

// index returns the source's embedded chunks, computing and caching them
// on first use. Chunks are embedded sequentially in document order; no
// concurrent provider calls are issued, which keeps progress monotonic and
// avoids rate-limit bursts.
func (s *AnalysisService) index(ctx context.Context, src domain.Source, progress ProgressFunc) ([]domain.EmbeddedChunk, error) {
	key := s.cache.Key(src.Identifier)
	if cached, ok := s.cache.Load(key); ok {
		s.log.Info("embedding cache hit", zap.String("source", src.Identifier), zap.Int("chunks", len(cached)))
		return cached, nil
	}

	chunks, err := s.chunker.Chunk(src.Text)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: could not build any chunks from the report", domain.ErrNoText)
	}

	s.log.Info("embedding report chunks", zap.String("source", src.Identifier), zap.Int("chunks", len(chunks)))
	embedded := make([]domain.EmbeddedChunk, 0, len(chunks))
	for i, ch := range chunks {
		vec, err := s.embedder.Embed(ctx, ch)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d/%d: %w", i+1, len(chunks), err)
		}
		embedded = append(embedded, domain.EmbeddedChunk{Text: ch, Embedding: vec})
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}

	if err := s.cache.Save(key, embedded); err != nil {
		// a failed save costs recomputation next session, not this answer
		s.log.Warn("could not persist embedding cache", zap.String("key", key), zap.Error(err))
	}
	return embedded, nil
}

func validateSource(src domain.Source) error {
	if len(strings.TrimSpace(src.Text)) <= minReportLength {
		return fmt.Errorf("%w: supply a report via link, file or pasted text", domain.ErrNoText)
	}
	return nil
}
