package domain

import "context"

// Source identifies where a report came from. The identifier is what the
// embedding cache fingerprint is derived from: the URL for fetched pages,
// the file name for uploads, and a content hash for pasted text.
type Source struct {
	Identifier string
	Text       string
}

// EmbeddedChunk pairs a chunk of report text with its embedding vector.
// A report's list of embedded chunks is its searchable index.
type EmbeddedChunk struct {
	Text      string    `json:"text"`
	Embedding []float64 `json:"embedding"`
}

// ScoredChunk is one retrieval hit: a chunk and its combined
// similarity score against a question.
type ScoredChunk struct {
	Score float64
	Text  string
}

// RetrievalResult is the outcome of ranking a report's chunks against a
// question: the concatenated context handed to the generator plus the
// ranked chunks it was built from.
type RetrievalResult struct {
	Context string
	Ranked  []ScoredChunk
}

// Chunker splits raw report text into overlapping windows.
type Chunker interface {
	Chunk(text string) ([]string, error)
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// CacheStore persists a report's embedded chunks across sessions.
// Load treats absence and corruption alike, as a miss.
type CacheStore interface {
	Key(sourceID string) string
	Load(key string) ([]EmbeddedChunk, bool)
	Save(key string, chunks []EmbeddedChunk) error
}

// Retriever ranks a report's embedded chunks against a question and
// assembles the context window for generation.
type Retriever interface {
	Retrieve(ctx context.Context, question string, chunks []EmbeddedChunk) (RetrievalResult, error)
}

// Generator produces prose from the LLM completion endpoint.
type Generator interface {
	Answer(ctx context.Context, question, contextText string) (string, error)
	Analyze(ctx context.Context, reportText string) (string, error)
}

// EvaluationResult carries best-effort answer quality scores. When the
// evaluation backend fails, Available is false and Reason says why.
type EvaluationResult struct {
	Available       bool
	Reason          string
	Faithfulness    float64
	AnswerRelevancy float64
}

// Evaluator scores a generated answer against its question and the
// context chunks it was produced from.
type Evaluator interface {
	Evaluate(ctx context.Context, question, answer string, contexts []string) EvaluationResult
}

// Quote is a point-in-time stock quote used to hint market data into a question.
type Quote struct {
	Symbol   string
	Price    float64
	Currency string
}

// QuoteProvider looks up the latest quote for a ticker symbol.
type QuoteProvider interface {
	Lookup(ctx context.Context, symbol string) (Quote, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
