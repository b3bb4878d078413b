package retriever

import (
	"context"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"rapport/internal/domain"
)

// ContextDelimiter separates the selected chunks in the assembled context window.
const ContextDelimiter = "\n---\n"

// Retriever ranks a report's embedded chunks against a question by cosine
// similarity with a small lexical bonus for exact keyword hits. Pure
// embedding similarity can miss literal financial terms ("utdelning",
// "EBITDA"), so each distinct question word found in a chunk nudges that
// chunk's score up by a fixed increment.
type Retriever struct {
	embedder     domain.Embedder
	topK         int
	lexicalBonus float64
	log          *zap.Logger
}

// New creates a retriever. topK defaults to 7 and the lexical bonus to 0.005.
func New(embedder domain.Embedder, topK int, lexicalBonus float64, log *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = 7
	}
	if lexicalBonus <= 0 {
		lexicalBonus = 0.005
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Retriever{embedder: embedder, topK: topK, lexicalBonus: lexicalBonus, log: log}
}

// Retrieve embeds the question, scores every chunk, and returns the top-K
// chunks concatenated into a context window plus their ranked scores.
// Inputs are not mutated; the ranking is deterministic for fixed inputs,
// with ties broken by original chunk order.
func (r *Retriever) Retrieve(ctx context.Context, question string, chunks []domain.EmbeddedChunk) (domain.RetrievalResult, error) {
	if len(chunks) == 0 {
		return domain.RetrievalResult{}, nil
	}
	queryVec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return domain.RetrievalResult{}, err
	}

	words := questionWords(question)
	scored := make([]domain.ScoredChunk, len(chunks))
	for i, ch := range chunks {
		score := cosineSimilarity(queryVec, ch.Embedding)
		lower := strings.ToLower(ch.Text)
		for w := range words {
			if strings.Contains(lower, w) {
				score += r.lexicalBonus
			}
		}
		scored[i] = domain.ScoredChunk{Score: score, Text: ch.Text}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })

	k := r.topK
	if k > len(scored) {
		k = len(scored)
	}
	top := scored[:k]

	texts := make([]string, len(top))
	for i, sc := range top {
		texts[i] = sc.Text
	}
	r.log.Info("selected top chunks for question", zap.Int("top_k", k), zap.Int("total", len(chunks)))
	return domain.RetrievalResult{
		Context: strings.Join(texts, ContextDelimiter),
		Ranked:  top,
	}, nil
}

func questionWords(question string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(question))
	words := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		words[f] = struct{}{}
	}
	return words
}

func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
