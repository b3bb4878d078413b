package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// FrequencySummarizer ranks sentences by word frequency and keeps the best
// ones in original order. It gives the TUI a cheap local preview of a
// loaded report without spending an LLM call.
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	sentenceRe   *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewFrequencySummarizer creates a frequency-based sentence ranker with
// English and Swedish stopwords, matching the two report languages.
func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentenceRe:   regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:    defaultStopwords(),
	}
}

// Summarize returns a short summary by ranking sentences using token frequency.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 5
	}
	sentences := s.sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		sscore := 0.0
		toks := s.tokens(sent)
		for _, tok := range toks {
			if v, ok := freq[tok]; ok {
				sscore += v
			}
		}
		// length normalization so long sentences don't dominate
		if l := float64(len(toks)); l > 0 {
			sscore /= math.Sqrt(l)
		}
		scores[i] = pair{i, sscore}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	selected := make([]int, maxSentences)
	for i := 0; i < maxSentences; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, 0, len(selected))
	for _, idx := range selected {
		out = append(out, strings.TrimSpace(sentences[idx]))
	}
	return strings.Join(out, " "), nil
}

func (s *FrequencySummarizer) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		// English
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of",
		"in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been",
		"it", "this", "that", "these", "those", "from", "than", "so", "such", "into",
		"about", "between", "through", "during", "before", "after", "can", "will", "now",
		// Swedish
		"och", "eller", "men", "om", "att", "som", "en", "ett", "den", "det", "de",
		"i", "på", "av", "för", "till", "med", "är", "var", "har", "hade", "vi",
		"man", "inte", "under", "över", "efter", "vid", "från", "samt",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
