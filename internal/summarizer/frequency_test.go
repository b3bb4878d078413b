package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsHighFrequencySentences(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Revenue grew strongly. Revenue growth drove record revenue margins. " +
		"The office moved to a new city. Revenue expectations remain high."
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)
	sentences := strings.Count(out, ".")
	assert.LessOrEqual(t, sentences, 2)
	assert.Contains(t, out, "Revenue")
}

func TestSummarizePlainTextWithoutSentences(t *testing.T) {
	s := NewFrequencySummarizer()
	out, err := s.Summarize("  bara några ord utan skiljetecken  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "bara några ord utan skiljetecken", out)
}

func TestSummarizePreservesOriginalOrder(t *testing.T) {
	s := NewFrequencySummarizer()
	text := "Omsättningen ökade kraftigt under året. Utdelningen höjs till tre kronor. Omsättningen väntas öka även nästa år."
	out, err := s.Summarize(text, 3)
	require.NoError(t, err)
	first := strings.Index(out, "Omsättningen ökade")
	second := strings.Index(out, "Utdelningen höjs")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	assert.Less(t, first, second)
}
