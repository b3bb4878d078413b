package export

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnswerPDFProducesDocument(t *testing.T) {
	data, err := AnswerPDF("Sammanfattning\nLönsamheten är god.\n\nRekommendation: Behåll")
	require.NoError(t, err)
	assert.True(t, len(data) > 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestSaveTextWritesIntoOutputDir(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := s.SaveText("answer.txt", "The proposed dividend is $0.50.")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "The proposed dividend is $0.50.", string(data))
}

func TestSavePDFWritesDocument(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	path, err := s.SavePDF("answer.pdf", "line one\nline two")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
