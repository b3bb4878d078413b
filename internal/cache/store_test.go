package cache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rapport/internal/domain"
)

func newTestStore(t *testing.T, version string) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), version, nil)
	require.NoError(t, err)
	return s
}

func TestKeyIsDeterministicAndFilesystemSafe(t *testing.T) {
	s := newTestStore(t, "v5")
	k1 := s.Key("https://example.com/annual-report-2025.html")
	k2 := s.Key("https://example.com/annual-report-2025.html")
	assert.Equal(t, k1, k2)
	assert.Regexp(t, "^[0-9a-f]{64}$", k1)
}

func TestKeyChangesWithSchemeVersion(t *testing.T) {
	old := newTestStore(t, "v4")
	cur := newTestStore(t, "v5")
	assert.NotEqual(t, old.Key("report.pdf"), cur.Key("report.pdf"))
}

func TestLoadAbsentKeyIsAMiss(t *testing.T) {
	s := newTestStore(t, "v5")
	chunks, ok := s.Load("nonexistent")
	assert.False(t, ok)
	assert.Nil(t, chunks)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, "v5")
	chunks := []domain.EmbeddedChunk{
		{Text: "Revenue grew 12% year over year.", Embedding: []float64{0.123456789123456789, -0.5, 0.25}},
		{Text: "Utdelningen föreslås till 2,50 kronor.", Embedding: []float64{0.9, 0.000000001, -0.3}},
	}
	key := s.Key("report.txt")
	require.NoError(t, s.Save(key, chunks))

	loaded, ok := s.Load(key)
	require.True(t, ok)
	require.Len(t, loaded, len(chunks))
	for i := range chunks {
		assert.Equal(t, chunks[i].Text, loaded[i].Text)
		require.Len(t, loaded[i].Embedding, len(chunks[i].Embedding))
		for j := range chunks[i].Embedding {
			assert.InDelta(t, chunks[i].Embedding[j], loaded[i].Embedding[j], 1e-9)
		}
	}
}

func TestSaveOverwritesPriorEntry(t *testing.T) {
	s := newTestStore(t, "v5")
	key := s.Key("report.txt")
	require.NoError(t, s.Save(key, []domain.EmbeddedChunk{{Text: "old", Embedding: []float64{1}}}))
	require.NoError(t, s.Save(key, []domain.EmbeddedChunk{{Text: "new", Embedding: []float64{2}}}))

	loaded, ok := s.Load(key)
	require.True(t, ok)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].Text)
}

func TestLoadCorruptEntryIsAMiss(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(dir, "v5", nil)
	require.NoError(t, err)
	key := s.Key("report.txt")
	require.NoError(t, os.WriteFile(filepath.Join(dir, key+".json"), []byte("{not json"), 0o644))

	chunks, ok := s.Load(key)
	assert.False(t, ok)
	assert.Nil(t, chunks)
}
