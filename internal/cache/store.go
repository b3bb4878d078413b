package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"rapport/internal/domain"
)

// Store persists embedded chunks per report fingerprint as one JSON file
// each. Writes are whole-file overwrites, so concurrent writers to the same
// key race as last-writer-wins without corrupting the entry; this matches
// the single interactive user the tool serves. Entries are never evicted.
type Store struct {
	dir           string
	schemeVersion string
	log           *zap.Logger
}

// NewStore creates the cache directory if needed. The scheme version is
// baked into every key so bumping it abandons all prior entries without
// manual cleanup.
func NewStore(dir, schemeVersion string, log *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, schemeVersion: schemeVersion, log: log}, nil
}

// Key derives a filesystem-safe cache identifier from an arbitrary source
// string (URL, file name, or content hash of pasted text) plus the scheme
// version.
func (s *Store) Key(sourceID string) string {
	sum := sha256.Sum256([]byte(sourceID + "_embeddings_" + s.schemeVersion))
	return hex.EncodeToString(sum[:])
}

// Load returns the persisted chunks for a key. A missing or undecodable
// file is a miss, never an error; the pipeline recomputes from scratch.
func (s *Store) Load(key string) ([]domain.EmbeddedChunk, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return nil, false
	}
	var chunks []domain.EmbeddedChunk
	if err := json.Unmarshal(data, &chunks); err != nil {
		s.log.Warn("discarding corrupt embedding cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if len(chunks) == 0 {
		return nil, false
	}
	return chunks, true
}

// Save persists the full chunk list, overwriting any prior entry.
func (s *Store) Save(key string, chunks []domain.EmbeddedChunk) error {
	data, err := json.Marshal(chunks)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
