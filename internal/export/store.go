package export

import (
	"os"
	"path/filepath"
)

// Store writes exported answers into a fixed output directory.
type Store struct {
	dir string
}

// NewStore creates the output directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// SaveText writes an answer as a plain-text file and returns its path.
func (s *Store) SaveText(filename, answer string) (string, error) {
	return s.save(filename, []byte(answer))
}

// SavePDF renders an answer to PDF and writes it, returning its path.
func (s *Store) SavePDF(filename, answer string) (string, error) {
	data, err := AnswerPDF(answer)
	if err != nil {
		return "", err
	}
	return s.save(filename, data)
}

func (s *Store) save(filename string, data []byte) (string, error) {
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
