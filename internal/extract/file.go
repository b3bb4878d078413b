package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rapport/internal/domain"
)

// FromFile reads report text from a local file. Plain-text formats are read
// directly; HTML is stripped the same way fetched pages are. Binary formats
// (PDF, images, spreadsheets) need external extraction tooling and are
// rejected with ErrUnsupportedType.
func FromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return string(data), nil
	case ".html", ".htm":
		return StripHTML(string(data))
	default:
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedType, filepath.Ext(path))
	}
}

// Resolve applies the input precedence order: manually pasted text wins
// over whatever was extracted from a file or URL.
func Resolve(manual, extracted string) string {
	if strings.TrimSpace(manual) != "" {
		return manual
	}
	return extracted
}
