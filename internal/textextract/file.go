// Package textextract supplies the text-extraction collaborator for the
// statement pipeline. Actual PDF-to-text conversion happens outside this
// process; what arrives here is the extracted text on disk.
package textextract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/alainbeyonder/aia-regenord/internal/common"
)

// FileExtractor reads pre-extracted statement text from the filesystem.
type FileExtractor struct{}

// NewFileExtractor creates a file-backed extractor.
func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

// ExtractText returns the contents of the text file at path. A missing file
// or binary content is an extraction failure; the analyzer downgrades it to
// a per-document warning.
func (e *FileExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", common.ErrSourceUnavailable, path, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not extracted text", common.ErrSourceUnavailable, path)
	}
	return string(data), nil
}
