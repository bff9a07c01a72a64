//go:build cgo

package mupdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor extracts PDF text with MuPDF.
type Extractor struct{}

// New creates a new MuPDF extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return domain.ExtractorMuPDF
}

// Available reports whether MuPDF is compiled in.
func (e *Extractor) Available() bool {
	return true
}

// Extract returns the text of every page, pages separated by a blank line.
// Pages MuPDF cannot render are skipped.
func (e *Extractor) Extract(ctx context.Context, content []byte) (string, error) {
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	var sb strings.Builder
	for i := 0; i < doc.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := doc.Text(i)
		if err != nil {
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
