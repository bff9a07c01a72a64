// Package sanitiser provides the post-processor that makes chunks safe for
// the relational store.
package sanitiser

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/textclean"
)

// Verify interface compliance.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor strips NUL and invalid UTF-8 from chunk text and metadata.
// Chunks left empty are dropped and positions renumbered.
type Processor struct{}

// New creates a sanitiser processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "sanitiser"
}

// Process sanitises the chunks produced by earlier processors.
func (p *Processor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		content := textclean.SanitiseText(c.Content)
		if strings.TrimSpace(content) == "" {
			continue
		}
		out = append(out, domain.Chunk{
			Content:  content,
			Position: len(out),
			Metadata: textclean.SanitiseMetadata(c.Metadata),
		})
	}
	return out, nil
}
