package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// Parser is a format capability: it turns the bytes of one format into
// zero or more Documents. Each parser handles specific MIME types.
type Parser interface {
	// Name identifies the parser in logs and errors.
	Name() string

	// SupportedMIMETypes returns the canonical MIME types this parser handles.
	SupportedMIMETypes() []string

	// Parse extracts raw, unnormalised Documents from the upload.
	// It either returns a complete set of Documents or an error.
	Parse(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)
}
