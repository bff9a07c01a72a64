package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// ParserRegistry selects the parser registered for a MIME type.
// It is populated once at start-up and read-only afterwards.
type ParserRegistry interface {
	// Parse dispatches the upload to the parser for its MIME type.
	// Returns a *domain.RejectionError matching domain.ErrUnsupportedFormat
	// or domain.ErrParseFailure on failure.
	Parse(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error)

	// Register adds a parser for every MIME type it supports.
	Register(parser Parser)

	// SupportedMIMETypes returns all MIME types that can be parsed, sorted.
	SupportedMIMETypes() []string
}
