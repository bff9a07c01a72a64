package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure ParserRegistry implements the interface.
var _ driven.ParserRegistry = (*ParserRegistry)(nil)

// ParserRegistry dispatches uploads to the parser registered for their
// canonical MIME type. It is populated at start-up and read-only afterwards,
// so concurrent Parse calls need no locking.
type ParserRegistry struct {
	parsers  map[string]driven.Parser
	fallback driven.Parser
}

// RegistryOption configures a ParserRegistry.
type RegistryOption func(*ParserRegistry)

// WithFallbackParser installs a parser used for MIME types nobody registered.
// Without one, unregistered types are rejected as unsupported.
func WithFallbackParser(p driven.Parser) RegistryOption {
	return func(r *ParserRegistry) {
		r.fallback = p
	}
}

// NewParserRegistry creates a registry holding the given parsers.
func NewParserRegistry(parsers []driven.Parser, opts ...RegistryOption) *ParserRegistry {
	r := &ParserRegistry{
		parsers: make(map[string]driven.Parser),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// Register adds a parser for every MIME type it supports.
// A later registration for the same type replaces the earlier one.
func (r *ParserRegistry) Register(parser driven.Parser) {
	if parser == nil {
		return
	}
	for _, mt := range parser.SupportedMIMETypes() {
		r.parsers[domain.CanonicalMIMEType(mt)] = parser
	}
}

// Lookup returns the parser for a declared MIME type, without the fallback.
func (r *ParserRegistry) Lookup(mimeType string) (driven.Parser, bool) {
	p, ok := r.parsers[domain.CanonicalMIMEType(mimeType)]
	return p, ok
}

// SupportedMIMETypes returns all registered MIME types, sorted.
func (r *ParserRegistry) SupportedMIMETypes() []string {
	types := make([]string, 0, len(r.parsers))
	for mt := range r.parsers {
		types = append(types, mt)
	}
	sort.Strings(types)
	return types
}

// Parse dispatches the upload to its parser.
// An unregistered type yields an unsupported-format rejection; a parser error
// or panic yields a parse-failure rejection naming the parser. Partial output
// returned together with an error is discarded.
func (r *ParserRegistry) Parse(ctx context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil document", domain.ErrInvalidInput)
	}
	mimeType := domain.CanonicalMIMEType(raw.MIMEType)

	parser, ok := r.parsers[mimeType]
	if !ok {
		if r.fallback == nil {
			return nil, domain.NewUnsupportedFormatError(mimeType, r.SupportedMIMETypes())
		}
		parser = r.fallback
	}

	docs, err := safeParse(ctx, parser, raw)
	if err != nil {
		return nil, domain.NewParseFailureError(mimeType, parser.Name(), err)
	}
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = make(map[string]any)
		}
	}
	return docs, nil
}

// safeParse runs a parser, turning a panic into an error.
func safeParse(ctx context.Context, p driven.Parser, raw *domain.RawDocument) (docs []domain.Document, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			docs = nil
			err = fmt.Errorf("parser panicked: %v", rec)
		}
	}()
	return p.Parse(ctx, raw)
}
