package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure the fakes implement their interfaces.
var (
	_ driven.Parser        = (*fakeParser)(nil)
	_ driven.TextExtractor = (*fakeExtractor)(nil)
	_ driven.OrphanStore   = (*fakeOrphanStore)(nil)
)

// fakeParser returns canned documents, an error, or panics.
type fakeParser struct {
	name     string
	types    []string
	docs     []domain.Document
	err      error
	panicMsg string
	calls    int
}

func (p *fakeParser) Name() string                 { return p.name }
func (p *fakeParser) SupportedMIMETypes() []string { return p.types }

func (p *fakeParser) Parse(_ context.Context, _ *domain.RawDocument) ([]domain.Document, error) {
	p.calls++
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	out := make([]domain.Document, len(p.docs))
	for i, d := range p.docs {
		out[i] = domain.Document{Content: d.Content, Metadata: domain.CloneMetadata(d.Metadata)}
	}
	return out, p.err
}

// textParser echoes the upload bytes as a single document.
type textParser struct {
	name  string
	types []string
}

func (p *textParser) Name() string                 { return p.name }
func (p *textParser) SupportedMIMETypes() []string { return p.types }

func (p *textParser) Parse(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	return []domain.Document{{
		Content:  string(raw.Content),
		Metadata: map[string]any{domain.MetaMIMEType: raw.MIMEType},
	}}, nil
}

// fakeExtractor is a scripted fallback strategy.
type fakeExtractor struct {
	name      string
	available bool
	text      string
	err       error
	panicMsg  string
	calls     int
}

func (e *fakeExtractor) Name() string    { return e.name }
func (e *fakeExtractor) Available() bool { return e.available }

func (e *fakeExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	e.calls++
	if e.panicMsg != "" {
		panic(e.panicMsg)
	}
	return e.text, e.err
}

// fakeOrphanStore models embeddings referencing collections.
type fakeOrphanStore struct {
	collections map[string]bool
	embeddings  []string // collection id per embedding row
	err         error
}

func (s *fakeOrphanStore) RemoveOrphans(_ context.Context, dryRun bool) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	var n int64
	kept := s.embeddings[:0:0]
	for _, c := range s.embeddings {
		if s.collections[c] {
			kept = append(kept, c)
			continue
		}
		n++
	}
	if !dryRun && n > 0 {
		s.embeddings = kept
	}
	return n, nil
}

func (s *fakeOrphanStore) Close() error { return nil }

func pageDocs(texts ...string) []domain.Document {
	docs := make([]domain.Document, len(texts))
	for i, t := range texts {
		docs[i] = domain.Document{
			Content:  t,
			Metadata: map[string]any{domain.MetaPage: i + 1, domain.MetaTotalPages: len(texts)},
		}
	}
	return docs
}

func repeatChars(n int) string {
	return strings.Repeat("a", n)
}
