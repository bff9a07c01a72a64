// Package chunker provides a boundary-preferring recursive text chunker.
//
// Text is split on the coarsest separator present (paragraph, line,
// sentence, word, character) and pieces are merged greedily up to the
// configured chunk size. Lengths are measured in runes.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order, from paragraph down to character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Verify interface compliance.
var _ driven.PostProcessor = (*Processor)(nil)

// Processor splits document content into size-bounded chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator hierarchy. The character separator
// "" is appended when missing so every piece can be made to fit.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) == 0 {
			return
		}
		seps := append([]string(nil), separators...)
		if seps[len(seps)-1] != "" {
			seps = append(seps, "")
		}
		p.separators = seps
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't reach chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the effective chunk size.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the effective overlap after clamping.
func (p *Processor) Overlap() int { return p.overlap }

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
// Every chunk receives its own deep copy of the document metadata.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return nil, nil
	}

	texts := p.Split(doc.Content)
	chunks := make([]domain.Chunk, 0, len(texts))
	for i, text := range texts {
		meta := domain.CloneMetadata(doc.Metadata)
		if meta == nil {
			meta = make(map[string]any)
		}
		chunks = append(chunks, domain.Chunk{
			Content:  text,
			Position: i,
			Metadata: meta,
		})
	}

	return chunks, nil
}

// Split returns the chunk texts for s in reading order.
func (p *Processor) Split(s string) []string {
	return p.split(s, p.separators)
}

func (p *Processor) split(text string, separators []string) []string {
	separator := separators[len(separators)-1]
	var remaining []string
	for i, sep := range separators {
		if sep == "" {
			separator = ""
			break
		}
		if strings.Contains(text, sep) {
			separator = sep
			remaining = separators[i+1:]
			break
		}
	}

	var out, good []string
	for _, piece := range splitKeepSeparator(text, separator) {
		if runeLen(piece) < p.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			out = append(out, p.merge(good)...)
			good = nil
		}
		if len(remaining) == 0 {
			out = appendNonEmpty(out, piece)
			continue
		}
		out = append(out, p.split(piece, remaining)...)
	}
	if len(good) > 0 {
		out = append(out, p.merge(good)...)
	}
	return out
}

// merge packs pieces into chunks no longer than chunkSize, carrying up to
// overlap characters of trailing pieces into the next chunk.
func (p *Processor) merge(pieces []string) []string {
	var (
		out     []string
		current []string
		total   int
	)
	for _, piece := range pieces {
		n := runeLen(piece)
		if total+n > p.chunkSize && len(current) > 0 {
			out = appendNonEmpty(out, strings.Join(current, ""))
			for total > p.overlap || (total+n > p.chunkSize && total > 0) {
				total -= runeLen(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += n
	}
	if len(current) > 0 {
		out = appendNonEmpty(out, strings.Join(current, ""))
	}
	return out
}

// splitKeepSeparator splits s after each occurrence of sep, so the separator
// stays at the end of the piece it terminates. An empty sep splits into runes.
func splitKeepSeparator(s, sep string) []string {
	if sep == "" {
		out := make([]string, 0, utf8.RuneCountInString(s))
		for _, r := range s {
			out = append(out, string(r))
		}
		return out
	}
	parts := strings.SplitAfter(s, sep)
	out := parts[:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendNonEmpty(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
