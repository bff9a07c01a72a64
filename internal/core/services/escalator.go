package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// FallbackEscalator retries text extraction for PDFs whose primary parse
// came back nearly empty. Extractors are tried in the order given.
type FallbackEscalator struct {
	extractors   []driven.TextExtractor
	minTextChars int
}

// NewFallbackEscalator creates an escalator with a minimum text threshold.
// Nil extractors are ignored.
func NewFallbackEscalator(minTextChars int, extractors ...driven.TextExtractor) *FallbackEscalator {
	list := make([]driven.TextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			list = append(list, ex)
		}
	}
	return &FallbackEscalator{
		extractors:   list,
		minTextChars: minTextChars,
	}
}

// MinTextChars returns the escalation threshold.
func (e *FallbackEscalator) MinTextChars() int {
	return e.minTextChars
}

// Extractors returns the names of the configured extractors, in order.
func (e *FallbackEscalator) Extractors() []string {
	names := make([]string, len(e.extractors))
	for i, ex := range e.extractors {
		names[i] = ex.Name()
	}
	return names
}

// ShouldEscalate reports whether docs parsed from a mimeType upload need a
// fallback extraction.
func (e *FallbackEscalator) ShouldEscalate(mimeType string, docs []domain.Document) bool {
	return domain.IsPDF(mimeType) && TextLength(docs) < e.minTextChars
}

// Escalate returns docs unchanged unless escalation applies and some
// extractor reaches the threshold, in which case the whole set is replaced by
// a single Document holding that text and a copy of callerMeta.
// Extractor failures never propagate; they count as empty output.
// The boolean reports whether docs were replaced.
func (e *FallbackEscalator) Escalate(
	ctx context.Context,
	raw *domain.RawDocument,
	docs []domain.Document,
	callerMeta map[string]any,
) ([]domain.Document, bool) {
	if raw == nil || !e.ShouldEscalate(raw.MIMEType, docs) {
		return docs, false
	}

	for _, ex := range e.extractors {
		if ctx.Err() != nil {
			logger.Warn("Fallback extraction interrupted: %v", ctx.Err())
			break
		}
		if !ex.Available() {
			logger.Debug("Fallback extractor %s unavailable, skipping", ex.Name())
			continue
		}

		text, err := safeExtract(ctx, ex, raw.Content)
		if err != nil {
			logger.Warn("Fallback extractor %s failed: %v", ex.Name(), err)
			continue
		}

		n := textLen(text)
		if n < e.minTextChars {
			logger.Debug("Fallback extractor %s yielded %d characters, below %d", ex.Name(), n, e.minTextChars)
			continue
		}

		logger.Debug("Fallback extractor %s yielded %d characters", ex.Name(), n)
		meta := domain.CloneMetadata(callerMeta)
		if meta == nil {
			meta = make(map[string]any)
		}
		return []domain.Document{{Content: text, Metadata: meta}}, true
	}

	return docs, false
}

// safeExtract runs one extractor, turning a panic into an error.
func safeExtract(ctx context.Context, ex driven.TextExtractor, content []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: %s panicked: %v", domain.ErrFallbackStrategy, ex.Name(), rec)
		}
	}()
	text, err = ex.Extract(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrFallbackStrategy, err)
	}
	return text, nil
}

// TextLength sums the trimmed character counts of docs.
func TextLength(docs []domain.Document) int {
	total := 0
	for i := range docs {
		total += textLen(docs[i].Content)
	}
	return total
}

func textLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
