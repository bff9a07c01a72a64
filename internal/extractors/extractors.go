// Package extractors assembles the fallback text extraction strategies the
// escalator tries, in order, when a PDF's text layer is too thin.
package extractors

import (
	"fmt"

	"github.com/custodia-labs/sercha-ingest/cgo/mupdf"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/extractors/pdfcpu"
	"github.com/custodia-labs/sercha-ingest/internal/extractors/pdftotext"
)

// ByName returns the built-in extractor with the given name.
func ByName(name string) (driven.TextExtractor, error) {
	switch name {
	case domain.ExtractorPDFToText:
		return pdftotext.New(), nil
	case domain.ExtractorMuPDF:
		return mupdf.New(), nil
	case domain.ExtractorPDFCPU:
		return pdfcpu.New(), nil
	default:
		return nil, fmt.Errorf("%w: unknown extractor %q", domain.ErrInvalidInput, name)
	}
}

// Build returns the extractors for names, preserving order.
// Unavailable extractors are kept; the escalator skips them at run time.
func Build(names []string) ([]driven.TextExtractor, error) {
	out := make([]driven.TextExtractor, 0, len(names))
	for _, name := range names {
		e, err := ByName(name)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
