//go:build !cgo

package mupdf

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor extracts PDF text with MuPDF.
// This is a stub for builds without CGO.
type Extractor struct{}

// New creates a new MuPDF extractor.
// This is a stub for builds without CGO.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return domain.ExtractorMuPDF
}

// Available always returns false without CGO.
func (e *Extractor) Available() bool {
	return false
}

// Extract always fails without CGO.
func (e *Extractor) Extract(_ context.Context, _ []byte) (string, error) {
	return "", domain.ErrNotImplemented
}
