// Package pdf provides the primary PDF parser, built on ledongthuc/pdf.
// It yields one document per page that carries text.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser extracts the embedded text layer of a PDF, page by page.
// Scanned PDFs have no text layer and produce no documents; the
// escalator decides what happens next.
type Parser struct{}

// New creates a new PDF parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "pdf"
}

// SupportedMIMETypes returns the MIME types this parser handles.
func (p *Parser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypePDF}
}

// Parse reads every page and returns the pages with text.
// ledongthuc/pdf panics on some malformed inputs; panics are returned as errors.
func (p *Parser) Parse(ctx context.Context, raw *domain.RawDocument) (docs []domain.Document, err error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	defer func() {
		if r := recover(); r != nil {
			docs = nil
			err = fmt.Errorf("read pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	title := documentTitle(reader)
	total := reader.NumPage()
	docs = make([]domain.Document, 0, total)

	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or problematic page, skip it.
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		meta := map[string]any{
			domain.MetaMIMEType:   domain.MIMETypePDF,
			domain.MetaFormat:     "pdf",
			domain.MetaPage:       i,
			domain.MetaTotalPages: total,
		}
		if title != "" {
			meta[domain.MetaTitle] = title
		}
		if raw.Filename != "" {
			meta[domain.MetaFilename] = raw.Filename
		}

		docs = append(docs, domain.Document{Content: text, Metadata: meta})
	}

	return docs, nil
}

// documentTitle reads /Title from the document information dictionary.
func documentTitle(r *pdf.Reader) string {
	info := r.Trailer().Key("Info")
	if info.IsNull() {
		return ""
	}
	return strings.TrimSpace(info.Key("Title").Text())
}
