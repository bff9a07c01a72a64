// Package plaintext provides the parser for plain text and Markdown uploads.
package plaintext

import (
	"context"
	"strings"

	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Parser treats the upload as text.
// A UTF-8 or UTF-16 byte order mark selects the decoding; without one the
// bytes are taken as UTF-8 and left for the sanitiser to repair.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "plaintext"
}

// SupportedMIMETypes returns the MIME types this parser handles.
func (p *Parser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeText, domain.MIMETypeMarkdown}
}

// Parse decodes the upload into a single document.
func (p *Parser) Parse(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := decode(raw.Content)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	mimeType := domain.CanonicalMIMEType(raw.MIMEType)
	format := "text"
	if mimeType == domain.MIMETypeMarkdown {
		format = "markdown"
	}

	meta := map[string]any{
		domain.MetaMIMEType: mimeType,
		domain.MetaFormat:   format,
	}
	if raw.Filename != "" {
		meta[domain.MetaFilename] = raw.Filename
	}

	return []domain.Document{{Content: content, Metadata: meta}}, nil
}

// decode strips a byte order mark and converts UTF-16 to UTF-8.
func decode(b []byte) string {
	dec := xunicode.BOMOverride(transform.Nop)
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return string(b)
	}
	return string(out)
}
