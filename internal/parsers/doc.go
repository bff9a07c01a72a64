// Package parsers holds the format-specific implementations of the Parser
// port. Each parser turns the bytes of one upload into one or more
// documents and tags them with mime_type and format metadata.
//
// Parsers are registered with the ParserRegistry at startup, keyed by the
// canonical MIME types they report.
package parsers

import (
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/parsers/docx"
	"github.com/custodia-labs/sercha-ingest/internal/parsers/html"
	"github.com/custodia-labs/sercha-ingest/internal/parsers/msword"
	"github.com/custodia-labs/sercha-ingest/internal/parsers/pdf"
	"github.com/custodia-labs/sercha-ingest/internal/parsers/plaintext"
)

// Defaults returns the built-in parsers configured from settings.
func Defaults(cfg domain.ExtractionSettings) []driven.Parser {
	return []driven.Parser{
		pdf.New(),
		plaintext.New(),
		html.New(html.WithMode(cfg.HTMLMode)),
		docx.New(),
		msword.New(),
	}
}
