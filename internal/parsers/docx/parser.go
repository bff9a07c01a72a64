// Package docx provides the parser for Office Open XML Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// errNoBody is returned for archives without word/document.xml.
var errNoBody = errors.New("word/document.xml not found in archive")

// Parser handles DOCX documents.
type Parser struct{}

// New creates a new DOCX parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "docx"
}

// SupportedMIMETypes returns the MIME types this parser handles.
func (p *Parser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeDOCX}
}

// Parse extracts paragraph text from word/document.xml, one paragraph per line.
func (p *Parser) Parse(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	reader, err := zip.NewReader(bytes.NewReader(raw.Content), int64(len(raw.Content)))
	if err != nil {
		return nil, fmt.Errorf("open docx archive: %w", err)
	}

	body, err := readPart(reader, "word/document.xml")
	if err != nil {
		return nil, err
	}
	if body == nil {
		return nil, errNoBody
	}

	content, err := parseDocumentXML(body)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		domain.MetaMIMEType: domain.MIMETypeDOCX,
		domain.MetaFormat:   "docx",
	}
	if title := extractTitle(reader); title != "" {
		meta[domain.MetaTitle] = title
	}
	if raw.Filename != "" {
		meta[domain.MetaFilename] = raw.Filename
	}

	return []domain.Document{{Content: content, Metadata: meta}}, nil
}

// readPart returns the bytes of the named archive member, or nil if absent.
func readPart(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		return content, nil
	}
	return nil, nil
}

// parseDocumentXML streams the document body and ends each paragraph with a
// newline. Tabs and breaks inside runs are kept.
func parseDocumentXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var (
		result strings.Builder
		inRun  bool
		inText bool
	)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "r":
				inRun = true
			case "t":
				inText = true
			case "tab":
				// Tab stops in paragraph properties share the element name.
				if inRun {
					result.WriteString("\t")
				}
			case "br", "cr":
				if inRun {
					result.WriteString("\n")
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "r":
				inRun = false
			case "t":
				inText = false
			case "p":
				result.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				result.Write(t)
			}
		}
	}

	return strings.TrimSpace(result.String()), nil
}

// coreXML represents the structure of docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractTitle reads the title from docProps/core.xml.
func extractTitle(reader *zip.Reader) string {
	content, err := readPart(reader, "docProps/core.xml")
	if err != nil || content == nil {
		return ""
	}

	var core coreXML
	if err := xml.Unmarshal(content, &core); err != nil {
		return ""
	}
	return strings.TrimSpace(core.Title)
}
