// Package pdfcpu provides a pure Go fallback PDF text extractor that reads
// text-showing operators straight from page content streams.
package pdfcpu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor walks page content streams with pdfcpu.
// It sees literal strings only; text drawn through CID fonts with hex
// strings is not recovered.
type Extractor struct{}

// New creates a new content stream extractor.
func New() *Extractor {
	return &Extractor{}
}

// Name returns the extractor name.
func (e *Extractor) Name() string {
	return domain.ExtractorPDFCPU
}

// Available is always true; pdfcpu is pure Go.
func (e *Extractor) Available() bool {
	return true
}

// Extract returns the text of every page, pages separated by a blank line.
func (e *Extractor) Extract(ctx context.Context, content []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("pdfcpu: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		return "", fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if t := pageText(pdfCtx, pageNr); t != "" {
			pages = append(pages, t)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}

// pageText extracts text from a single page's content stream.
func pageText(pdfCtx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromStream(data)
}

// pdfString matches PDF literal strings: (text here)
var pdfString = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// textFromStream interprets the text operators of a content stream.
// Tj, TJ and ' show text; T*, ' and " start a new line; Td and TD with a
// vertical move start a new line, otherwise they separate words.
func textFromStream(data []byte) string {
	var sb strings.Builder

	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		switch {
		case bytes.HasSuffix(line, []byte("Tj")), bytes.HasSuffix(line, []byte("TJ")):
			writeStrings(&sb, line)
		case bytes.HasSuffix(line, []byte("'")), bytes.HasSuffix(line, []byte(`"`)):
			if bytes.Contains(line, []byte("(")) {
				newline(&sb)
				writeStrings(&sb, line)
			}
		case bytes.HasSuffix(line, []byte("Td")), bytes.HasSuffix(line, []byte("TD")):
			fields := bytes.Fields(line)
			if len(fields) == 3 && !bytes.Equal(fields[1], []byte("0")) {
				newline(&sb)
			} else if sb.Len() > 0 {
				sb.WriteByte(' ')
			}
		case bytes.Equal(line, []byte("T*")), bytes.Equal(line, []byte("ET")):
			newline(&sb)
		}
	}

	return cleanText(sb.String())
}

func writeStrings(sb *strings.Builder, line []byte) {
	for _, m := range pdfString.FindAllSubmatch(line, -1) {
		sb.WriteString(decodeString(m[1]))
	}
}

func newline(sb *strings.Builder) {
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
}

// decodeString handles PDF literal string escape sequences.
func decodeString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		default:
			if raw[i] < '0' || raw[i] > '7' {
				sb.WriteByte(raw[i])
				continue
			}
			// Octal escape, up to three digits.
			val := int(raw[i] - '0')
			for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
				i++
				val = val*8 + int(raw[i]-'0')
			}
			sb.WriteByte(byte(val))
		}
	}
	return winAnsi(sb.String())
}

// winAnsi decodes single-byte string contents as cp1252, the encoding of
// simple fonts with /WinAnsiEncoding.
func winAnsi(s string) string {
	out, err := charmap.Windows1252.NewDecoder().String(s)
	if err != nil {
		return s
	}
	return out
}

// cleanText trims each line and drops empty ones.
func cleanText(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
