// Package msword provides the parser for legacy Word 97-2003 (.doc) files.
//
// A .doc file is an OLE compound file. The text lives in the WordDocument
// stream and is located through the piece table stored in the CLX structure
// of the 0Table or 1Table stream. Pieces are either cp1252 bytes or UTF-16LE.
package msword

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	xunicode "golang.org/x/text/encoding/unicode"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.Parser = (*Parser)(nil)

// Errors reported for .doc files the parser cannot read.
var (
	ErrNotWordDocument = errors.New("no WordDocument stream")
	ErrEncrypted       = errors.New("document is encrypted")
	ErrCorrupt         = errors.New("corrupt word document")
)

const (
	streamWordDocument = "WordDocument"
	streamTable0       = "0Table"
	streamTable1       = "1Table"

	fibMagic         = 0xA5EC
	offFlags         = 0x0A
	offCcpText       = 0x4C
	offFcClx         = 0x01A2
	offLcbClx        = 0x01A6
	minFibSize       = offLcbClx + 4
	flagEncrypted    = 0x0100
	flagWhichTable   = 0x0200
	fcCompressedBit  = 0x40000000
	fcMask           = 0x3FFFFFFF
	clxPrc           = 0x01
	clxPcdt          = 0x02
	pieceDescriptorN = 8
)

// Parser handles legacy Word documents.
type Parser struct{}

// New creates a new .doc parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser name.
func (p *Parser) Name() string {
	return "msword"
}

// SupportedMIMETypes returns the MIME types this parser handles.
func (p *Parser) SupportedMIMETypes() []string {
	return []string{domain.MIMETypeMSWord}
}

// Parse extracts the main document text.
func (p *Parser) Parse(_ context.Context, raw *domain.RawDocument) ([]domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	streams, err := readStreams(raw.Content, streamWordDocument, streamTable0, streamTable1)
	if err != nil {
		return nil, err
	}

	text, err := extractText(streams[streamWordDocument], streams)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		domain.MetaMIMEType: domain.MIMETypeMSWord,
		domain.MetaFormat:   "doc",
	}
	if raw.Filename != "" {
		meta[domain.MetaFilename] = raw.Filename
	}

	return []domain.Document{{Content: text, Metadata: meta}}, nil
}

// readStreams loads the named top-level streams of a compound file.
func readStreams(content []byte, names ...string) (map[string][]byte, error) {
	doc, err := mscfb.New(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open compound file: %w", err)
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	streams := make(map[string][]byte, len(names))
	for {
		entry, err := doc.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read compound file: %w", err)
		}
		if !wanted[entry.Name] || len(entry.Path) > 0 {
			continue
		}
		data, err := io.ReadAll(entry)
		if err != nil {
			return nil, fmt.Errorf("read %s stream: %w", entry.Name, err)
		}
		streams[entry.Name] = data
	}

	if streams[streamWordDocument] == nil {
		return nil, ErrNotWordDocument
	}
	return streams, nil
}

// extractText decodes the main document text from the WordDocument stream
// using the piece table found in the table stream the FIB selects.
func extractText(word []byte, streams map[string][]byte) (string, error) {
	if len(word) < minFibSize {
		return "", fmt.Errorf("%w: FIB truncated", ErrCorrupt)
	}
	if binary.LittleEndian.Uint16(word) != fibMagic {
		return "", fmt.Errorf("%w: bad FIB magic", ErrCorrupt)
	}

	flags := binary.LittleEndian.Uint16(word[offFlags:])
	if flags&flagEncrypted != 0 {
		return "", ErrEncrypted
	}

	tableName := streamTable0
	if flags&flagWhichTable != 0 {
		tableName = streamTable1
	}
	table := streams[tableName]
	if table == nil {
		return "", fmt.Errorf("%w: missing %s stream", ErrCorrupt, tableName)
	}

	fcClx := int64(binary.LittleEndian.Uint32(word[offFcClx:]))
	lcbClx := int64(binary.LittleEndian.Uint32(word[offLcbClx:]))
	if lcbClx == 0 || fcClx+lcbClx > int64(len(table)) {
		return "", fmt.Errorf("%w: CLX out of range", ErrCorrupt)
	}

	pieces, err := parseClx(table[fcClx : fcClx+lcbClx])
	if err != nil {
		return "", err
	}

	remaining := int64(binary.LittleEndian.Uint32(word[offCcpText:]))
	var sb strings.Builder
	for _, pc := range pieces {
		if remaining <= 0 {
			break
		}
		n := pc.cpEnd - pc.cpStart
		if n > remaining {
			n = remaining
		}
		text, err := decodePiece(word, pc, n)
		if err != nil {
			return "", err
		}
		sb.WriteString(text)
		remaining -= n
	}

	return cleanText(sb.String()), nil
}

// piece is one entry of the piece table.
type piece struct {
	cpStart    int64
	cpEnd      int64
	fc         int64
	compressed bool
}

// parseClx skips any Prc entries and decodes the Pcdt piece table.
func parseClx(clx []byte) ([]piece, error) {
	i := 0
	for i < len(clx) {
		switch clx[i] {
		case clxPrc:
			if i+3 > len(clx) {
				return nil, fmt.Errorf("%w: truncated Prc", ErrCorrupt)
			}
			i += 3 + int(binary.LittleEndian.Uint16(clx[i+1:]))
		case clxPcdt:
			if i+5 > len(clx) {
				return nil, fmt.Errorf("%w: truncated Pcdt", ErrCorrupt)
			}
			lcb := int(binary.LittleEndian.Uint32(clx[i+1:]))
			start := i + 5
			if lcb < 0 || start+lcb > len(clx) {
				return nil, fmt.Errorf("%w: Pcdt out of range", ErrCorrupt)
			}
			return parsePlcPcd(clx[start : start+lcb])
		default:
			return nil, fmt.Errorf("%w: unexpected CLX entry 0x%02x", ErrCorrupt, clx[i])
		}
	}
	return nil, fmt.Errorf("%w: no piece table", ErrCorrupt)
}

// parsePlcPcd decodes n+1 character positions followed by n 8-byte
// piece descriptors.
func parsePlcPcd(b []byte) ([]piece, error) {
	if len(b) < 4 || (len(b)-4)%(4+pieceDescriptorN) != 0 {
		return nil, fmt.Errorf("%w: bad PlcPcd size %d", ErrCorrupt, len(b))
	}
	n := (len(b) - 4) / (4 + pieceDescriptorN)
	pcdBase := 4 * (n + 1)

	pieces := make([]piece, 0, n)
	for i := 0; i < n; i++ {
		cpStart := int64(binary.LittleEndian.Uint32(b[4*i:]))
		cpEnd := int64(binary.LittleEndian.Uint32(b[4*(i+1):]))
		if cpEnd < cpStart {
			return nil, fmt.Errorf("%w: piece %d has negative length", ErrCorrupt, i)
		}
		raw := binary.LittleEndian.Uint32(b[pcdBase+i*pieceDescriptorN+2:])
		pieces = append(pieces, piece{
			cpStart:    cpStart,
			cpEnd:      cpEnd,
			fc:         int64(raw & fcMask),
			compressed: raw&fcCompressedBit != 0,
		})
	}
	return pieces, nil
}

// decodePiece reads n characters of a piece from the WordDocument stream.
func decodePiece(word []byte, pc piece, n int64) (string, error) {
	if pc.compressed {
		start := pc.fc / 2
		if start+n > int64(len(word)) {
			return "", fmt.Errorf("%w: piece out of range", ErrCorrupt)
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(word[start : start+n])
		if err != nil {
			return "", fmt.Errorf("decode cp1252 piece: %w", err)
		}
		return string(out), nil
	}

	start := pc.fc
	if start+2*n > int64(len(word)) {
		return "", fmt.Errorf("%w: piece out of range", ErrCorrupt)
	}
	dec := xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM).NewDecoder()
	out, err := dec.Bytes(word[start : start+2*n])
	if err != nil {
		return "", fmt.Errorf("decode utf-16 piece: %w", err)
	}
	return string(out), nil
}

// cleanText maps Word control characters to plain text. Field instructions
// (between 0x13 and 0x14) are dropped, including any field nested in them;
// field results are kept.
func cleanText(s string) string {
	var (
		sb    strings.Builder
		depth int
		// inCode tracks, per open field, whether we are still in its instruction.
		inCode []bool
	)
	for _, r := range s {
		switch r {
		case 0x13:
			depth++
			inCode = append(inCode, true)
			continue
		case 0x14:
			if depth > 0 {
				inCode[depth-1] = false
			}
			continue
		case 0x15:
			if depth > 0 {
				depth--
				inCode = inCode[:depth]
			}
			continue
		}

		if inInstruction(inCode) {
			continue
		}

		switch r {
		case '\r', 0x0b, 0x0c:
			sb.WriteByte('\n')
		case 0x07:
			sb.WriteByte('\t')
		case 0x1e:
			sb.WriteByte('-')
		case 0x01, 0x02, 0x05, 0x08, 0x1f:
		default:
			sb.WriteRune(r)
		}
	}
	return strings.TrimSpace(sb.String())
}

func inInstruction(open []bool) bool {
	for _, code := range open {
		if code {
			return true
		}
	}
	return false
}
