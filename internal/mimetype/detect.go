// Package mimetype guesses the MIME type of a local file for the CLI and the
// drop-folder watcher. HTTP uploads declare their type and skip detection.
package mimetype

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// SniffLen is the number of leading bytes Detect looks at.
const SniffLen = 512

// OctetStream is returned when nothing better is known.
const OctetStream = "application/octet-stream"

// byExtension covers types the platform MIME table often lacks or gets wrong
// (a .docx sniffs as a zip archive).
var byExtension = map[string]string{
	".txt":      domain.MIMETypeText,
	".text":     domain.MIMETypeText,
	".log":      domain.MIMETypeText,
	".md":       domain.MIMETypeMarkdown,
	".markdown": domain.MIMETypeMarkdown,
	".htm":      domain.MIMETypeHTML,
	".html":     domain.MIMETypeHTML,
	".xhtml":    domain.MIMETypeXHTML,
	".pdf":      domain.MIMETypePDF,
	".doc":      domain.MIMETypeMSWord,
	".docx":     domain.MIMETypeDOCX,
}

// Detect returns the canonical MIME type for a file name and its first bytes.
// Known extensions win, then the platform table, then content sniffing.
// An empty file without an extension is treated as plain text.
func Detect(name string, head []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := byExtension[ext]; ok {
		return mt
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return domain.CanonicalMIMEType(mt)
		}
	}

	if len(head) == 0 {
		if ext == "" {
			return domain.MIMETypeText
		}
		return OctetStream
	}
	if len(head) > SniffLen {
		head = head[:SniffLen]
	}
	return domain.CanonicalMIMEType(http.DetectContentType(head))
}
