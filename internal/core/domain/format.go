package domain

import (
	"mime"
	"strings"
)

// Supported MIME types.
const (
	MIMETypePDF      = "application/pdf"
	MIMETypeText     = "text/plain"
	MIMETypeMarkdown = "text/markdown"
	MIMETypeHTML     = "text/html"
	MIMETypeXHTML    = "application/xhtml+xml"
	MIMETypeMSWord   = "application/msword"
	MIMETypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DefaultMIMEType is assumed when the caller declares no type.
const DefaultMIMEType = MIMETypeText

// CanonicalMIMEType lower-cases a declared MIME type and strips parameters,
// so "Text/HTML; charset=utf-8" becomes "text/html".
// An empty declaration yields DefaultMIMEType.
func CanonicalMIMEType(declared string) string {
	declared = strings.TrimSpace(declared)
	if declared == "" {
		return DefaultMIMEType
	}
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		return mediaType
	}
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	return strings.ToLower(strings.TrimSpace(declared))
}

// IsPDF reports whether the declared MIME type is the PDF type.
func IsPDF(mimeType string) bool {
	return CanonicalMIMEType(mimeType) == MIMETypePDF
}
