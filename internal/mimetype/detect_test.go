package mimetype

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestDetect_ByExtension(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"notes.txt", domain.MIMETypeText},
		{"README.md", domain.MIMETypeMarkdown},
		{"doc.markdown", domain.MIMETypeMarkdown},
		{"page.html", domain.MIMETypeHTML},
		{"page.HTM", domain.MIMETypeHTML},
		{"report.pdf", domain.MIMETypePDF},
		{"REPORT.PDF", domain.MIMETypePDF},
		{"letter.doc", domain.MIMETypeMSWord},
		{"letter.docx", domain.MIMETypeDOCX},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, Detect(tt.filename, nil))
		})
	}
}

func TestDetect_ExtensionBeatsContent(t *testing.T) {
	// A docx is a zip archive; the extension decides.
	zipHead := []byte("PK\x03\x04\x14\x00\x06\x00")
	assert.Equal(t, domain.MIMETypeDOCX, Detect("letter.docx", zipHead))
}

func TestDetect_SniffsContentWithoutExtension(t *testing.T) {
	assert.Equal(t, domain.MIMETypePDF, Detect("upload", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")))
	assert.Equal(t, domain.MIMETypeHTML, Detect("upload", []byte("<!DOCTYPE html><html><body>x</body></html>")))
}

func TestDetect_StripsParameters(t *testing.T) {
	mt := Detect("upload", []byte("plain words"))
	assert.Equal(t, domain.MIMETypeText, mt)
	assert.NotContains(t, mt, ";")
}

func TestDetect_NoExtensionNoContent(t *testing.T) {
	assert.Equal(t, domain.MIMETypeText, Detect("file", nil))
}

func TestDetect_BinaryContent(t *testing.T) {
	assert.Equal(t, OctetStream, Detect("blob.zzzzunknown", nil))
	assert.Equal(t, OctetStream, Detect("blob", []byte{0x00, 0x01, 0x02, 0x80, 0x81, 0x90}))
}
