package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, "plaintext", parser.Name())
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestParse_NilDocument(t *testing.T) {
	_, err := New().Parse(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		mimeType   string
		content    []byte
		wantText   string
		wantFormat string
	}{
		{
			name:       "plain utf8",
			mimeType:   "text/plain",
			content:    []byte("Hello, World!"),
			wantText:   "Hello, World!",
			wantFormat: "text",
		},
		{
			name:       "markdown",
			mimeType:   "text/markdown; charset=utf-8",
			content:    []byte("# Title\n\nBody"),
			wantText:   "# Title\n\nBody",
			wantFormat: "markdown",
		},
		{
			name:       "crlf line endings",
			mimeType:   "text/plain",
			content:    []byte("line one\r\nline two"),
			wantText:   "line one\nline two",
			wantFormat: "text",
		},
		{
			name:       "utf8 bom stripped",
			mimeType:   "text/plain",
			content:    []byte("\xef\xbb\xbfBOM text"),
			wantText:   "BOM text",
			wantFormat: "text",
		},
		{
			name:       "utf16le with bom",
			mimeType:   "text/plain",
			content:    []byte{0xff, 0xfe, 'H', 0, 'i', 0},
			wantText:   "Hi",
			wantFormat: "text",
		},
		{
			name:       "utf16be with bom",
			mimeType:   "text/plain",
			content:    []byte{0xfe, 0xff, 0, 'H', 0, 'i'},
			wantText:   "Hi",
			wantFormat: "text",
		},
		{
			name:       "empty",
			mimeType:   "text/plain",
			content:    nil,
			wantText:   "",
			wantFormat: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, err := New().Parse(context.Background(), &domain.RawDocument{
				Filename: "notes.txt",
				MIMEType: tt.mimeType,
				Content:  tt.content,
			})
			require.NoError(t, err)
			require.Len(t, docs, 1)
			assert.Equal(t, tt.wantText, docs[0].Content)
			assert.Equal(t, tt.wantFormat, docs[0].Metadata[domain.MetaFormat])
			assert.Equal(t, "notes.txt", docs[0].Metadata[domain.MetaFilename])
		})
	}
}

func TestParse_InvalidUTF8PassesThrough(t *testing.T) {
	docs, err := New().Parse(context.Background(), &domain.RawDocument{
		MIMEType: "text/plain",
		Content:  []byte("ok\xffok"),
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "ok")
}
