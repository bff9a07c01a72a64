package html

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func parse(t *testing.T, p *Parser, markup string) domain.Document {
	t.Helper()
	docs, err := p.Parse(context.Background(), &domain.RawDocument{
		Filename: "page.html",
		MIMEType: "text/html; charset=utf-8",
		Content:  []byte(markup),
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, "html", parser.Name())
	assert.Equal(t, domain.HTMLModeText, parser.Mode())
}

func TestNew_InvalidModeIgnored(t *testing.T) {
	assert.Equal(t, domain.HTMLModeText, New(WithMode("pdf")).Mode())
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
}

func TestParse_NilDocument(t *testing.T) {
	_, err := New().Parse(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestParse_TextMode(t *testing.T) {
	tests := []struct {
		name     string
		markup   string
		expected string
	}{
		{
			name:     "paragraphs",
			markup:   "<html><body><p>First paragraph.</p><p>Second paragraph.</p></body></html>",
			expected: "First paragraph.\n\nSecond paragraph.",
		},
		{
			name:     "inline elements join",
			markup:   "<p>Hello <b>bold</b> and <a href='#'>link</a>.</p>",
			expected: "Hello bold and link.",
		},
		{
			name:     "scripts and styles removed",
			markup:   "<head><style>p{}</style></head><body><script>alert(1)</script><p>Visible</p><noscript>no</noscript></body>",
			expected: "Visible",
		},
		{
			name:     "entities decoded",
			markup:   "<p>Fish &amp; Chips &lt;3</p>",
			expected: "Fish & Chips <3",
		},
		{
			name:     "line breaks",
			markup:   "<p>line one<br>line two</p>",
			expected: "line one\nline two",
		},
		{
			name:     "list items",
			markup:   "<ul><li>one</li><li>two</li></ul>",
			expected: "one\ntwo",
		},
		{
			name:     "source spaces collapsed, line breaks kept",
			markup:   "<p>spread\n   across\tlines</p>",
			expected: "spread\nacross lines",
		},
		{
			name:     "source blank lines collapse to one",
			markup:   "Title\n\n\n\n\nBody",
			expected: "Title\n\nBody",
		},
		{
			name:     "blank lines inside paragraph collapse to one",
			markup:   "<p>Title\n\n\n\n\nBody</p>",
			expected: "Title\n\nBody",
		},
		{
			name:     "indentation between tags ignored",
			markup:   "<ul>\n  <li>one</li>\n  <li>two</li>\n</ul>",
			expected: "one\ntwo",
		},
		{
			name:     "comments dropped",
			markup:   "<p>kept<!-- hidden --></p>",
			expected: "kept",
		},
		{
			name:     "excess breaks collapse to one blank line",
			markup:   "<h1>Title</h1><br><br><br><br><p>Body</p>",
			expected: "Title\n\nBody",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, New(), tt.markup)
			assert.Equal(t, tt.expected, doc.Content)
		})
	}
}

func TestParse_Metadata(t *testing.T) {
	doc := parse(t, New(), "<html><head><title>  My   Page </title></head><body><p>x</p></body></html>")

	assert.Equal(t, "My Page", doc.Metadata[domain.MetaTitle])
	assert.Equal(t, "text/html", doc.Metadata[domain.MetaMIMEType])
	assert.Equal(t, "html", doc.Metadata[domain.MetaFormat])
	assert.Equal(t, "page.html", doc.Metadata[domain.MetaFilename])
}

func TestParse_NoTitle(t *testing.T) {
	doc := parse(t, New(), "<p>x</p>")
	assert.NotContains(t, doc.Metadata, domain.MetaTitle)
}

func TestParse_EmptyDocument(t *testing.T) {
	doc := parse(t, New(), "<html><body><script>x()</script></body></html>")
	assert.Empty(t, doc.Content)
}

func TestParse_MarkdownMode(t *testing.T) {
	p := New(WithMode(domain.HTMLModeMarkdown))
	require.Equal(t, domain.HTMLModeMarkdown, p.Mode())

	doc := parse(t, p, `<html><head><title>Doc</title></head><body>
<h1>Heading</h1>
<p>Some <strong>bold</strong> text.</p>
<ul><li>alpha</li><li>beta</li></ul>
<script>alert("x")</script>
</body></html>`)

	assert.Contains(t, doc.Content, "# Heading")
	assert.Contains(t, doc.Content, "**bold**")
	assert.Contains(t, doc.Content, "alpha")
	assert.NotContains(t, doc.Content, "alert")
	assert.NotContains(t, doc.Content, "<")
	assert.Equal(t, "Doc", doc.Metadata[domain.MetaTitle])
}
