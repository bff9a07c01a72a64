package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// createTestDOCX creates a minimal valid DOCX file in memory.
func createTestDOCX(documentXML, coreXML string) []byte {
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	// Add [Content_Types].xml (required for valid DOCX)
	contentTypes, _ := w.Create("[Content_Types].xml")
	contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))

	if documentXML != "" {
		doc, _ := w.Create("word/document.xml")
		doc.Write([]byte(documentXML))
	}

	if coreXML != "" {
		core, _ := w.Create("docProps/core.xml")
		core.Write([]byte(coreXML))
	}

	w.Close()
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
` + body + `
</w:body>
</w:document>`
}

func parse(t *testing.T, content []byte) domain.Document {
	t.Helper()
	docs, err := New().Parse(context.Background(), &domain.RawDocument{
		Filename: "doc.docx",
		MIMEType: docxMIME,
		Content:  content,
	})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return docs[0]
}

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.Equal(t, "docx", parser.Name())
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{docxMIME}, New().SupportedMIMETypes())
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Parser = (*Parser)(nil)
}

func TestParse_Success(t *testing.T) {
	coreXML := `<?xml version="1.0" encoding="UTF-8"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"
xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Test Document</dc:title>
</cp:coreProperties>`

	doc := parse(t, createTestDOCX(wrapBody(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), coreXML))

	assert.Equal(t, "Hello World", doc.Content)
	assert.Equal(t, "Test Document", doc.Metadata[domain.MetaTitle])
	assert.Equal(t, docxMIME, doc.Metadata[domain.MetaMIMEType])
	assert.Equal(t, "docx", doc.Metadata[domain.MetaFormat])
	assert.Equal(t, "doc.docx", doc.Metadata[domain.MetaFilename])
}

func TestParse_NilDocument(t *testing.T) {
	docs, err := New().Parse(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, docs)
}

func TestParse_InvalidZip(t *testing.T) {
	docs, err := New().Parse(context.Background(), &domain.RawDocument{
		MIMEType: docxMIME,
		Content:  []byte("not a zip file"),
	})
	assert.Error(t, err)
	assert.Nil(t, docs)
}

func TestParse_MissingBody(t *testing.T) {
	_, err := New().Parse(context.Background(), &domain.RawDocument{
		MIMEType: docxMIME,
		Content:  createTestDOCX("", ""),
	})
	assert.ErrorIs(t, err, errNoBody)
}

func TestParse_MalformedXML(t *testing.T) {
	_, err := New().Parse(context.Background(), &domain.RawDocument{
		MIMEType: docxMIME,
		Content:  createTestDOCX(`<w:document><w:body><w:p>`, ""),
	})
	assert.Error(t, err)
}

func TestParse_NoTitleWithoutCoreXML(t *testing.T) {
	doc := parse(t, createTestDOCX(wrapBody(`<w:p><w:r><w:t>Content</w:t></w:r></w:p>`), ""))
	assert.NotContains(t, doc.Metadata, domain.MetaTitle)
}

func TestParse_MultipleParagraphs(t *testing.T) {
	doc := parse(t, createTestDOCX(wrapBody(`
<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
<w:p><w:r><w:t>Third paragraph</w:t></w:r></w:p>`), ""))

	assert.Equal(t, "First paragraph\nSecond paragraph\nThird paragraph", doc.Content)
}

func TestParse_MultipleRuns(t *testing.T) {
	doc := parse(t, createTestDOCX(wrapBody(`<w:p>
<w:r><w:t xml:space="preserve">Hello </w:t></w:r>
<w:r><w:t>World</w:t></w:r>
</w:p>`), ""))

	assert.Equal(t, "Hello World", doc.Content)
}

func TestParse_TabsAndBreaks(t *testing.T) {
	doc := parse(t, createTestDOCX(wrapBody(`<w:p>
<w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr>
<w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r>
</w:p>`), ""))

	assert.Equal(t, "a\tb\nc", doc.Content)
}

func TestParse_EmptyDocument(t *testing.T) {
	doc := parse(t, createTestDOCX(wrapBody(""), ""))
	assert.Empty(t, doc.Content)
}

func BenchmarkParse(b *testing.B) {
	parser := New()
	ctx := context.Background()
	raw := &domain.RawDocument{
		MIMEType: docxMIME,
		Content:  createTestDOCX(wrapBody(`<w:p><w:r><w:t>Hello World</w:t></w:r></w:p>`), ""),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = parser.Parse(ctx, raw)
	}
}
