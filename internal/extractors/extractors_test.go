package extractors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestBuild_DefaultOrder(t *testing.T) {
	got, err := Build(domain.DefaultPDFFallbacks())
	require.NoError(t, err)
	require.Len(t, got, 3)

	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Name()
	}
	assert.Equal(t, []string{"pdftotext", "mupdf", "pdfcpu"}, names)
}

func TestBuild_Empty(t *testing.T) {
	got, err := Build(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestByName_Unknown(t *testing.T) {
	_, err := ByName("tesseract")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
