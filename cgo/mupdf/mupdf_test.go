package mupdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/testutil"
)

func TestName(t *testing.T) {
	assert.Equal(t, "mupdf", New().Name())
}

func TestExtract(t *testing.T) {
	e := New()
	content := testutil.BuildPDF("", "MuPDF page text")

	text, err := e.Extract(context.Background(), content)
	if !e.Available() {
		assert.ErrorIs(t, err, domain.ErrNotImplemented)
		return
	}
	require.NoError(t, err)
	assert.Contains(t, text, "MuPDF page text")
}

func TestExtract_InvalidPDF(t *testing.T) {
	e := New()
	if !e.Available() {
		t.Skip("MuPDF not compiled in")
	}
	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
