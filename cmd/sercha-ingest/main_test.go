package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestBootstrap_DefaultsFromEmptyConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	svcs, err := bootstrap(path)

	require.NoError(t, err)
	require.NotNil(t, svcs.Ingest)
	require.NotNil(t, svcs.Settings)
	assert.Contains(t, svcs.Ingest.SupportedMIMETypes(), domain.MIMETypePDF)
	assert.Contains(t, svcs.Ingest.SupportedMIMETypes(), domain.MIMETypeDOCX)
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chunking]\nchunk_size = 100\noverlap = 100\n"), 0o600))

	_, err := bootstrap(path)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBootstrap_IngestsText(t *testing.T) {
	svcs, err := bootstrap(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	chunks, err := svcs.Ingest.Ingest(context.Background(), []byte("Hello\x00World"), "text/plain", nil)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "HelloWorld", chunks[0].Content)
	assert.NotEmpty(t, chunks[0].Metadata[domain.MetaUploadID])
}

func TestBootstrap_IngestsHTMLBlankLines(t *testing.T) {
	svcs, err := bootstrap(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		markup string
	}{
		{name: "bare text", markup: "Title\n\n\n\n\nBody"},
		{name: "inside paragraph", markup: "<p>Title\n\n\n\n\nBody</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := svcs.Ingest.Ingest(context.Background(), []byte(tt.markup), "text/html", nil)

			require.NoError(t, err)
			require.Len(t, chunks, 1)
			assert.Equal(t, "Title\n\nBody", chunks[0].Content)
		})
	}
}

func TestBootstrap_SanitisesNestedMetadata(t *testing.T) {
	svcs, err := bootstrap(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	meta := map[string]any{
		"k\x00": []map[string]string{{"a": "b\x00"}},
	}
	chunks, err := svcs.Ingest.Ingest(context.Background(), []byte("some text"), "text/plain", meta)

	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []map[string]string{{"a": "b"}}, chunks[0].Metadata["k"])
	assert.Equal(t, []map[string]string{{"a": "b\x00"}}, meta["k\x00"])
}

func TestOpenMaintenance_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ingest.db")

	svc, closer, err := openMaintenance(context.Background(), domain.StoreDriverSQLite, dbPath)
	require.NoError(t, err)
	defer closer.Close()

	n, err := svc.DeleteOrphans(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOpenMaintenance_PostgresWithoutDSN(t *testing.T) {
	_, _, err := openMaintenance(context.Background(), domain.StoreDriverPostgres, "")

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestOpenMaintenance_UnknownDriver(t *testing.T) {
	_, _, err := openMaintenance(context.Background(), domain.StoreDriver("mysql"), "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestOpenChunkStore(t *testing.T) {
	dir := t.TempDir()

	store, closer, err := openChunkStore(dir)
	require.NoError(t, err)
	defer closer.Close()

	id, err := store.EnsureCollection(context.Background(), "docs")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.FileExists(t, filepath.Join(dir, "ingest.db"))
}
