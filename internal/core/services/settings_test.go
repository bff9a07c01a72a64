package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults, *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("chunking.chunk_size", 400)
	_ = store.Set("chunking.overlap", int64(50))
	_ = store.Set("extraction.min_text_chars", 120)
	_ = store.Set("extraction.pdf_fallbacks", []any{"pdfcpu"})
	_ = store.Set("extraction.html_mode", "markdown")
	_ = store.Set("extraction.max_upload_bytes", int64(2048))
	_ = store.Set("maintenance.driver", "sqlite")
	_ = store.Set("maintenance.dsn", "/tmp/ingest.db")
	_ = store.Set("server.addr", "127.0.0.1:9090")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, 400, settings.Chunking.ChunkSize)
	assert.Equal(t, 50, settings.Chunking.Overlap)
	assert.Equal(t, 120, settings.Extraction.MinTextChars)
	assert.Equal(t, []string{"pdfcpu"}, settings.Extraction.PDFFallbacks)
	assert.Equal(t, domain.HTMLModeMarkdown, settings.Extraction.HTMLMode)
	assert.Equal(t, int64(2048), settings.Extraction.MaxUploadBytes)
	assert.Equal(t, domain.StoreDriverSQLite, settings.Maintenance.Driver)
	assert.Equal(t, "/tmp/ingest.db", settings.Maintenance.DSN)
	assert.Equal(t, "127.0.0.1:9090", settings.Server.Addr)
}

func TestSettingsService_Get_EmptyFallbackListDisablesEscalation(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("extraction.pdf_fallbacks", []any{})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Empty(t, settings.Extraction.PDFFallbacks)
}

func TestSettingsService_Get_InvalidEnumsReturnDefaults(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("extraction.html_mode", "rich")
	_ = store.Set("maintenance.driver", "oracle")

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.Extraction.HTMLMode, settings.Extraction.HTMLMode)
	assert.Equal(t, defaults.Maintenance.Driver, settings.Maintenance.Driver)
}

func TestSettingsService_Get_InconsistentValuesFail(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"overlap not below chunk size", "chunking.overlap", 1000},
		{"zero chunk size", "chunking.chunk_size", 0},
		{"negative min text", "extraction.min_text_chars", -1},
		{"unknown fallback", "extraction.pdf_fallbacks", []any{"tesseract"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			_ = store.Set(tt.key, tt.value)

			settings, err := NewSettingsService(store).Get()

			assert.Nil(t, settings)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Save(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	settings := domain.DefaultAppSettings()
	settings.Chunking.ChunkSize = 600
	settings.Chunking.Overlap = 60
	settings.Extraction.HTMLMode = domain.HTMLModeMarkdown
	settings.Maintenance.Driver = domain.StoreDriverSQLite

	require.NoError(t, service.Save(&settings))

	assert.Equal(t, 600, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, "markdown", store.GetString("extraction.html_mode"))
	assert.Equal(t, "sqlite", store.GetString("maintenance.driver"))

	loaded, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, settings, *loaded)
}

func TestSettingsService_Save_RejectsInvalid(t *testing.T) {
	store := memory.NewConfigStore()
	settings := domain.DefaultAppSettings()
	settings.Chunking.Overlap = -5

	err := NewSettingsService(store).Save(&settings)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, ok := store.Get("chunking.overlap")
	assert.False(t, ok)
}
