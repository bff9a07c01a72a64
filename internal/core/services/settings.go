package services

import (
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyChunkSize      = "chunking.chunk_size"
	keyChunkOverlap   = "chunking.overlap"
	keyMinTextChars   = "extraction.min_text_chars"
	keyPDFFallbacks   = "extraction.pdf_fallbacks"
	keyHTMLMode       = "extraction.html_mode"
	keyMaxUploadBytes = "extraction.max_upload_bytes"
	keyMaintDriver    = "maintenance.driver"
	keyMaintDSN       = "maintenance.dsn"
	keyServerAddr     = "server.addr"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
	}
}

// Get retrieves current application settings.
// Missing keys and unrecognised enum values fall back to defaults; the
// result is then validated as a whole.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getInt(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getInt(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Extraction: domain.ExtractionSettings{
			MinTextChars:   s.getInt(keyMinTextChars, defaults.Extraction.MinTextChars),
			PDFFallbacks:   s.getStringSlice(keyPDFFallbacks, defaults.Extraction.PDFFallbacks),
			HTMLMode:       s.getHTMLMode(defaults.Extraction.HTMLMode),
			MaxUploadBytes: s.getInt64(keyMaxUploadBytes, defaults.Extraction.MaxUploadBytes),
		},
		Maintenance: domain.MaintenanceSettings{
			Driver: s.getDriver(defaults.Maintenance.Driver),
			DSN:    s.configStore.GetString(keyMaintDSN),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.configStore.Path(), err)
	}
	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyMinTextChars, settings.Extraction.MinTextChars},
		{keyPDFFallbacks, settings.Extraction.PDFFallbacks},
		{keyHTMLMode, settings.Extraction.HTMLMode.String()},
		{keyMaxUploadBytes, settings.Extraction.MaxUploadBytes},
		{keyMaintDriver, settings.Maintenance.Driver.String()},
		{keyMaintDSN, settings.Maintenance.DSN},
		{keyServerAddr, settings.Server.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getInt64(key string, defaultVal int64) int64 {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	if v := s.configStore.GetInt64(key); v > 0 {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return defaultVal
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getHTMLMode(defaultVal domain.HTMLMode) domain.HTMLMode {
	mode := domain.HTMLMode(s.configStore.GetString(keyHTMLMode))
	if mode.IsValid() {
		return mode
	}
	return defaultVal
}

func (s *SettingsService) getDriver(defaultVal domain.StoreDriver) domain.StoreDriver {
	driver := domain.StoreDriver(s.configStore.GetString(keyMaintDriver))
	if driver.IsValid() {
		return driver
	}
	return defaultVal
}
