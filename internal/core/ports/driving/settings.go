package driving

import "github.com/custodia-labs/sercha-ingest/internal/core/domain"

// SettingsService exposes the effective application configuration.
type SettingsService interface {
	// Get returns the validated settings with defaults applied.
	Get() (*domain.AppSettings, error)

	// Save validates and persists settings.
	Save(settings *domain.AppSettings) error
}
