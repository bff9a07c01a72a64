// Package cli provides the sercha-ingest command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// MaintenanceOpener connects the cleanup job to the store selected by driver.
// The returned closer releases the store.
type MaintenanceOpener func(ctx context.Context, driver domain.StoreDriver, dsn string) (driving.MaintenanceService, io.Closer, error)

// ChunkStoreOpener opens the local chunk store. An empty dataDir selects the
// default location.
type ChunkStoreOpener func(dataDir string) (driven.ChunkStore, io.Closer, error)

// Services holds the collaborators the commands use.
type Services struct {
	Ingest      driving.IngestService
	Settings    driving.SettingsService
	Maintenance MaintenanceOpener
	ChunkStore  ChunkStoreOpener
}

// Bootstrap builds Services once flags are parsed, from the config file at
// configPath (empty for the default location).
type Bootstrap func(configPath string) (*Services, error)

var (
	version = "dev"

	verbose    bool
	logLevel   string
	configPath string
)

// Package-level services, set by SetServices or the bootstrap.
var (
	ingestService   driving.IngestService
	settingsService driving.SettingsService
	openMaintenance MaintenanceOpener
	openChunkStore  ChunkStoreOpener
	bootstrap       Bootstrap
)

var rootCmd = &cobra.Command{
	Use:   "sercha-ingest",
	Short: "Turn documents into clean, chunked text",
	Long: `sercha-ingest parses uploaded documents (PDF, Word, HTML, Markdown and
plain text), normalises and sanitises their text and splits it into
overlapping chunks ready for embedding.

Scanned PDFs that yield too little text are retried with fallback extractors
before being rejected.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.sercha-ingest/config.toml)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap registers the function that builds services after flag parsing.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	ingestService = s.Ingest
	settingsService = s.Settings
	openMaintenance = s.Maintenance
	openChunkStore = s.ChunkStore
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setup(_ *cobra.Command, _ []string) error {
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	if verbose {
		logger.SetVerbose(true)
	}

	if bootstrap == nil {
		return nil
	}
	services, err := bootstrap(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	SetServices(services)
	return nil
}

// currentSettings returns the configured settings, or defaults when no
// settings service is installed.
func currentSettings() (*domain.AppSettings, error) {
	if settingsService == nil {
		defaults := domain.DefaultAppSettings()
		return &defaults, nil
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

// errorMessage returns the user-facing text for an ingestion error.
func errorMessage(err error) string {
	var rej *domain.RejectionError
	if errors.As(err, &rej) {
		return rej.UserMessage()
	}
	return err.Error()
}
