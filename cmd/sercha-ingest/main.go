// Command sercha-ingest parses, cleans and chunks documents.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/cli"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/core/services"
	"github.com/custodia-labs/sercha-ingest/internal/extractors"
	"github.com/custodia-labs/sercha-ingest/internal/parsers"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and wires the services.
func bootstrap(configPath string) (*cli.Services, error) {
	var (
		configStore *file.ConfigStore
		err         error
	)
	if configPath != "" {
		configStore, err = file.NewConfigStoreAt(configPath)
	} else {
		configStore, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	ingest, err := buildIngestService(settings)
	if err != nil {
		return nil, err
	}

	return &cli.Services{
		Ingest:      ingest,
		Settings:    settingsService,
		Maintenance: openMaintenance,
		ChunkStore:  openChunkStore,
	}, nil
}

// buildIngestService assembles the parser registry, fallback escalator and
// chunking pipeline.
func buildIngestService(settings *domain.AppSettings) (*services.IngestService, error) {
	registry := services.NewParserRegistry(parsers.Defaults(settings.Extraction))

	fallbacks, err := extractors.Build(settings.Extraction.PDFFallbacks)
	if err != nil {
		return nil, err
	}
	escalator := services.NewFallbackEscalator(settings.Extraction.MinTextChars, fallbacks...)

	pipeline, err := postprocessors.NewDefaultPipeline(settings.Chunking)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	return services.NewIngestService(registry, pipeline,
		services.WithEscalator(escalator),
		services.WithMinTextChars(settings.Extraction.MinTextChars),
	), nil
}

// openMaintenance connects the cleanup job to the selected store.
// For sqlite the DSN is the database file; empty selects the default file.
func openMaintenance(ctx context.Context, driver domain.StoreDriver, dsn string) (driving.MaintenanceService, io.Closer, error) {
	var store driven.OrphanStore
	switch driver {
	case domain.StoreDriverPostgres:
		pg, err := postgres.New(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		store = pg
	case domain.StoreDriverSQLite:
		var (
			lite *sqlite.Store
			err  error
		)
		if dsn == "" {
			lite, err = sqlite.NewStore("")
		} else {
			lite, err = sqlite.Open(dsn)
		}
		if err != nil {
			return nil, nil, err
		}
		store = lite
	default:
		return nil, nil, fmt.Errorf("%w: unknown driver %q", domain.ErrInvalidInput, driver)
	}
	return services.NewMaintenanceService(store), store, nil
}

// openChunkStore opens the local SQLite chunk store.
func openChunkStore(dataDir string) (driven.ChunkStore, io.Closer, error) {
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, err
	}
	return store, store, nil
}
