package domain

import "fmt"

// Defaults for ingestion settings.
const (
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 200
	DefaultMinTextChars   = 500
	DefaultMaxUploadBytes = 100 * 1024 * 1024
	DefaultServerAddr     = ":8080"
)

// Fallback extractor names.
const (
	ExtractorPDFToText = "pdftotext"
	ExtractorMuPDF     = "mupdf"
	ExtractorPDFCPU    = "pdfcpu"
)

// DefaultPDFFallbacks is the escalation order for low-yield PDFs.
func DefaultPDFFallbacks() []string {
	return []string{ExtractorPDFToText, ExtractorMuPDF, ExtractorPDFCPU}
}

// HTMLMode selects how HTML is turned into text.
type HTMLMode string

// Available HTML modes.
const (
	// HTMLModeText extracts visible text, one block element per line.
	HTMLModeText HTMLMode = "text"

	// HTMLModeMarkdown converts sanitised HTML to Markdown.
	HTMLModeMarkdown HTMLMode = "markdown"
)

// IsValid returns true if the mode is recognised.
func (m HTMLMode) IsValid() bool {
	return m == HTMLModeText || m == HTMLModeMarkdown
}

// String returns the string representation.
func (m HTMLMode) String() string {
	return string(m)
}

// StoreDriver identifies the relational store used by maintenance.
type StoreDriver string

// Available store drivers.
const (
	StoreDriverPostgres StoreDriver = "postgres"
	StoreDriverSQLite   StoreDriver = "sqlite"
)

// IsValid returns true if the driver is recognised.
func (d StoreDriver) IsValid() bool {
	return d == StoreDriverPostgres || d == StoreDriverSQLite
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize int
	Overlap   int
}

// ExtractionSettings configures parsing and escalation.
type ExtractionSettings struct {
	MinTextChars   int
	PDFFallbacks   []string
	HTMLMode       HTMLMode
	MaxUploadBytes int64
}

// MaintenanceSettings configures the orphan cleanup job.
type MaintenanceSettings struct {
	Driver StoreDriver
	DSN    string
}

// ServerSettings configures the HTTP upload endpoint.
type ServerSettings struct {
	Addr string
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Chunking    ChunkingSettings
	Extraction  ExtractionSettings
	Maintenance MaintenanceSettings
	Server      ServerSettings
}

// DefaultAppSettings returns settings with all defaults applied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Extraction: ExtractionSettings{
			MinTextChars:   DefaultMinTextChars,
			PDFFallbacks:   DefaultPDFFallbacks(),
			HTMLMode:       HTMLModeText,
			MaxUploadBytes: DefaultMaxUploadBytes,
		},
		Maintenance: MaintenanceSettings{
			Driver: StoreDriverPostgres,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// Validate checks settings for internal consistency.
func (s *AppSettings) Validate() error {
	if s.Chunking.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidInput, s.Chunking.ChunkSize)
	}
	if s.Chunking.Overlap < 0 || s.Chunking.Overlap >= s.Chunking.ChunkSize {
		return fmt.Errorf("%w: overlap must be in [0, chunk_size), got %d", ErrInvalidInput, s.Chunking.Overlap)
	}
	if s.Extraction.MinTextChars < 0 {
		return fmt.Errorf("%w: min_text_chars must not be negative", ErrInvalidInput)
	}
	if !s.Extraction.HTMLMode.IsValid() {
		return fmt.Errorf("%w: unknown html_mode %q", ErrInvalidInput, s.Extraction.HTMLMode)
	}
	for _, name := range s.Extraction.PDFFallbacks {
		switch name {
		case ExtractorPDFToText, ExtractorMuPDF, ExtractorPDFCPU:
		default:
			return fmt.Errorf("%w: unknown pdf fallback %q", ErrInvalidInput, name)
		}
	}
	if !s.Maintenance.Driver.IsValid() {
		return fmt.Errorf("%w: unknown maintenance driver %q", ErrInvalidInput, s.Maintenance.Driver)
	}
	return nil
}
