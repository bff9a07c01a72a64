package driving

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// IngestService turns one uploaded file into chunks.
type IngestService interface {
	// Ingest parses, cleans and chunks content declared as mimeType.
	// Every returned chunk carries the same upload_id in its metadata.
	// Failures are returned as *domain.RejectionError.
	Ingest(ctx context.Context, content []byte, mimeType string, metadata map[string]any) ([]domain.Chunk, error)

	// SupportedMIMETypes returns the MIME types that can be ingested.
	SupportedMIMETypes() []string
}
