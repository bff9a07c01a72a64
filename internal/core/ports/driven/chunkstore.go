package driven

import (
	"context"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
)

// ChunkStore persists ingestion output grouped into named collections.
type ChunkStore interface {
	// EnsureCollection returns the id of the named collection, creating it if needed.
	EnsureCollection(ctx context.Context, name string) (string, error)

	// SaveChunks stores chunks under a collection.
	SaveChunks(ctx context.Context, collectionID string, chunks []domain.Chunk) error

	// ListCollections returns all collections with their chunk counts, by name.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// DeleteCollection removes the named collection. Its chunks are left in
	// place as orphans for the cleanup job. Returns domain.ErrNotFound if the
	// collection does not exist.
	DeleteCollection(ctx context.Context, name string) error
}
