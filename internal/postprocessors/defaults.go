package postprocessors

import (
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/chunker"
	"github.com/custodia-labs/sercha-ingest/internal/postprocessors/sanitiser"
)

// RegisterDefaults registers all built-in processors with the registry.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("sanitiser", buildSanitiser)
}

// NewDefaultPipeline builds the chunker followed by the sanitiser using the
// chunking settings.
func NewDefaultPipeline(cfg domain.ChunkingSettings) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return BuildPipeline(r,
		Stage{Name: "chunker", Config: map[string]any{
			"chunk_size": cfg.ChunkSize,
			"overlap":    cfg.Overlap,
		}},
		Stage{Name: "sanitiser"},
	)
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok {
		if size <= 0 {
			return nil, fmt.Errorf("chunk_size must be positive, got %d", size)
		}
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok {
		if overlap < 0 {
			return nil, fmt.Errorf("overlap must not be negative, got %d", overlap)
		}
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

func buildSanitiser(_ map[string]any) (driven.PostProcessor, error) {
	return sanitiser.New(), nil
}

// getIntFromConfig extracts an int from a generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
