// Package domain defines the core entities of the ingestion pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Uploaded bytes plus their declared MIME type
//   - UploadContext: Per-call provenance (upload id, MIME type, caller metadata)
//   - Document: Extracted text and metadata prior to chunking
//   - Chunk: A size-bounded unit of text, the pipeline's final output
//   - RejectionError: The typed, user-facing failure of an ingestion call
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
