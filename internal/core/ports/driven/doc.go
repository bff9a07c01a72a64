// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for ingestion to function:
//
//   - Parser: Turns bytes of one format into Documents
//   - ParserRegistry: Dispatches bytes to the Parser registered for a MIME type
//   - PostProcessorPipeline: Chunks and re-sanitises Documents
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil or unavailable - the application degrades gracefully:
//
//   - TextExtractor: Fallback PDF text extraction. Unavailable extractors are skipped.
//   - OrphanStore: Relational store for the cleanup job.
//   - ChunkStore: Local persistence of ingestion output.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, parser, or extractor package
package driven
