// Package sqlite provides a SQLite-based implementation of the chunk store
// and the orphan cleanup target.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. Tables follow the langchain pgvector layout
// (langchain_pg_collection, langchain_pg_embedding) so ingestion output can be
// inspected and cleaned up locally exactly as it would be in PostgreSQL.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.sercha-ingest/data/ingest.db
package sqlite
