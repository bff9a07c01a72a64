package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ChunkStore  = (*Store)(nil)
	_ driven.OrphanStore = (*Store)(nil)
)

// DBFile is the database file name inside the data directory.
const DBFile = "ingest.db"

// orphanPredicate matches embeddings whose collection no longer exists.
// Count and delete share it so a cleanup never removes more than it counted.
const orphanPredicate = `
	NOT EXISTS (
		SELECT 1
		  FROM langchain_pg_collection c
		 WHERE c.uuid = langchain_pg_embedding.collection_id
	)`

// Store is a SQLite-backed chunk store and orphan cleanup target.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.sercha-ingest/data/ingest.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".sercha-ingest", "data")
	}
	return Open(filepath.Join(dataDir, DBFile))
}

// Open opens (creating if needed) the database file at dbPath.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations, recording each applied version.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_collections.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// EnsureCollection returns the id of the named collection, creating it if needed.
func (s *Store) EnsureCollection(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO langchain_pg_collection (uuid, name)
		VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, uuid.NewString(), name); err != nil {
		return "", fmt.Errorf("creating collection: %w", err)
	}

	var id string
	row := s.db.QueryRowContext(ctx, `SELECT uuid FROM langchain_pg_collection WHERE name = ?`, name)
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("reading collection: %w", err)
	}
	return id, nil
}

// SaveChunks stores chunks under a collection in one transaction.
// The upload_id metadata value is copied into its own indexed column.
func (s *Store) SaveChunks(ctx context.Context, collectionID string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO langchain_pg_embedding (id, collection_id, document, cmetadata, position, upload_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		uploadID, _ := chunk.Metadata[domain.MetaUploadID].(string)
		if _, err := stmt.ExecContext(ctx, uuid.NewString(), collectionID, chunk.Content,
			string(metadataJSON), chunk.Position, nullString(uploadID)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListCollections returns all collections with their chunk counts, by name.
func (s *Store) ListCollections(ctx context.Context) ([]domain.Collection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.uuid, c.name, COUNT(e.id)
		  FROM langchain_pg_collection c
		  LEFT JOIN langchain_pg_embedding e ON e.collection_id = c.uuid
		 GROUP BY c.uuid, c.name
		 ORDER BY c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []domain.Collection
	for rows.Next() {
		var c domain.Collection
		if err := rows.Scan(&c.ID, &c.Name, &c.Chunks); err != nil {
			return nil, fmt.Errorf("scanning collection: %w", err)
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating collections: %w", err)
	}
	return collections, nil
}

// DeleteCollection removes the named collection, leaving its chunks as orphans.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM langchain_pg_collection WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("collection %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

// RemoveOrphans counts embeddings without a collection and, unless dryRun
// is set or there are none, deletes them. Both statements run in one
// transaction on one connection with the same predicate.
func (s *Store) RemoveOrphans(ctx context.Context, dryRun bool) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var count int64
	row := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM langchain_pg_embedding WHERE`+orphanPredicate)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orphan embeddings: %w", err)
	}
	if dryRun || count == 0 {
		return count, nil
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM langchain_pg_embedding WHERE`+orphanPredicate)
	if err != nil {
		return 0, fmt.Errorf("deleting orphan embeddings: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting orphan embeddings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return deleted, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
