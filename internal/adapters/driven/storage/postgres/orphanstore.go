package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
)

// Ensure OrphanStore implements the interface.
var _ driven.OrphanStore = (*OrphanStore)(nil)

// Count and delete share the predicate so a run never removes more rows
// than it counted.
const (
	countOrphansSQL = `
		SELECT count(*)
		  FROM langchain_pg_embedding e
		 WHERE NOT EXISTS (
		       SELECT 1
		         FROM langchain_pg_collection c
		        WHERE c.uuid = e.collection_id
		 )`

	deleteOrphansSQL = `
		DELETE FROM langchain_pg_embedding e
		 WHERE NOT EXISTS (
		       SELECT 1
		         FROM langchain_pg_collection c
		        WHERE c.uuid = e.collection_id
		 )`
)

// OrphanStore removes embeddings whose collection was deleted.
type OrphanStore struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL using a DSN or URL.
func New(ctx context.Context, dsn string) (*OrphanStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%w: postgres dsn is empty", domain.ErrStoreUnavailable)
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	return NewFromConfig(ctx, cfg)
}

// NewFromConfig connects using a prepared pool configuration.
func NewFromConfig(ctx context.Context, cfg *pgxpool.Config) (*OrphanStore, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	return &OrphanStore{pool: pool}, nil
}

// RemoveOrphans counts orphaned embeddings and, unless dryRun is set or
// there are none, deletes them. Both statements run on one connection inside
// a repeatable-read transaction, so the delete sees the counted snapshot.
func (s *OrphanStore) RemoveOrphans(ctx context.Context, dryRun bool) (n int64, err error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var count int64
	if err = tx.QueryRow(ctx, countOrphansSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("count orphan embeddings: %w", err)
	}
	if dryRun || count == 0 {
		err = tx.Rollback(ctx)
		if errors.Is(err, pgx.ErrTxClosed) {
			err = nil
		}
		return count, err
	}

	tag, err := tx.Exec(ctx, deleteOrphansSQL)
	if err != nil {
		return 0, fmt.Errorf("delete orphan embeddings: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the connection pool.
func (s *OrphanStore) Close() error {
	s.pool.Close()
	return nil
}
