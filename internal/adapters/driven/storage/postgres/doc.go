// Package postgres provides the PostgreSQL target of the orphan cleanup job.
//
// It works against the langchain pgvector tables (langchain_pg_collection,
// langchain_pg_embedding) through a github.com/jackc/pgx/v5 connection pool.
package postgres
