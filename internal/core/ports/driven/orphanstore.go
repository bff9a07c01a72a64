package driven

import "context"

// OrphanStore is the relational store behind the cleanup job.
// An orphan is an embedding row whose collection no longer exists.
type OrphanStore interface {
	// RemoveOrphans counts orphaned rows on a single connection and, unless
	// dryRun is set or the count is zero, deletes them with the same predicate.
	// Returns the number of rows that were (or would be) deleted.
	RemoveOrphans(ctx context.Context, dryRun bool) (int64, error)

	// Close releases the underlying connection pool.
	Close() error
}
