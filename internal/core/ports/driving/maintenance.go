package driving

import "context"

// MaintenanceService runs housekeeping jobs against the relational store.
type MaintenanceService interface {
	// DeleteOrphans removes embeddings whose collection no longer exists.
	// With dryRun set it only counts. Returns the affected row count.
	DeleteOrphans(ctx context.Context, dryRun bool) (int64, error)
}
