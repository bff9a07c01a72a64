package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/sercha-ingest/internal/core/domain"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-ingest/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-ingest/internal/logger"
)

// Ensure MaintenanceService implements the interface.
var _ driving.MaintenanceService = (*MaintenanceService)(nil)

// MaintenanceService runs the orphan cleanup job.
type MaintenanceService struct {
	store driven.OrphanStore
}

// NewMaintenanceService creates a maintenance service. The store may be nil,
// in which case every job fails with domain.ErrStoreUnavailable.
func NewMaintenanceService(store driven.OrphanStore) *MaintenanceService {
	return &MaintenanceService{store: store}
}

// DeleteOrphans removes embeddings whose collection no longer exists.
// With dryRun set nothing is deleted and the orphan count is returned.
// Store errors are fatal to the invocation.
func (s *MaintenanceService) DeleteOrphans(ctx context.Context, dryRun bool) (int64, error) {
	if s.store == nil {
		return 0, domain.ErrStoreUnavailable
	}

	n, err := s.store.RemoveOrphans(ctx, dryRun)
	if err != nil {
		return 0, fmt.Errorf("remove orphans: %w", err)
	}

	if dryRun {
		logger.Info("Dry run: %d orphan embeddings would be deleted.", n)
	} else {
		logger.Info("Deleted %d orphan embeddings.", n)
	}
	return n, nil
}
