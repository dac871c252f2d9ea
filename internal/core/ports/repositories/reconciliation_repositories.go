package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/fundraising_app/internal/core/domain"
)

// ReconciliationFlagReader defines read operations for reconciliation flags
type ReconciliationFlagReader interface {
	// ListOpenFlags returns unresolved flags, oldest first. limit <= 0 means no limit.
	ListOpenFlags(ctx context.Context, limit int) ([]domain.ReconciliationFlag, error)
}

// ReconciliationFlagWriter defines write operations for reconciliation flags
type ReconciliationFlagWriter interface {
	SaveFlag(ctx context.Context, flag domain.ReconciliationFlag) error

	// ResolveFlag closes an open flag. Unknown or already resolved flags are apperrors.ErrNotFound.
	ResolveFlag(ctx context.Context, flagID string, note string, at time.Time) error
}

// ReconciliationFlagRepositoryFacade combines all flag-related repository interfaces
type ReconciliationFlagRepositoryFacade interface {
	ReconciliationFlagReader
	ReconciliationFlagWriter
}
