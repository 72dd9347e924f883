package outbox

import (
	"context"
	"time"

	domain "sgc/internal/domain/outbox"
)

// Store defines outbox entry persistence.
type Store interface {
	// Save inserts or updates an entry.
	// PRE: entry has been validated
	Save(ctx context.Context, e domain.Entry) error

	// ListPending returns pending or retrying entries whose next attempt is at or before now, oldest first.
	// PRE: limit > 0
	ListPending(ctx context.Context, now time.Time, limit int) ([]domain.Entry, error)

	// ListFailed returns entries that exhausted their attempts, most recent first.
	ListFailed(ctx context.Context, limit int) ([]domain.Entry, error)
}
