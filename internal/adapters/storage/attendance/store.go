package attendance

import (
	"context"

	domain "sgc/internal/domain/attendance"
)

// Store persists attendance marks.
type Store interface {
	UpsertBatch(ctx context.Context, records []domain.Record) error
	ListByDate(ctx context.Context, date string) ([]domain.Record, error)
	ListByMonth(ctx context.Context, month string) ([]domain.Record, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Record, error)
	ListAll(ctx context.Context) ([]domain.Record, error)
	ListMonths(ctx context.Context) ([]string, error)
	CountByDate(ctx context.Context, date string) (int, error)
}
