package feedback

import (
	"context"

	domain "sgc/internal/domain/feedback"
)

// Store persists feedback submissions.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Feedback, error)
	Save(ctx context.Context, value domain.Feedback) error
	UpdateStatus(ctx context.Context, id, status string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Feedback, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
