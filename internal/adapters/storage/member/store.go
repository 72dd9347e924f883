package member

import (
	"context"

	domain "sgc/internal/domain/member"
)

// Store persists the roster.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByEmail(ctx context.Context, email string) (domain.Member, error)
	ListByMobile(ctx context.Context, mobile string) ([]domain.Member, error)
	ListByRoles(ctx context.Context, roles []string) ([]domain.Member, error)
	List(ctx context.Context) ([]domain.Member, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, value domain.Member) error
	UpdateYearAndRole(ctx context.Context, id, year, role string) error
	DeleteMany(ctx context.Context, ids []string) (int, error)
}
