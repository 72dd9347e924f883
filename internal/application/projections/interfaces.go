package projections

import (
	"context"
	"time"

	"sgc/internal/adapters/http/perf"
	domainAttendance "sgc/internal/domain/attendance"
	domainFeedback "sgc/internal/domain/feedback"
	domainMember "sgc/internal/domain/member"
	domainOutbox "sgc/internal/domain/outbox"
)

// MemberStore interface for roster queries.
type MemberStore interface {
	GetByEmail(ctx context.Context, email string) (domainMember.Member, error)
	ListByMobile(ctx context.Context, mobile string) ([]domainMember.Member, error)
	List(ctx context.Context) ([]domainMember.Member, error)
	Count(ctx context.Context) (int, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDate(ctx context.Context, date string) ([]domainAttendance.Record, error)
	ListByMonth(ctx context.Context, month string) ([]domainAttendance.Record, error)
	ListAll(ctx context.Context) ([]domainAttendance.Record, error)
	ListMonths(ctx context.Context) ([]string, error)
	CountByDate(ctx context.Context, date string) (int, error)
}

// FeedbackStore interface for feedback queries.
type FeedbackStore interface {
	List(ctx context.Context) ([]domainFeedback.Feedback, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// OutboxStore interface for notification delivery state.
type OutboxStore interface {
	ListFailed(ctx context.Context, limit int) ([]domainOutbox.Entry, error)
}

// PerfSource summarises recent request and query timings.
type PerfSource interface {
	Summary(since time.Time, topN int) perf.Summary
}
