package projections

import (
	"context"
	"time"

	"sgc/internal/adapters/http/perf"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/outbox"
)

// dashboardWindow is how far back the performance panel looks.
const dashboardWindow = time.Hour

// DashboardQuery carries no parameters.
type DashboardQuery struct{}

// DashboardResult carries the admin dashboard figures.
type DashboardResult struct {
	Today           string
	Members         int
	MarkedToday     int
	PendingFeedback int
	FailedOutbox    []outbox.Entry
	Perf            perf.Summary
}

// DashboardDeps holds dependencies for QueryDashboard. Perf may be nil.
type DashboardDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	FeedbackStore   FeedbackStore
	OutboxStore     OutboxStore
	Perf            PerfSource
	Now             func() time.Time
}

// QueryDashboard gathers counts for the dashboard landing page.
func QueryDashboard(ctx context.Context, _ DashboardQuery, deps DashboardDeps) (DashboardResult, error) {
	now := deps.Now()
	res := DashboardResult{Today: now.Format(attendance.DateLayout)}

	var err error
	if res.Members, err = deps.MemberStore.Count(ctx); err != nil {
		return DashboardResult{}, err
	}
	if res.MarkedToday, err = deps.AttendanceStore.CountByDate(ctx, res.Today); err != nil {
		return DashboardResult{}, err
	}
	counts, err := deps.FeedbackStore.CountByStatus(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	res.PendingFeedback = counts[feedback.StatusPending]
	if res.FailedOutbox, err = deps.OutboxStore.ListFailed(ctx, 5); err != nil {
		return DashboardResult{}, err
	}
	if deps.Perf != nil {
		res.Perf = deps.Perf.Summary(now.Add(-dashboardWindow), 5)
	}
	return res, nil
}
