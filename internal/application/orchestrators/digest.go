package orchestrators

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
	"sgc/internal/domain/report"
)

// AttendanceStoreForDigest reads one month of attendance.
type AttendanceStoreForDigest interface {
	ListByMonth(ctx context.Context, month string) ([]attendance.Record, error)
}

// MemberStoreForDigest lists the roster and its admins.
type MemberStoreForDigest interface {
	List(ctx context.Context) ([]member.Member, error)
	ListByRoles(ctx context.Context, roles []string) ([]member.Member, error)
}

// MonthlyDigestInput names the month to summarise. Empty means the month before Now.
type MonthlyDigestInput struct {
	Month string
}

// MonthlyDigestDeps holds dependencies for MonthlyDigest.
type MonthlyDigestDeps struct {
	AttendanceStore AttendanceStoreForDigest
	MemberStore     MemberStoreForDigest
	OutboxStore     OutboxStoreForEnqueue
	Options         report.Options
	GenerateID      func() string
	Now             func() time.Time
}

// MonthlyDigestResult reports what the digest found and queued.
type MonthlyDigestResult struct {
	Month       string
	WorkingDays int
	Flagged     []report.MemberMonth
	Queued      int
}

// ExecuteMonthlyDigest emails each admin the members below the attendance threshold.
// POST: nothing is queued for a month without working days or without flagged members
func ExecuteMonthlyDigest(ctx context.Context, input MonthlyDigestInput, deps MonthlyDigestDeps) (MonthlyDigestResult, error) {
	month := input.Month
	if month == "" {
		month = report.PreviousMonth(deps.Now())
	}
	if _, err := report.ParseMonth(month); err != nil {
		return MonthlyDigestResult{}, err
	}

	records, err := deps.AttendanceStore.ListByMonth(ctx, month)
	if err != nil {
		return MonthlyDigestResult{}, err
	}
	roster, err := deps.MemberStore.List(ctx)
	if err != nil {
		return MonthlyDigestResult{}, err
	}
	monthly := report.BuildMonthly(month, records, roster, deps.Options)
	result := MonthlyDigestResult{Month: month, WorkingDays: monthly.WorkingDays, Flagged: monthly.BelowThreshold()}
	if monthly.WorkingDays == 0 || len(result.Flagged) == 0 {
		slog.Info("digest_skipped", "month", month, "working_days", monthly.WorkingDays, "flagged", len(result.Flagged))
		return result, nil
	}

	admins, err := deps.MemberStore.ListByRoles(ctx, member.AdminRoles)
	if err != nil {
		return MonthlyDigestResult{}, err
	}
	payload := digestPayload(monthly, result.Flagged, deps.Options.Threshold)
	for _, a := range admins {
		if a.Email == "" {
			continue
		}
		payload.To = a.Email
		if err := enqueue(ctx, deps.OutboxStore, deps.GenerateID(), outbox.ChannelEmail, payload, deps.Now()); err != nil {
			return MonthlyDigestResult{}, err
		}
		result.Queued++
	}
	slog.Info("digest_queued", "month", month, "flagged", len(result.Flagged), "recipients", result.Queued)
	return result, nil
}

func digestPayload(m report.Monthly, flagged []report.MemberMonth, threshold float64) outbox.EmailPayload {
	label := report.MonthLabel(m.Month)
	var text, rows strings.Builder
	fmt.Fprintf(&text, "%d member(s) attended less than %.0f%% of the %d working days in %s:\n\n",
		len(flagged), threshold, m.WorkingDays, label)
	for _, r := range flagged {
		fmt.Fprintf(&text, "- %s (%s): %d/%d, %s\n", r.Name, r.Department, r.Present, r.WorkingDays, report.FormatPercent(r.Percentage))
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%d/%d</td><td>%s</td></tr>\n",
			html.EscapeString(r.Name), html.EscapeString(r.Department), r.Present, r.WorkingDays, report.FormatPercent(r.Percentage))
	}
	return outbox.EmailPayload{
		Subject: fmt.Sprintf("Attendance below %.0f%% in %s", threshold, label),
		HTML: fmt.Sprintf("<p>%d member(s) attended less than %.0f%% of the %d working days in %s.</p>\n"+
			"<table>\n<tr><th>Name</th><th>Department</th><th>Present</th><th>Percentage</th></tr>\n%s</table>",
			len(flagged), threshold, m.WorkingDays, html.EscapeString(label), rows.String()),
		Text: text.String(),
	}
}

// StartDigestScheduler runs the monthly digest on a cron schedule.
// PRE: schedule is a standard five-field cron spec
// POST: returns a stop func that waits for a running digest to finish
func StartDigestScheduler(schedule string, deps MonthlyDigestDeps) (func(), error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := ExecuteMonthlyDigest(ctx, MonthlyDigestInput{}, deps); err != nil {
			slog.Error("digest_failed", "error", err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("digest schedule %q: %w", schedule, err)
	}
	c.Start()
	slog.Info("digest_scheduler_started", "schedule", schedule)
	return func() { <-c.Stop().Done() }, nil
}
