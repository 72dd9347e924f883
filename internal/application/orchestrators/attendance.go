package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

// AttendanceStoreForSubmit defines the store interface needed by SubmitAttendance.
type AttendanceStoreForSubmit interface {
	UpsertBatch(ctx context.Context, records []attendance.Record) error
	ListByDate(ctx context.Context, date string) ([]attendance.Record, error)
}

// RosterLister lists every member on the roster.
type RosterLister interface {
	List(ctx context.Context) ([]member.Member, error)
}

// SubmitAttendanceInput carries one date's editor state.
// Original is the snapshot the editor was loaded with; Current is the edited marks.
type SubmitAttendanceInput struct {
	Date     string `validate:"required,isodate"`
	Original map[string]bool
	Current  map[string]bool
}

// SubmitAttendanceDeps holds dependencies for SubmitAttendance.
type SubmitAttendanceDeps struct {
	AttendanceStore AttendanceStoreForSubmit
	MemberStore     RosterLister
}

// SubmitAttendanceResult reports what was written and the day's share summary.
type SubmitAttendanceResult struct {
	Date      string
	Changed   int
	Summary   attendance.Summary
	ShareLink string
}

// ExecuteSubmitAttendance upserts the cells that differ from the loaded snapshot.
// PRE: every key of Current is a roster member ID
// POST: only changed cells are written, in one all-or-nothing batch
// INVARIANT: one row per (member, date); resubmitting the same state writes nothing
func ExecuteSubmitAttendance(ctx context.Context, input SubmitAttendanceInput, deps SubmitAttendanceDeps) (SubmitAttendanceResult, error) {
	if err := validateInput(input); err != nil {
		return SubmitAttendanceResult{}, err
	}
	roster, err := deps.MemberStore.List(ctx)
	if err != nil {
		return SubmitAttendanceResult{}, err
	}
	known := make(map[string]bool, len(roster))
	for _, m := range roster {
		known[m.ID] = true
	}

	sheet := attendance.NewSheet(input.Date, input.Original)
	for id, present := range input.Current {
		if !known[id] {
			return SubmitAttendanceResult{}, attendance.ErrUnknownCell
		}
		sheet.Mark(id, present)
	}
	changed := sheet.Changed()
	if len(changed) == 0 {
		return SubmitAttendanceResult{}, attendance.ErrNoChanges
	}

	if err := deps.AttendanceStore.UpsertBatch(ctx, changed); err != nil {
		return SubmitAttendanceResult{}, err
	}
	sheet.Reconcile()

	records, err := deps.AttendanceStore.ListByDate(ctx, input.Date)
	if err != nil {
		return SubmitAttendanceResult{}, err
	}
	summary := attendance.BuildSummary(input.Date, roster, attendance.Marks(records))
	slog.Info("attendance_submitted", "date", input.Date, "changed", len(changed), "present", len(summary.Present), "absent", len(summary.Absent))

	return SubmitAttendanceResult{
		Date:      input.Date,
		Changed:   len(changed),
		Summary:   summary,
		ShareLink: summary.WhatsAppLink(),
	}, nil
}

// AttendanceStoreForShare reads one date's marks.
type AttendanceStoreForShare interface {
	ListByDate(ctx context.Context, date string) ([]attendance.Record, error)
}

// ShareAttendanceInput names the date to share.
type ShareAttendanceInput struct {
	Date string `validate:"required,isodate"`
}

// ShareAttendanceDeps holds dependencies for ShareAttendance.
// Telegram is false when no bot is configured; the wa.me link is still returned.
type ShareAttendanceDeps struct {
	AttendanceStore AttendanceStoreForShare
	MemberStore     RosterLister
	OutboxStore     OutboxStoreForEnqueue
	Telegram        bool
	GenerateID      func() string
	Now             func() time.Time
}

// ShareAttendanceResult carries the summary and whether it was queued for Telegram.
type ShareAttendanceResult struct {
	Summary   attendance.Summary
	ShareLink string
	Queued    bool
}

// ErrNothingToShare is returned when no member has been marked on the date.
var ErrNothingToShare = errors.New("no attendance has been marked for this date")

// ExecuteShareAttendance builds the day's summary from stored marks and queues it for the group chat.
// POST: at most one telegram outbox entry is created
func ExecuteShareAttendance(ctx context.Context, input ShareAttendanceInput, deps ShareAttendanceDeps) (ShareAttendanceResult, error) {
	if err := validateInput(input); err != nil {
		return ShareAttendanceResult{}, err
	}
	records, err := deps.AttendanceStore.ListByDate(ctx, input.Date)
	if err != nil {
		return ShareAttendanceResult{}, err
	}
	if len(records) == 0 {
		return ShareAttendanceResult{}, ErrNothingToShare
	}
	roster, err := deps.MemberStore.List(ctx)
	if err != nil {
		return ShareAttendanceResult{}, err
	}

	summary := attendance.BuildSummary(input.Date, roster, attendance.Marks(records))
	result := ShareAttendanceResult{Summary: summary, ShareLink: summary.WhatsAppLink()}
	if !deps.Telegram {
		return result, nil
	}
	payload := outbox.TelegramPayload{Text: summary.Text()}
	if err := enqueue(ctx, deps.OutboxStore, deps.GenerateID(), outbox.ChannelTelegram, payload, deps.Now()); err != nil {
		return ShareAttendanceResult{}, err
	}
	result.Queued = true
	return result, nil
}
