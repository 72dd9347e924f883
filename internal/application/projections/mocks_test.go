package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	"sgc/internal/adapters/http/perf"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

var fixedTime = time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

type mockMemberStore struct {
	members []member.Member
}

func (s *mockMemberStore) GetByEmail(_ context.Context, email string) (member.Member, error) {
	for _, m := range s.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (s *mockMemberStore) ListByMobile(_ context.Context, mobile string) ([]member.Member, error) {
	var out []member.Member
	for _, m := range s.members {
		if m.Mobile == mobile {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *mockMemberStore) List(context.Context) ([]member.Member, error) {
	return append([]member.Member(nil), s.members...), nil
}

func (s *mockMemberStore) Count(context.Context) (int, error) {
	return len(s.members), nil
}

type mockAttendanceStore struct {
	records []attendance.Record
}

func (s *mockAttendanceStore) filter(keep func(attendance.Record) bool) []attendance.Record {
	var out []attendance.Record
	for _, r := range s.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *mockAttendanceStore) ListByDate(_ context.Context, date string) ([]attendance.Record, error) {
	return s.filter(func(r attendance.Record) bool { return r.Date == date }), nil
}

func (s *mockAttendanceStore) ListByMonth(_ context.Context, month string) ([]attendance.Record, error) {
	return s.filter(func(r attendance.Record) bool { return strings.HasPrefix(r.Date, month+"-") }), nil
}

func (s *mockAttendanceStore) ListAll(context.Context) ([]attendance.Record, error) {
	return append([]attendance.Record(nil), s.records...), nil
}

func (s *mockAttendanceStore) ListMonths(context.Context) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range s.records {
		m := r.Date[:7]
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *mockAttendanceStore) CountByDate(ctx context.Context, date string) (int, error) {
	rows, _ := s.ListByDate(ctx, date)
	return len(rows), nil
}

type mockFeedbackStore struct {
	items []feedback.Feedback // newest first
}

func (s *mockFeedbackStore) List(context.Context) ([]feedback.Feedback, error) {
	return s.items, nil
}

func (s *mockFeedbackStore) CountByStatus(context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, st := range feedback.ValidStatuses {
		counts[st] = 0
	}
	for _, f := range s.items {
		counts[f.Status]++
	}
	return counts, nil
}

type mockOutboxStore struct {
	failed []outbox.Entry
}

func (s *mockOutboxStore) ListFailed(context.Context, int) ([]outbox.Entry, error) {
	return s.failed, nil
}

type stubPerf struct {
	since time.Time
}

func (p *stubPerf) Summary(since time.Time, _ int) perf.Summary {
	p.since = since
	return perf.Summary{Requests: 7}
}

func sampleRoster() *mockMemberStore {
	return &mockMemberStore{members: []member.Member{
		{ID: "1", Name: "Zara", Department: "CSE", Role: member.RoleMember, Email: "zara@sgc.org", Mobile: "9876500001", AcademicYear: member.YearI},
		{ID: "2", Name: "arjun", Department: "ECE", Role: member.RolePresident, Email: "arjun@sgc.org", Mobile: "9876500002", AcademicYear: member.YearIV},
		{ID: "3", Name: "Bhavna", Department: "Mech", Role: member.RoleAdvisor, Email: "bhavna@sgc.org", Mobile: "9123400003", AcademicYear: member.YearIV},
		{ID: "4", Name: "Chris", Department: "CSE", Role: member.RoleTrainee, Email: "chris@sgc.org", Mobile: "9876500001", AcademicYear: ""},
		{ID: "5", Name: "Dev", Department: "Civil", Role: member.RoleVicePresident, Email: "dev@sgc.org", Mobile: "", AcademicYear: member.YearIII},
	}}
}
