package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"sgc/internal/domain/account"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

var fixedTime = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return fixedTime }

// sequentialIDs returns a generator yielding id-1, id-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

// mockMemberStore is an in-memory roster.
type mockMemberStore struct {
	members map[string]member.Member
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member)}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

func (s *mockMemberStore) GetByEmail(_ context.Context, email string) (member.Member, error) {
	for _, m := range s.members {
		if strings.EqualFold(m.Email, email) {
			return m, nil
		}
	}
	return member.Member{}, member.ErrNotFound
}

func (s *mockMemberStore) List(_ context.Context) ([]member.Member, error) {
	out := make([]member.Member, 0, len(s.members))
	for _, m := range s.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *mockMemberStore) ListByRoles(ctx context.Context, roles []string) ([]member.Member, error) {
	all, _ := s.List(ctx)
	var out []member.Member
	for _, m := range all {
		for _, r := range roles {
			if m.Role == r {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *mockMemberStore) Save(_ context.Context, m member.Member) error {
	for _, existing := range s.members {
		if existing.ID != m.ID && strings.EqualFold(existing.Email, m.Email) {
			return member.ErrDuplicate
		}
	}
	s.members[m.ID] = m
	return nil
}

func (s *mockMemberStore) UpdateYearAndRole(_ context.Context, id, year, role string) error {
	m, ok := s.members[id]
	if !ok {
		return member.ErrNotFound
	}
	m.AcademicYear, m.Role = year, role
	s.members[id] = m
	return nil
}

func (s *mockMemberStore) DeleteMany(_ context.Context, ids []string) (int, error) {
	n := 0
	for _, id := range ids {
		if _, ok := s.members[id]; ok {
			delete(s.members, id)
			n++
		}
	}
	return n, nil
}

// mockAccountStore keys accounts by normalized email.
type mockAccountStore struct {
	accounts map[string]account.Account
	saves    int
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[string]account.Account)}
}

func (s *mockAccountStore) GetByEmail(_ context.Context, email string) (account.Account, error) {
	a, ok := s.accounts[account.NormalizeEmail(email)]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return a, nil
}

func (s *mockAccountStore) Save(_ context.Context, a account.Account) error {
	s.saves++
	s.accounts[account.NormalizeEmail(a.Email)] = a
	return nil
}

// mockAttendanceStore records every batch it is given.
type mockAttendanceStore struct {
	rows    map[string]attendance.Record // key member_id|date
	batches [][]attendance.Record
	failErr error
}

func newMockAttendanceStore(records ...attendance.Record) *mockAttendanceStore {
	s := &mockAttendanceStore{rows: make(map[string]attendance.Record)}
	for _, r := range records {
		s.rows[r.MemberID+"|"+r.Date] = r
	}
	return s
}

func (s *mockAttendanceStore) UpsertBatch(_ context.Context, records []attendance.Record) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.batches = append(s.batches, records)
	for _, r := range records {
		s.rows[r.MemberID+"|"+r.Date] = r
	}
	return nil
}

func (s *mockAttendanceStore) ListByDate(_ context.Context, date string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range s.rows {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *mockAttendanceStore) ListByMonth(_ context.Context, month string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range s.rows {
		if strings.HasPrefix(r.Date, month+"-") {
			out = append(out, r)
		}
	}
	return out, nil
}

// mockFeedbackStore is an in-memory feedback table.
type mockFeedbackStore struct {
	items map[string]feedback.Feedback
}

func newMockFeedbackStore() *mockFeedbackStore {
	return &mockFeedbackStore{items: make(map[string]feedback.Feedback)}
}

func (s *mockFeedbackStore) Save(_ context.Context, f feedback.Feedback) error {
	s.items[f.ID] = f
	return nil
}

func (s *mockFeedbackStore) UpdateStatus(_ context.Context, id, status string) error {
	f, ok := s.items[id]
	if !ok {
		return feedback.ErrNotFound
	}
	f.Status = status
	s.items[id] = f
	return nil
}

func (s *mockFeedbackStore) Delete(_ context.Context, id string) error {
	if _, ok := s.items[id]; !ok {
		return feedback.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// mockOutboxStore keeps entries in insertion order.
type mockOutboxStore struct {
	entries []outbox.Entry
	listErr error
}

func (s *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	for i := range s.entries {
		if s.entries[i].ID == e.ID {
			s.entries[i] = e
			return nil
		}
	}
	s.entries = append(s.entries, e)
	return nil
}

func (s *mockOutboxStore) ListPending(_ context.Context, now time.Time, limit int) ([]outbox.Entry, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []outbox.Entry
	for _, e := range s.entries {
		waiting := !e.NextAttemptAt.IsZero() && e.NextAttemptAt.After(now)
		if (e.Status == outbox.StatusPending || e.Status == outbox.StatusRetrying) && !waiting && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *mockOutboxStore) byChannel(channel string) []outbox.Entry {
	var out []outbox.Entry
	for _, e := range s.entries {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

var errStoreDown = errors.New("store down")
