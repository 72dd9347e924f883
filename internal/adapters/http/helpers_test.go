package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sgc/internal/adapters/http/middleware"
	"sgc/internal/adapters/storage"
	accountStore "sgc/internal/adapters/storage/account"
	attendanceStore "sgc/internal/adapters/storage/attendance"
	feedbackStore "sgc/internal/adapters/storage/feedback"
	memberStore "sgc/internal/adapters/storage/member"
	outboxStore "sgc/internal/adapters/storage/outbox"
	"sgc/internal/application/orchestrators"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/member"
	"sgc/internal/domain/report"
)

const testPassword = "correct horse battery"

var fixedNow = time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)

// newTestHandler wires real SQLite stores behind the routes and the Auth middleware.
// CSRF is left out so tests can post forms directly.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	configure(&Stores{
		AccountStore:    accountStore.NewSQLiteStore(db),
		MemberStore:     memberStore.NewSQLiteStore(db),
		AttendanceStore: attendanceStore.NewSQLiteStore(db),
		FeedbackStore:   feedbackStore.NewSQLiteStore(db),
		OutboxStore:     outboxStore.NewSQLiteStore(db),
	}, Options{Report: report.DefaultOptions()})

	timeNow = func() time.Time { return fixedNow }
	t.Cleanup(func() { timeNow = time.Now })

	return middleware.Chain(routes(), middleware.Auth(sessions))
}

func addMember(t *testing.T, id, name, email, role, year string) member.Member {
	t.Helper()
	m := member.Member{ID: id, Name: name, Department: "CSE", Role: role, Email: email, AcademicYear: year}
	if err := stores.MemberStore.Save(context.Background(), m); err != nil {
		t.Fatalf("save member: %v", err)
	}
	return m
}

func addAccount(t *testing.T, email string) {
	t.Helper()
	_, err := orchestrators.ExecuteCreateAccount(context.Background(),
		orchestrators.CreateAccountInput{Email: email, Password: testPassword},
		orchestrators.CreateAccountDeps{
			AccountStore: stores.AccountStore,
			MemberStore:  stores.MemberStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
}

func mark(t *testing.T, records ...attendance.Record) {
	t.Helper()
	if err := stores.AttendanceStore.UpsertBatch(context.Background(), records); err != nil {
		t.Fatalf("upsert: %v", err)
	}
}

// signIn creates a session for m directly and returns its cookie.
func signIn(t *testing.T, m member.Member) *http.Cookie {
	t.Helper()
	token, err := sessions.Create(middleware.Session{MemberID: m.ID, Email: m.Email, Name: m.Name, Role: m.Role})
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	return &http.Cookie{Name: "sgc_session", Value: token}
}

func get(h http.Handler, path string, cookie *http.Cookie, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func postForm(h http.Handler, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func postJSON(h http.Handler, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "sgc_session" {
			return c
		}
	}
	return nil
}

const acceptHTML = "text/html"
