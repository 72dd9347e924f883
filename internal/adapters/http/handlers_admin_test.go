package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"sgc/internal/adapters/export"
	"sgc/internal/application/orchestrators"
	"sgc/internal/application/projections"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

func signedInAdmin(t *testing.T) (http.Handler, *http.Cookie) {
	t.Helper()
	h := newTestHandler(t)
	m := addMember(t, "admin", "Priya", "president@sgc.org", member.RolePresident, member.YearIV)
	return h, signIn(t, m)
}

func TestMembers_AddAndSearch(t *testing.T) {
	h, cookie := signedInAdmin(t)

	rr := postForm(h, "/admin/members", url.Values{
		"name": {"Arun"}, "department": {"ECE"}, "role": {member.RoleMember},
		"email": {"arun@sgc.org"}, "mobile": {"98765 43210"}, "academic_year": {member.YearII},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("add status = %d body=%s", rr.Code, rr.Body.String())
	}

	rr = get(h, "/admin/members?q=43210", cookie, "application/json")
	var result projections.RosterResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Members) != 1 || result.Members[0].Name != "Arun" {
		t.Errorf("search by mobile = %+v", result.Members)
	}
}

func TestMembers_AddInvalidRerendersForm(t *testing.T) {
	h, cookie := signedInAdmin(t)

	rr := postForm(h, "/admin/members", url.Values{
		"name": {"Arun"}, "role": {"Captain"}, "email": {"arun@sgc.org"}, "academic_year": {member.YearII},
	}, cookie)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `value="Arun"`) {
		t.Error("form values should be kept")
	}
}

// TestMembers_AddMultibyteName counts name length in characters, not bytes.
func TestMembers_AddMultibyteName(t *testing.T) {
	h, cookie := signedInAdmin(t)
	ctx := context.Background()

	name := strings.Repeat("அ", 40)
	rr := postForm(h, "/admin/members", url.Values{
		"name": {name}, "role": {member.RoleMember}, "email": {"tamil@sgc.org"}, "academic_year": {member.YearI},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("40-letter name status = %d, want 303", rr.Code)
	}
	if m, err := stores.MemberStore.GetByEmail(ctx, "tamil@sgc.org"); err != nil || m.Name != name {
		t.Errorf("saved member = %+v, %v", m, err)
	}

	rr = postForm(h, "/admin/members", url.Values{
		"name": {strings.Repeat("அ", 101)}, "role": {member.RoleMember}, "email": {"long@sgc.org"}, "academic_year": {member.YearI},
	}, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("101-letter name status = %d, want 400", rr.Code)
	}
}

func TestMembers_EditOnlyYearAndRole(t *testing.T) {
	h, cookie := signedInAdmin(t)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleTrainee, member.YearI)

	rr := postForm(h, "/admin/members/edit", url.Values{
		"id": {"m1"}, "academic_year": {member.YearII}, "role": {member.RoleMember},
	}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d", rr.Code)
	}
	got, _ := stores.MemberStore.GetByID(context.Background(), "m1")
	if got.AcademicYear != member.YearII || got.Role != member.RoleMember || got.Name != "Arun" {
		t.Errorf("member = %+v", got)
	}

	rr = postJSON(h, "/admin/members/edit", `{"id":"missing","academic_year":"I","role":"Member"}`, cookie)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rr.Code)
	}
}

func TestMembers_DeleteNeedsConfirmation(t *testing.T) {
	h, cookie := signedInAdmin(t)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearI)
	mark(t, attendance.Record{MemberID: "m1", Date: "2024-05-01", IsPresent: true})

	rr := postForm(h, "/admin/members/delete", url.Values{"ids": {"m1"}}, cookie)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Delete 1 member(s)?") {
		t.Fatalf("confirm step status=%d", rr.Code)
	}
	if _, err := stores.MemberStore.GetByID(context.Background(), "m1"); err != nil {
		t.Fatal("member deleted before confirmation")
	}

	rr = postForm(h, "/admin/members/delete", url.Values{"ids": {"m1"}, "confirm": {"yes"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if _, err := stores.MemberStore.GetByID(context.Background(), "m1"); err != member.ErrNotFound {
		t.Errorf("GetByID after delete = %v", err)
	}
	if rows, _ := stores.AttendanceStore.ListByDate(context.Background(), "2024-05-01"); len(rows) != 0 {
		t.Errorf("attendance rows left: %+v", rows)
	}
}

// TestAttendance_SubmitIsIdempotent posts the same cell twice and expects one row.
func TestAttendance_SubmitIsIdempotent(t *testing.T) {
	h, cookie := signedInAdmin(t)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearI)

	rr := postForm(h, "/admin/attendance", url.Values{"date": {"2024-05-01"}, "mark.m1": {"present"}}, cookie)
	if rr.Code != http.StatusSeeOther || !strings.Contains(rr.Header().Get("Location"), "Saved+1") {
		t.Fatalf("first submit status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}

	rr = postForm(h, "/admin/attendance", url.Values{
		"date": {"2024-05-01"}, "orig.m1": {"present"}, "mark.m1": {"present"},
	}, cookie)
	if !strings.Contains(rr.Header().Get("Location"), "No+changes") {
		t.Errorf("resubmit location = %q", rr.Header().Get("Location"))
	}

	rr = postJSON(h, "/admin/attendance", `{"date":"2024-05-01","original":{},"current":{"m1":true}}`, cookie)
	if rr.Code != http.StatusOK {
		t.Fatalf("json submit status = %d", rr.Code)
	}

	rows, _ := stores.AttendanceStore.ListByDate(context.Background(), "2024-05-01")
	if len(rows) != 1 || !rows[0].IsPresent {
		t.Errorf("rows = %+v, want one present row", rows)
	}
}

func TestAttendance_SheetPage(t *testing.T) {
	h, cookie := signedInAdmin(t)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearI)
	mark(t, attendance.Record{MemberID: "m1", Date: "2024-05-03", IsPresent: true})

	rr := get(h, "/admin/attendance", cookie, acceptHTML)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Attendance for 2024-05-03", "Year IV", "Year I", `name="orig.m1" value="present"`, "https://wa.me/?text="} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q", want)
		}
	}

	if rr := get(h, "/admin/attendance?date=yesterday", cookie, acceptHTML); rr.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d", rr.Code)
	}
}

func TestAttendanceShare_WithoutTelegramOpensWhatsApp(t *testing.T) {
	h, cookie := signedInAdmin(t)
	mark(t, attendance.Record{MemberID: "admin", Date: "2024-05-03", IsPresent: true})

	rr := postForm(h, "/admin/attendance/share", url.Values{"date": {"2024-05-03"}}, cookie)

	if rr.Code != http.StatusSeeOther || !strings.HasPrefix(rr.Header().Get("Location"), attendance.WhatsAppBaseURL) {
		t.Errorf("status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
}

func TestAttendanceShare_WithTelegramQueues(t *testing.T) {
	h, cookie := signedInAdmin(t)
	telegramEnabled = true
	mark(t, attendance.Record{MemberID: "admin", Date: "2024-05-03", IsPresent: true})

	rr := postForm(h, "/admin/attendance/share", url.Values{"date": {"2024-05-03"}}, cookie)

	if rr.Code != http.StatusSeeOther || !strings.Contains(rr.Header().Get("Location"), "queued") {
		t.Errorf("status=%d location=%q", rr.Code, rr.Header().Get("Location"))
	}
	pending, _ := stores.OutboxStore.ListPending(context.Background(), time.Now(), 10)
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1", len(pending))
	}
}

// TestReports_ThreeDayExample checks 2 of 3 days present reads 66.67%.
func TestReports_ThreeDayExample(t *testing.T) {
	h, cookie := signedInAdmin(t)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearI)
	mark(t,
		attendance.Record{MemberID: "m1", Date: "2024-05-01", IsPresent: true},
		attendance.Record{MemberID: "m1", Date: "2024-05-02", IsPresent: false},
		attendance.Record{MemberID: "m1", Date: "2024-05-03", IsPresent: true},
	)

	rr := get(h, "/admin/reports?month=2024-05&q=arun", cookie, "application/json")
	var result projections.MonthlyReportResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Report.WorkingDays != 3 || len(result.Rows) != 1 {
		t.Fatalf("result = %+v", result)
	}
	row := result.Rows[0]
	if row.Present != 2 || row.Absent != 1 {
		t.Errorf("present/absent = %d/%d", row.Present, row.Absent)
	}

	page := get(h, "/admin/reports?month=2024-05", cookie, acceptHTML).Body.String()
	for _, want := range []string{"66.67%", "2024-05-02", "May 2024", `class="low"`} {
		if !strings.Contains(page, want) {
			t.Errorf("report page missing %q", want)
		}
	}

	if rr := get(h, "/admin/reports?month=May", cookie, acceptHTML); rr.Code != http.StatusBadRequest {
		t.Errorf("bad month status = %d", rr.Code)
	}
}

func TestReportExport(t *testing.T) {
	h, cookie := signedInAdmin(t)
	if rr := get(h, "/admin/reports/export", cookie, ""); rr.Code != http.StatusNotFound {
		t.Errorf("empty export status = %d, want 404", rr.Code)
	}

	mark(t, attendance.Record{MemberID: "admin", Date: "2024-05-01", IsPresent: true})
	rr := get(h, "/admin/reports/export?month=2024-05", cookie, "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != export.ContentType {
		t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
	}
	if !strings.Contains(rr.Header().Get("Content-Disposition"), export.Filename("2024-05")) {
		t.Errorf("Content-Disposition = %q", rr.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Error("body is not a zip container")
	}
}

func TestFeedbackConsole_StatusAndDelete(t *testing.T) {
	h, cookie := signedInAdmin(t)
	ctx := context.Background()
	f, err := orchestrators.ExecuteSubmitFeedback(ctx, orchestrators.SubmitFeedbackInput{
		Name: "Visitor", Email: "v@example.com", Type: "suggestion", Message: "More **workshops** please",
	}, orchestrators.SubmitFeedbackDeps{
		FeedbackStore:  stores.FeedbackStore,
		MemberStore:    stores.MemberStore,
		OutboxStore:    stores.OutboxStore,
		RenderMarkdown: func(s string) string { return s },
		GenerateID:     generateID,
		Now:            timeNow,
	})
	if err != nil {
		t.Fatal(err)
	}

	page := get(h, "/admin/feedback", cookie, acceptHTML).Body.String()
	if !strings.Contains(page, "<strong>workshops</strong>") {
		t.Error("message should be rendered as markdown")
	}

	rr := postForm(h, "/admin/feedback/status", url.Values{"id": {f.ID}, "status": {feedback.StatusResolved}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status update = %d", rr.Code)
	}
	got, _ := stores.FeedbackStore.GetByID(ctx, f.ID)
	if got.Status != feedback.StatusResolved {
		t.Errorf("Status = %q", got.Status)
	}

	rr = postJSON(h, "/admin/feedback/status", `{"id":"`+f.ID+`","status":"archived"}`, cookie)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want 400", rr.Code)
	}

	rr = postForm(h, "/admin/feedback/delete", url.Values{"id": {f.ID}}, cookie)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Delete feedback from Visitor?") {
		t.Fatalf("confirm step status = %d", rr.Code)
	}
	rr = postForm(h, "/admin/feedback/delete", url.Values{"id": {f.ID}, "confirm": {"yes"}}, cookie)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if _, err := stores.FeedbackStore.GetByID(ctx, f.ID); err != feedback.ErrNotFound {
		t.Errorf("GetByID after delete = %v", err)
	}
}

func TestDashboard_JSON(t *testing.T) {
	h, cookie := signedInAdmin(t)
	mark(t, attendance.Record{MemberID: "admin", Date: "2024-05-03", IsPresent: true})

	rr := get(h, "/admin/dashboard", cookie, "application/json")
	var result projections.DashboardResult
	if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Members != 1 || result.MarkedToday != 1 || result.Today != "2024-05-03" {
		t.Errorf("result = %+v", result)
	}
}

func TestAdminOutbox_FlushAndListFailed(t *testing.T) {
	h, cookie := signedInAdmin(t)
	ctx := context.Background()

	if rr := postJSON(h, "/admin/outbox", "{}", cookie); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("flush without processor status = %d, want 503", rr.Code)
	}

	e, err := outbox.NewEntry("tg-1", outbox.ChannelTelegram, outbox.TelegramPayload{Text: "summary"}, fixedNow)
	if err != nil {
		t.Fatal(err)
	}
	if err := stores.OutboxStore.Save(ctx, e); err != nil {
		t.Fatal(err)
	}
	// No telegram dispatcher is registered, so the entry fails on its first attempt.
	outboxProcessor = orchestrators.NewOutboxProcessor(stores.OutboxStore, map[string]orchestrators.Dispatcher{})
	t.Cleanup(func() { outboxProcessor = nil })

	if rr := postJSON(h, "/admin/outbox", "{}", cookie); rr.Code != http.StatusOK {
		t.Fatalf("flush status = %d", rr.Code)
	}

	rr := get(h, "/admin/outbox", cookie, "application/json")
	var failed []outbox.Entry
	if err := json.NewDecoder(rr.Body).Decode(&failed); err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].ID != "tg-1" || failed[0].Status != outbox.StatusFailed {
		t.Errorf("failed = %+v", failed)
	}
}
