package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"sgc/internal/application/projections"
	"sgc/internal/domain/attendance"
	"sgc/internal/domain/feedback"
	"sgc/internal/domain/member"
	"sgc/internal/domain/outbox"
)

func TestHealthz(t *testing.T) {
	h := newTestHandler(t)
	rr := get(h, "/healthz", nil, "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("status=%d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHome(t *testing.T) {
	h := newTestHandler(t)
	if rr := get(h, "/", nil, acceptHTML); rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/member") {
		t.Errorf("home status = %d", rr.Code)
	}
	if rr := get(h, "/nope", nil, acceptHTML); rr.Code != http.StatusNotFound {
		t.Errorf("unknown path status = %d, want 404", rr.Code)
	}
}

func TestMemberLookup(t *testing.T) {
	h := newTestHandler(t)
	m := addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearII)
	m.Mobile = "98765 43210"
	stores.MemberStore.Save(context.Background(), m)
	addMember(t, "m2", "Bala", "bala@sgc.org", member.RoleMember, member.YearII)
	mark(t,
		attendance.Record{MemberID: "m1", Date: "2024-05-01", IsPresent: true},
		attendance.Record{MemberID: "m2", Date: "2024-05-02", IsPresent: true},
	)

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"by email", `{"by":"email","identifier":"ARUN@sgc.org"}`, http.StatusOK},
		{"by mobile", `{"by":"mobile","identifier":"98765 43210"}`, http.StatusOK},
		{"mobile substring is not a match", `{"by":"mobile","identifier":"43210"}`, http.StatusNotFound},
		{"unknown email", `{"by":"email","identifier":"ghost@sgc.org"}`, http.StatusNotFound},
		{"empty", `{"by":"email","identifier":"  "}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postJSON(h, "/member", tt.body, nil)
			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			var result projections.MemberLookupResult
			if err := json.NewDecoder(rr.Body).Decode(&result); err != nil {
				t.Fatal(err)
			}
			// Working days are organisation-wide: m2's date counts as an absence for m1.
			if result.Member.ID != "m1" || result.History.Totals.WorkingDays != 2 || result.History.Totals.Present != 1 {
				t.Errorf("result = %+v", result)
			}
		})
	}

	rr := postForm(h, "/member", url.Values{"by": {"email"}, "identifier": {"arun@sgc.org"}}, nil)
	body := rr.Body.String()
	if rr.Code != http.StatusOK || !strings.Contains(body, "Arun") || !strings.Contains(body, "50.00%") {
		t.Errorf("HTML lookup status=%d", rr.Code)
	}
}

func TestPublicFeedback_NotifiesAdmins(t *testing.T) {
	h := newTestHandler(t)
	addMember(t, "p1", "Priya", "president@sgc.org", member.RolePresident, member.YearIV)
	addMember(t, "m1", "Arun", "arun@sgc.org", member.RoleMember, member.YearII)

	rr := postForm(h, "/feedback", url.Values{
		"name": {"Visitor"}, "email": {"v@example.com"}, "type": {"Complaint"}, "message": {"The hall was locked"},
	}, nil)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Thank you") {
		t.Fatalf("status=%d", rr.Code)
	}

	items, _ := stores.FeedbackStore.List(context.Background())
	if len(items) != 1 || items[0].Status != feedback.StatusPending || items[0].Type != feedback.TypeComplaint {
		t.Errorf("feedback = %+v", items)
	}
	pending, _ := stores.OutboxStore.ListPending(context.Background(), time.Now(), 10)
	if len(pending) != 1 || pending[0].Channel != outbox.ChannelEmail {
		t.Fatalf("outbox = %+v", pending)
	}
	payload, _ := pending[0].DecodeEmail()
	if payload.To != "president@sgc.org" {
		t.Errorf("notification to %q", payload.To)
	}
}

func TestPublicFeedback_Invalid(t *testing.T) {
	h := newTestHandler(t)

	rr := postForm(h, "/feedback", url.Values{"name": {"Visitor"}, "email": {"not-an-email"}, "message": {"hi"}}, nil)
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), `value="Visitor"`) {
		t.Errorf("status=%d", rr.Code)
	}

	rr = postJSON(h, "/feedback", `{"name":"V","email":"v@example.com","message":"hi","extra":1}`, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown JSON field status = %d", rr.Code)
	}

	rr = postForm(h, "/feedback", url.Values{
		"name": {"Visitor"}, "email": {"v@example.com"}, "message": {strings.Repeat("அ", 5001)},
	}, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("over-long message status = %d, want 400", rr.Code)
	}
}

// TestPublicFeedback_MultibyteMessage accepts a message under the limit in characters but over it in bytes.
func TestPublicFeedback_MultibyteMessage(t *testing.T) {
	h := newTestHandler(t)

	rr := postForm(h, "/feedback", url.Values{
		"name": {strings.Repeat("அ", 40)}, "email": {"v@example.com"}, "type": {"general"},
		"message": {strings.Repeat("அ", 2000)},
	}, nil)
	if rr.Code >= http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	list, err := stores.FeedbackStore.List(context.Background())
	if err != nil || len(list) != 1 {
		t.Errorf("stored feedback = %d, %v", len(list), err)
	}
}
